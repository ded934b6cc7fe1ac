package obtuse

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

func parse(t *testing.T, args []string, environ map[string]string) (Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("obtuse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if environ == nil {
		environ = map[string]string{}
	}
	return ParseConfig(fs, args, environ)
}

func run(t *testing.T, args []string, environ map[string]string) (string, error) {
	t.Helper()
	cfg, err := parse(t, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	var out bytes.Buffer
	err = Run(context.Background(), cfg, &out)
	return out.String(), err
}

// runSeeded retries seeds until the engine produces a result, since some
// seeds legitimately miss the tolerance or exponent range.
func runSeeded(t *testing.T, args []string, environ map[string]string) (string, int64) {
	t.Helper()
	for seed := int64(1); seed <= 50; seed++ {
		out, err := run(t, append([]string{"-seed", strconv.FormatInt(seed, 10)}, args...), environ)
		if err == nil {
			return out, seed
		}
		if ExitCode(err) != apperrors.ExitOutcome {
			t.Fatalf("run %v: %v", args, err)
		}
	}
	t.Fatalf("no seed produced a result for %v", args)
	return "", 0
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parse(t, []string{"-value", "5000", "-dims", "0,1,0,0"}, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Loops != 2 || cfg.MinValueOrder != -8 || cfg.MaxValueOrder != 8 {
		t.Fatalf("expected bot defaults, got loops %d orders %d..%d", cfg.Loops, cfg.MinValueOrder, cfg.MaxValueOrder)
	}
	if cfg.ReplyLimit != 280 {
		t.Fatalf("expected reply limit 280, got %d", cfg.ReplyLimit)
	}
	if cfg.MaxPrefixes != nil || cfg.Spread != nil || cfg.Seed != nil {
		t.Fatalf("expected unset optional knobs, got %+v", cfg)
	}
	if cfg.Value != 5000 || cfg.Dims != (catalog.Dimensions{0, 1, 0, 0}) {
		t.Fatalf("value = %v dims = %v", cfg.Value, cfg.Dims)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	environ := map[string]string{
		"OBTUSE_UNITS_LOOPS":        "4",
		"OBTUSE_UNITS_SPREAD":       "0.25",
		"OBTUSE_UNITS_MAX_PREFIXES": "1",
		"OBTUSE_UNITS_DB_PATH":      "env.db",
	}
	args := []string{"-loops", "6", "-seed", "-3", "-db", "flag.db", "-handle", "bob", "I", "ran", "5", "km"}
	cfg, err := parse(t, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Loops != 6 {
		t.Fatalf("expected flag loops 6, got %d", cfg.Loops)
	}
	if cfg.Spread == nil || *cfg.Spread != 0.25 {
		t.Fatalf("expected env spread 0.25, got %v", cfg.Spread)
	}
	if cfg.MaxPrefixes == nil || *cfg.MaxPrefixes != 1 {
		t.Fatalf("expected env max prefixes 1, got %v", cfg.MaxPrefixes)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Seed == nil || *cfg.Seed != -3 {
		t.Fatalf("expected seed -3, got %v", cfg.Seed)
	}
	if cfg.Text != "I ran 5 km" {
		t.Fatalf("expected joined text, got %q", cfg.Text)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tcs := []struct {
		name    string
		args    []string
		environ map[string]string
	}{
		{name: "nothing to do", args: nil},
		{name: "short dims", args: []string{"-value", "1", "-dims", "0,1"}},
		{name: "non-numeric dims", args: []string{"-value", "1", "-dims", "0,x,0,0"}},
		{name: "bad seed", args: []string{"-seed", "abc", "5 km"}},
		{name: "bad spread", args: []string{"-spread", "lots", "5 km"}},
		{name: "bad env", args: []string{"5 km"}, environ: map[string]string{"OBTUSE_UNITS_LOOPS": "many"}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parse(t, tc.args, tc.environ); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseDims(t *testing.T) {
	dims, err := ParseDims(" 1, -1 ,2,0")
	if err != nil {
		t.Fatalf("ParseDims: %v", err)
	}
	if dims != (catalog.Dimensions{1, -1, 2, 0}) {
		t.Fatalf("dims = %v", dims)
	}
}

func TestRunValueIsReproducible(t *testing.T) {
	first, seed := runSeeded(t, []string{"-value", "5000", "-dims", "0,1,0,0"}, nil)
	if strings.TrimSpace(first) == "" {
		t.Fatal("expected output")
	}
	second, err := run(t, []string{"-seed", strconv.FormatInt(seed, 10), "-value", "5000", "-dims", "0,1,0,0"}, nil)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if first != second {
		t.Fatalf("seed %d gave %q then %q", seed, first, second)
	}
}

func TestRunJSON(t *testing.T) {
	out, seed := runSeeded(t, []string{"-json", "-value", "9.81", "-dims", "0,1,-2,0"}, nil)

	var got output
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.Seed != seed || got.SeedSource != "CLIENT" {
		t.Fatalf("seed = %d %s, want %d CLIENT", got.Seed, got.SeedSource, seed)
	}
	if got.Text == "" || got.Units == "" {
		t.Fatalf("output = %+v", got)
	}
}

func TestRunText(t *testing.T) {
	out, _ := runSeeded(t, []string{"-handle", "@bob", "I", "walked", "5", "km", "today"}, nil)
	reply := strings.TrimSpace(out)
	if !strings.HasSuffix(reply, " @bob") {
		t.Fatalf("reply = %q, want handle suffix", reply)
	}
	if strings.Contains(reply, "5 km") {
		t.Fatalf("reply = %q still holds the original quantity", reply)
	}
}

func TestRunHistoryAndReplay(t *testing.T) {
	environ := map[string]string{"OBTUSE_UNITS_DB_PATH": filepath.Join(t.TempDir(), "history.db")}

	runSeeded(t, []string{"-value", "5000", "-dims", "0,1,0,0"}, environ)
	runSeeded(t, []string{"-value", "2", "-dims", "1,0,0,0"}, environ)

	out, err := run(t, []string{"-history", "-json", "-filter", `code = "OK"`}, environ)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var page historyOutput
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode history %q: %v", out, err)
	}
	if len(page.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(page.Calls))
	}
	if page.Calls[0].Dims != "(M1 L0 T0 I0)" {
		t.Fatalf("newest call dims = %s, want mass", page.Calls[0].Dims)
	}

	id := strconv.FormatInt(page.Calls[1].ID, 10)
	out, err = run(t, []string{"-replay", id, "-json"}, environ)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	var replay replayOutput
	if err := json.Unmarshal([]byte(out), &replay); err != nil {
		t.Fatalf("decode replay %q: %v", out, err)
	}
	if !replay.Match || replay.ReplayedText != page.Calls[1].Text {
		t.Fatalf("replay = %+v, want a match of %q", replay, page.Calls[1].Text)
	}

	out, err = run(t, []string{"-history", "-oldest", "-page-size", "1", "-filter", `code = "OK"`}, environ)
	if err != nil {
		t.Fatalf("history text: %v", err)
	}
	if !strings.Contains(out, "next page: ") || !strings.HasPrefix(out, id+"\t") {
		t.Fatalf("history text = %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	tcs := []struct {
		name    string
		args    []string
		environ map[string]string
		code    apperrors.Code
		exit    int
	}{
		{name: "no quantity", args: []string{"nothing", "here"}, code: apperrors.CodeNoQuantity, exit: apperrors.ExitUsage},
		{name: "invalid value", args: []string{"-value", "-3", "-dims", "0,1,0,0"}, code: apperrors.CodeInvalidValue, exit: apperrors.ExitUsage},
		{name: "replay without history", args: []string{"-replay", "1"}, code: apperrors.CodeHistoryDisabled, exit: apperrors.ExitNotFound},
		{
			name:    "unknown call",
			args:    []string{"-replay", "42"},
			environ: map[string]string{"OBTUSE_UNITS_DB_PATH": filepath.Join(t.TempDir(), "history.db")},
			code:    apperrors.CodeNotFound,
			exit:    apperrors.ExitNotFound,
		},
		{
			name:    "bad log level",
			args:    []string{"5 km"},
			environ: map[string]string{"OBTUSE_UNITS_LOG_LEVEL": "loud"},
			code:    apperrors.CodeUnknown,
			exit:    apperrors.ExitInternal,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args, tc.environ)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.CodeOf(err); got != tc.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tc.code, err)
			}
			if got := ExitCode(err); got != tc.exit {
				t.Fatalf("exit = %d, want %d", got, tc.exit)
			}
		})
	}
}

func TestMessageLocalizes(t *testing.T) {
	_, err := run(t, []string{"nothing", "here"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := Message(err, "pt-BR")
	if !strings.HasPrefix(msg, "NO_QUANTITY: ") {
		t.Fatalf("message = %q", msg)
	}
	if ExitCode(nil) != 0 {
		t.Fatal("nil error should exit 0")
	}
}
