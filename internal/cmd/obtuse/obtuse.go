// Package obtuse parses CLI flags and runs one obfuscation, a history listing
// or a replay.
package obtuse

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	entrypoint "github.com/louisbranch/obtuse.units/internal/platform/cmd"
	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/platform/logging"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// Config holds obtuse command configuration.
type Config struct {
	app.Settings

	Value    float64
	Dims     catalog.Dimensions
	Text     string
	Handle   string
	Seed     *int64
	JSON     bool
	Locale   string
	History  bool
	Filter   string
	PageSize int
	Page     string
	Oldest   bool
	Replay   int64
}

// ParseConfig parses environment and flags into Config. Remaining arguments
// are joined into the free text to search for a quantity.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.Float64Var(&cfg.Value, "value", 0, "quantity value in SI base units")
	fs.Func("dims", "dimension exponents as mass,length,time,current (e.g. 0,1,-2,0)", func(raw string) error {
		dims, err := ParseDims(raw)
		if err != nil {
			return err
		}
		cfg.Dims = dims
		return nil
	})
	fs.Func("seed", "seed for a reproducible result", func(raw string) error {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", raw)
		}
		cfg.Seed = &seed
		return nil
	})
	fs.IntVar(&cfg.Loops, "loops", cfg.Loops, "decomposition search loops")
	fs.IntVar(&cfg.MinValueOrder, "min-order", cfg.MinValueOrder, "lowest decimal order of the mantissa")
	fs.IntVar(&cfg.MaxValueOrder, "max-order", cfg.MaxValueOrder, "highest decimal order of the mantissa")
	fs.Func("max-prefixes", "maximum number of prefixed units", func(raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid max prefixes %q", raw)
		}
		cfg.MaxPrefixes = &n
		return nil
	})
	fs.Func("spread", "probability in [0,1) of picking the best unit while searching", func(raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid spread %q", raw)
		}
		cfg.Spread = &v
		return nil
	})
	fs.StringVar(&cfg.Handle, "handle", "", "handle appended to the reply for free text")
	fs.StringVar(&cfg.CatalogScript, "catalog", cfg.CatalogScript, "Lua catalog script")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite history path")
	fs.BoolVar(&cfg.JSON, "json", false, "print JSON")
	fs.StringVar(&cfg.Locale, "locale", apperrors.BaseLocale, "locale for error messages")
	fs.BoolVar(&cfg.History, "history", false, "list recorded calls")
	fs.StringVar(&cfg.Filter, "filter", "", "history filter, e.g. code = \"OK\"")
	fs.IntVar(&cfg.PageSize, "page-size", 0, "history page size")
	fs.StringVar(&cfg.Page, "page", "", "history page token")
	fs.BoolVar(&cfg.Oldest, "oldest", false, "list history oldest first")
	fs.Int64Var(&cfg.Replay, "replay", 0, "replay the recorded call with this id")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Text = strings.TrimSpace(strings.Join(fs.Args(), " "))

	if cfg.Text == "" && !cfg.History && cfg.Replay == 0 && cfg.Dims == (catalog.Dimensions{}) {
		return Config{}, errors.New("provide -value and -dims, free text, -history or -replay")
	}
	return cfg, nil
}

// ParseDims reads "m,l,t,i" exponents.
func ParseDims(raw string) (catalog.Dimensions, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != catalog.AxisCount {
		return catalog.Dimensions{}, fmt.Errorf("dims %q: want %d comma-separated exponents", raw, catalog.AxisCount)
	}
	var dims catalog.Dimensions
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return catalog.Dimensions{}, fmt.Errorf("dims %q: %w", raw, err)
		}
		dims[i] = n
	}
	return dims, nil
}

// Run executes the command selected by cfg and writes its output to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceObtuse, func(ctx context.Context) error {
		logger, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: logging.Format(cfg.LogFormat),
			Writer: os.Stderr,
		})
		if err != nil {
			return err
		}
		svc, closeFn, err := app.Open(cfg.Settings, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeFn(); err != nil {
				logger.Warn("close history store", "error", err)
			}
		}()
		return execute(ctx, svc, cfg, out)
	})
}

func execute(ctx context.Context, svc *app.Service, cfg Config, out io.Writer) error {
	params := app.Params{Seed: cfg.Seed}
	switch {
	case cfg.Replay != 0:
		result, err := svc.Replay(ctx, cfg.Replay)
		if err != nil {
			return err
		}
		return writeReplay(out, result, cfg.JSON)

	case cfg.History:
		order := ""
		if cfg.Oldest {
			order = "created_at asc"
		}
		page, err := svc.History(ctx, app.HistoryQuery{
			Filter:    cfg.Filter,
			PageSize:  cfg.PageSize,
			PageToken: cfg.Page,
			OrderBy:   order,
		})
		if err != nil {
			return err
		}
		return writeHistory(out, page, cfg.JSON)

	case cfg.Text != "":
		resp, err := svc.ObtusifyText(ctx, app.TextRequest{Text: cfg.Text, Handle: cfg.Handle, Params: params})
		if err != nil {
			return err
		}
		if cfg.JSON {
			return writeJSON(out, textOutput{output: newOutput(resp.Response), Surface: resp.Surface, Reply: resp.Reply})
		}
		_, err = fmt.Fprintln(out, resp.Reply)
		return err

	default:
		resp, err := svc.Obtusify(ctx, app.Request{Value: cfg.Value, Dims: cfg.Dims, Params: params})
		if err != nil {
			return err
		}
		if cfg.JSON {
			return writeJSON(out, newOutput(resp))
		}
		_, err = fmt.Fprintln(out, resp.Text)
		return err
	}
}

// ExitCode maps a Run error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return apperrors.CodeOf(err).ExitCode()
}

// Message renders a Run error for the terminal in locale.
func Message(err error, locale string) string {
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		return fmt.Sprintf("%s: %s", coded.Code, coded.Localize(locale))
	}
	return err.Error()
}
