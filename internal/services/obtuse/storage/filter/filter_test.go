package filter

import (
	"reflect"
	"testing"
	"time"
)

func TestParseHistoryFilter_CodeEquals(t *testing.T) {
	cond, err := ParseHistoryFilter(`code = "OK"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "code = ?" {
		t.Fatalf("Clause = %q, want %q", cond.Clause, "code = ?")
	}
	if !reflect.DeepEqual(cond.Params, []any{"OK"}) {
		t.Fatalf("Params = %v", cond.Params)
	}
}

func TestParseHistoryFilter_Empty(t *testing.T) {
	cond, err := ParseHistoryFilter("  ")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "" || cond.Params != nil {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParseHistoryFilter_AndOr(t *testing.T) {
	cond, err := ParseHistoryFilter(`loops >= 5 AND seed_source = "CLIENT"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(loops >= ? AND seed_source = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{int64(5), "CLIENT"}) {
		t.Fatalf("Params = %v", cond.Params)
	}

	cond, err = ParseHistoryFilter(`code = "OK" OR code = "TOLERANCE_UNSATISFIABLE"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(code = ? OR code = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParseHistoryFilter_Numeric(t *testing.T) {
	cond, err := ParseHistoryFilter(`value > 1000.5`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "value > ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{1000.5}) {
		t.Fatalf("Params = %v", cond.Params)
	}
}

func TestParseHistoryFilter_Timestamp(t *testing.T) {
	cond, err := ParseHistoryFilter(`created_at > timestamp("2026-01-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "created_at > ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if !reflect.DeepEqual(cond.Params, []any{want}) {
		t.Fatalf("Params = %v, want [%d]", cond.Params, want)
	}
}

func TestParseHistoryFilter_Errors(t *testing.T) {
	tcs := []struct {
		name   string
		filter string
	}{
		{name: "unknown field", filter: `unknown = "x"`},
		{name: "value function", filter: `created_at = duration("1h")`},
		{name: "invalid timestamp", filter: `created_at = timestamp("not-a-time")`},
		{name: "syntax", filter: `code = `},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseHistoryFilter(tc.filter); err == nil {
				t.Fatalf("ParseHistoryFilter(%q) succeeded, want error", tc.filter)
			}
		})
	}
}
