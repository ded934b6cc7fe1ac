package pagination

import (
	"errors"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tcs := []struct {
		in   int
		want int
	}{
		{in: 0, want: 20},
		{in: -5, want: 20},
		{in: 7, want: 7},
		{in: 500, want: 100},
	}
	for _, tc := range tcs {
		if got := ClampPageSize(tc.in, cfg); got != tc.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize without defaults = %d, want 1", got)
	}
}

func TestNormalizeOrderBy(t *testing.T) {
	cfg := OrderByConfig{Default: "created_at desc", Allowed: []string{"created_at desc", "created_at asc"}}

	got, err := NormalizeOrderBy("", cfg)
	if err != nil || got != "created_at desc" {
		t.Fatalf("NormalizeOrderBy(\"\") = %q, %v", got, err)
	}
	got, err = NormalizeOrderBy("  Created_At   ASC ", cfg)
	if err != nil || got != "created_at asc" {
		t.Fatalf("NormalizeOrderBy(mixed) = %q, %v", got, err)
	}
	if _, err := NormalizeOrderBy("seed desc", cfg); err == nil {
		t.Fatal("expected unknown order to be rejected")
	}
}

func TestOffsetTokens(t *testing.T) {
	if EncodeOffset(0) != "" {
		t.Fatal("expected offset 0 to encode as empty token")
	}
	token := EncodeOffset(40)
	offset, err := DecodeOffset(token)
	if err != nil {
		t.Fatalf("DecodeOffset: %v", err)
	}
	if offset != 40 {
		t.Fatalf("offset = %d, want 40", offset)
	}
	if offset, err := DecodeOffset(""); err != nil || offset != 0 {
		t.Fatalf("DecodeOffset(\"\") = %d, %v", offset, err)
	}
}

func TestDecodeOffsetRejectsForeignTokens(t *testing.T) {
	for _, token := range []string{"!!!", "bm90LWFuLW9mZnNldA", "b2Zmc2V0Oi0z"} {
		if _, err := DecodeOffset(token); !errors.Is(err, ErrInvalidPageToken) {
			t.Fatalf("DecodeOffset(%q) error = %v, want %v", token, err, ErrInvalidPageToken)
		}
	}
}
