package random

import (
	"errors"
	"testing"
)

func TestNewSeedVaries(t *testing.T) {
	seen := map[int64]bool{}
	for range 8 {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed: %v", err)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct seeds, got %v", seen)
	}
}

func TestResolveSeedDefaultsToServerSeed(t *testing.T) {
	seed, source, err := ResolveSeed(nil, func() (int64, error) {
		return 123, nil
	})
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != 123 {
		t.Fatalf("seed = %d, want 123", seed)
	}
	if source != SeedSourceServer {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceServer)
	}
}

func TestResolveSeedUsesClientSeed(t *testing.T) {
	requested := int64(-77)
	seed, source, err := ResolveSeed(&requested, func() (int64, error) {
		t.Fatal("generator should not run")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != requested {
		t.Fatalf("seed = %d, want %d", seed, requested)
	}
	if source != SeedSourceClient {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceClient)
	}
}

func TestResolveSeedPropagatesGeneratorError(t *testing.T) {
	want := errors.New("entropy exhausted")
	_, _, err := ResolveSeed(nil, func() (int64, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestResolveSeedFallsBackToNewSeed(t *testing.T) {
	_, source, err := ResolveSeed(nil, nil)
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if source != SeedSourceServer {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceServer)
	}
}
