// Package random provides seed generation and resolution helpers.
//
// Every obfuscation draws from a PRNG seeded here, so a recorded seed is
// enough to replay a call.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// SeedSource records who chose a seed.
type SeedSource string

const (
	// SeedSourceClient marks a seed supplied by the caller.
	SeedSourceClient SeedSource = "CLIENT"
	// SeedSourceServer marks a seed generated with crypto/rand.
	SeedSourceServer SeedSource = "SERVER"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns the requested seed when one is given, otherwise a
// fresh seed from generate. A nil generate uses NewSeed.
func ResolveSeed(requested *int64, generate func() (int64, error)) (int64, SeedSource, error) {
	if requested != nil {
		return *requested, SeedSourceClient, nil
	}
	if generate == nil {
		generate = NewSeed
	}
	seed, err := generate()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceServer, nil
}
