package engine

import (
	"fmt"
	"math"
	"math/rand"
)

// Rand is the randomness the engine consumes. *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// NewRand returns a seeded source. Equal seeds yield equal outputs.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Tuning holds empirically chosen constants of the search and adjuster.
type Tuning struct {
	// SpreadTailLoops is how many final iterations always run greedily when a
	// spread is set.
	SpreadTailLoops int
	// DenominatorWinsTies flips the greedy tie-break towards the denominator.
	DenominatorWinsTies bool
	// MaxAdjustAttempts caps the prefix adjuster.
	MaxAdjustAttempts int
}

// DefaultTuning returns the constants the bot shipped with.
func DefaultTuning() Tuning {
	return Tuning{
		SpreadTailLoops:   3,
		MaxAdjustAttempts: 100,
	}
}

// Options configures one obfuscation. Nil pointers mean "unset".
type Options struct {
	Loops         int
	MaxValueOrder *int
	MinValueOrder *int
	MaxPrefixes   *int
	Spread        *float64
	Tuning        Tuning
}

// DefaultOptions returns two search loops, unbounded order and no budget.
func DefaultOptions() Options {
	return Options{Loops: 2, Tuning: DefaultTuning()}
}

// Int returns a pointer to v, for optional Options fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional Options fields.
func Float(v float64) *float64 { return &v }

// Validate checks option ranges before any randomness is consumed.
func (o Options) Validate() error {
	if o.Loops < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLoops, o.Loops)
	}
	if o.MaxValueOrder != nil && o.MinValueOrder != nil && *o.MaxValueOrder < *o.MinValueOrder {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidBounds, *o.MinValueOrder, *o.MaxValueOrder)
	}
	if o.MaxPrefixes != nil && *o.MaxPrefixes < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxPrefixes, *o.MaxPrefixes)
	}
	if o.Spread != nil {
		s := *o.Spread
		if math.IsNaN(s) || s < 0 || s >= 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidSpread, s)
		}
	}
	return nil
}

func (o Options) tuning() Tuning {
	t := o.Tuning
	if t.SpreadTailLoops <= 0 {
		t.SpreadTailLoops = DefaultTuning().SpreadTailLoops
	}
	if t.MaxAdjustAttempts <= 0 {
		t.MaxAdjustAttempts = DefaultTuning().MaxAdjustAttempts
	}
	return t
}
