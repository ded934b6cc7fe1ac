// Package engine turns a physical quantity into a randomized, dimensionally
// exact compound-unit expression.
//
// # Pipeline
//
// Obtusify runs four stages over fresh per-call state:
//
//  1. decompose picks signed counts of derived units covering the target
//     dimensions; what they leave uncovered becomes base-unit remainder.
//  2. assignPrefixes gives every unit slot a metric prefix, optionally under
//     a budget of non-empty prefixes.
//  3. adjustPrefixes nudges prefixes until the printed mantissa has an
//     acceptable order of magnitude.
//  4. The composer renders exponent words, plurals and the rounded mantissa.
//
// # Determinism
//
// All randomness comes from the Rand passed in. Given the same quantity,
// catalog, options and a Rand seeded identically, Obtusify returns the same
// Result byte for byte. Catalogs are only read, so concurrent calls sharing a
// catalog are safe as long as each call owns its Rand.
//
// Example:
//
//	res, err := engine.Obtusify(
//	    engine.Quantity{Value: 8024, Dims: catalog.Dimensions{0, 1, 0, 0}},
//	    catalog.SI(),
//	    engine.DefaultOptions(),
//	    engine.NewRand(1),
//	)
//	// res.Text is something like "8.024 microsievert-kilograms per nanonewton"
package engine

import (
	"fmt"
	"math"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// Quantity is a positive magnitude in SI base units and its dimensions.
type Quantity struct {
	Value float64
	Dims  catalog.Dimensions
}

// Result is a rendered obfuscation and the state that produced it.
type Result struct {
	// Text is the full rendered quantity, mantissa included.
	Text string
	// Units is the rendered unit expression alone.
	Units     string
	Mantissa  float64
	Order     int
	Counts    []int
	Remainder catalog.Dimensions
	Slots     []Slot
}

// PrefixCount returns how many slots carry a non-empty prefix.
func (r Result) PrefixCount() int {
	n := 0
	for _, slot := range r.Slots {
		if slot.Prefix != 0 {
			n++
		}
	}
	return n
}

// Obtusify renders q as an obtuse combination of the catalog's units and
// prefixes. It fails without partial output.
func Obtusify(q Quantity, cat catalog.Catalog, opts Options, rng Rand) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) || q.Value <= 0 {
		return Result{}, fmt.Errorf("%w: got %v", ErrInvalidValue, q.Value)
	}
	if err := cat.Validate(); err != nil {
		return Result{}, fmt.Errorf("catalog: %w", err)
	}
	if rng == nil {
		return Result{}, fmt.Errorf("random source is required")
	}
	tuning := opts.tuning()

	decomposition, err := decompose(q.Dims, cat.Units, opts.Loops, opts.Spread, tuning, rng)
	if err != nil {
		return Result{}, err
	}

	slots, err := buildSlots(cat.Units, decomposition)
	if err != nil {
		return Result{}, err
	}
	if err := checkExponents(slots); err != nil {
		return Result{}, err
	}

	assignPrefixes(slots, cat.Prefixes, opts.MaxPrefixes, rng)

	digits, k := splitDecimal(q.Value)
	order, err := adjustPrefixes(slots, cat.Magnitudes(), k, opts.MinValueOrder, opts.MaxValueOrder, tuning.MaxAdjustAttempts, rng)
	if err != nil {
		return Result{}, err
	}

	mantissa, err := shiftMantissa(digits, order)
	if err != nil {
		return Result{}, err
	}
	units, err := composeUnits(slots, cat)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:      composeQuantity(mantissa, units),
		Units:     pluralFixes.Replace(units),
		Mantissa:  mantissa,
		Order:     order,
		Counts:    decomposition.Counts,
		Remainder: decomposition.Remainder,
		Slots:     slots,
	}, nil
}
