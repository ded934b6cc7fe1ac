package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

var length = catalog.Dimensions{0, 1, 0, 0}

// unlucky reports errors a random draw may legitimately produce.
func unlucky(err error) bool {
	return errors.Is(err, ErrToleranceUnsatisfiable) ||
		errors.Is(err, ErrExponentOutOfRange) ||
		errors.Is(err, ErrMantissaOutOfRange)
}

// TestObtusifyIsDeterministic ensures identical seeds produce identical output.
func TestObtusifyIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.Loops = 6
	opts.MinValueOrder = Int(-8)
	opts.MaxValueOrder = Int(8)
	opts.Spread = Float(0.3)

	for seed := int64(0); seed < 25; seed++ {
		q := Quantity{Value: 8024, Dims: length}
		first, firstErr := Obtusify(q, catalog.SI(), opts, NewRand(seed))
		second, secondErr := Obtusify(q, catalog.SI(), opts, NewRand(seed))
		if (firstErr == nil) != (secondErr == nil) {
			t.Fatalf("seed %d: errors differ: %v vs %v", seed, firstErr, secondErr)
		}
		if first.Text != second.Text {
			t.Fatalf("seed %d: text %q != %q", seed, first.Text, second.Text)
		}
	}
}

// TestObtusifyRoundTripsDimensions checks Σ(unit dims × count) + remainder == input.
func TestObtusifyRoundTripsDimensions(t *testing.T) {
	cat := catalog.SI()
	targets := []catalog.Dimensions{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{1, 1, -2, 0},
		{1, 2, -3, -1},
		{0, 0, 1, 1},
		{2, -1, 3, 0},
		{0, 0, 0, 1},
	}
	for _, target := range targets {
		for loops := 1; loops <= 8; loops++ {
			for seed := int64(0); seed < 10; seed++ {
				opts := DefaultOptions()
				opts.Loops = loops
				res, err := Obtusify(Quantity{Value: 3.5, Dims: target}, cat, opts, NewRand(seed))
				if unlucky(err) {
					continue
				}
				if err != nil {
					t.Fatalf("target %v loops %d seed %d: %v", target, loops, seed, err)
				}
				decomposition := Decomposition{Counts: res.Counts, Remainder: res.Remainder}
				if got := decomposition.Covered(cat.Units); got != target {
					t.Fatalf("target %v loops %d seed %d: covered %v", target, loops, seed, got)
				}
			}
		}
	}
}

// TestObtusifyKeepsOrderWithinBounds checks the mantissa bound property.
func TestObtusifyKeepsOrderWithinBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Loops = 4
	opts.MinValueOrder = Int(-2)
	opts.MaxValueOrder = Int(2)

	successes := 0
	for seed := int64(0); seed < 50; seed++ {
		res, err := Obtusify(Quantity{Value: 5, Dims: length}, catalog.SI(), opts, NewRand(seed))
		if unlucky(err) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		successes++
		if res.Order < -2 || res.Order > 2 {
			t.Fatalf("seed %d: order %d outside [-2, 2]", seed, res.Order)
		}
		want := 5 * math.Pow(10, float64(-res.Order))
		if math.Abs(res.Mantissa-want) > want*1e-12 {
			t.Fatalf("seed %d: mantissa %v, want %v", seed, res.Mantissa, want)
		}
	}
	if successes == 0 {
		t.Fatal("expected at least one seed to satisfy the bounds")
	}
}

// TestObtusifyHonoursPrefixBudget checks non-empty prefixes never exceed maxprefs.
func TestObtusifyHonoursPrefixBudget(t *testing.T) {
	for budget := 0; budget <= 2; budget++ {
		opts := DefaultOptions()
		opts.Loops = 5
		opts.MaxPrefixes = Int(budget)
		opts.MinValueOrder = Int(-6)
		opts.MaxValueOrder = Int(6)
		for seed := int64(0); seed < 30; seed++ {
			res, err := Obtusify(Quantity{Value: 42, Dims: catalog.Dimensions{1, 1, -2, 0}}, catalog.SI(), opts, NewRand(seed))
			if unlucky(err) {
				continue
			}
			if err != nil {
				t.Fatalf("budget %d seed %d: %v", budget, seed, err)
			}
			if got := res.PrefixCount(); got > budget {
				t.Fatalf("budget %d seed %d: %d prefixes in %q", budget, seed, got, res.Text)
			}
		}
	}
}

// TestObtusifyScenarioKilometres runs the five kilometre sample.
func TestObtusifyScenarioKilometres(t *testing.T) {
	opts := DefaultOptions()
	opts.Loops = 10
	opts.MinValueOrder = Int(-5)
	opts.MaxValueOrder = Int(5)
	opts.Spread = Float(0.5)
	cat := catalog.SI()

	successes := 0
	for seed := int64(1); seed <= 50; seed++ {
		res, err := Obtusify(Quantity{Value: 5000, Dims: length}, cat, opts, NewRand(seed))
		if unlucky(err) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		successes++
		covered := Decomposition{Counts: res.Counts, Remainder: res.Remainder}.Covered(cat.Units)
		if covered != length {
			t.Fatalf("seed %d: covered %v, want %v", seed, covered, length)
		}
		if res.Order < -5 || res.Order > 5 {
			t.Fatalf("seed %d: order %d outside [-5, 5]", seed, res.Order)
		}
		again, err := Obtusify(Quantity{Value: 5000, Dims: length}, cat, opts, NewRand(seed))
		if err != nil || again.Text != res.Text {
			t.Fatalf("seed %d: rerun = %q, %v; want %q", seed, again.Text, err, res.Text)
		}
	}
	if successes == 0 {
		t.Fatal("expected at least one seed to succeed")
	}
}

// TestObtusifyScenarioExactOrder pins the order to zero.
func TestObtusifyScenarioExactOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.Loops = 3
	opts.MinValueOrder = Int(0)
	opts.MaxValueOrder = Int(0)

	successes := 0
	for seed := int64(0); seed < 40; seed++ {
		res, err := Obtusify(Quantity{Value: 7.25e11, Dims: length}, catalog.SI(), opts, NewRand(seed))
		if unlucky(err) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		successes++
		if res.Mantissa < 1 || res.Mantissa >= 10 {
			t.Fatalf("seed %d: mantissa %v not in [1, 10)", seed, res.Mantissa)
		}
		if !strings.HasPrefix(res.Text, "7.25 ") {
			t.Fatalf("seed %d: text %q, want 7.25 prefix", seed, res.Text)
		}
	}
	if successes == 0 {
		t.Fatal("expected at least one seed to succeed")
	}
}

// TestObtusifyCoarsePrefixesFailLoudly ensures an unreachable order errors
// instead of looping.
func TestObtusifyCoarsePrefixesFailLoudly(t *testing.T) {
	cat := catalog.Catalog{
		Units:    catalog.SIUnits(),
		Prefixes: []catalog.Prefix{{Name: "", Magnitude: 0}, {Name: "yotta", Magnitude: 24}},
	}
	opts := DefaultOptions()
	opts.MinValueOrder = Int(0)
	opts.MaxValueOrder = Int(0)

	// Orders are multiples of 24 minus 3, never 0.
	for seed := int64(0); seed < 10; seed++ {
		_, err := Obtusify(Quantity{Value: 5000, Dims: length}, cat, opts, NewRand(seed))
		if !errors.Is(err, ErrToleranceUnsatisfiable) {
			t.Fatalf("seed %d: error = %v, want %v", seed, err, ErrToleranceUnsatisfiable)
		}
	}
}

// TestObtusifyExtremeOrderFailsLoudly renders a high-power unit with only
// the empty and yocto prefixes and no order bounds: a yocto draw shifts the
// mantissa by 24 × 18 orders, past float64, and must fail instead of printing 0.
func TestObtusifyExtremeOrderFailsLoudly(t *testing.T) {
	cat := catalog.Catalog{
		Units:    []catalog.DerivedUnit{{Name: "furlong", Dims: catalog.Dimensions{0, 1, 0, 0}}},
		Prefixes: []catalog.Prefix{{Name: "", Magnitude: 0}, {Name: "yocto", Magnitude: -24}},
	}
	opts := DefaultOptions()
	opts.Loops = 17

	failures := 0
	for seed := int64(0); seed < 60; seed++ {
		res, err := Obtusify(Quantity{Value: 5, Dims: catalog.Dimensions{0, 18, 0, 0}}, cat, opts, NewRand(seed))
		if errors.Is(err, ErrMantissaOutOfRange) {
			failures++
			if res.Text != "" {
				t.Fatalf("seed %d: text %q, want no partial output", seed, res.Text)
			}
			continue
		}
		if errors.Is(err, ErrExponentOutOfRange) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res.Mantissa == 0 || math.IsInf(res.Mantissa, 0) || strings.HasPrefix(res.Text, "0 ") {
			t.Fatalf("seed %d: mantissa %v text %q", seed, res.Mantissa, res.Text)
		}
	}
	if failures == 0 {
		t.Fatal("expected a yocto draw to overflow the mantissa")
	}
}

// TestObtusifyScenarioNoPrefixes checks maxprefs=0 renders bare units.
func TestObtusifyScenarioNoPrefixes(t *testing.T) {
	opts := DefaultOptions()
	opts.Loops = 6
	opts.MaxPrefixes = Int(0)
	opts.Spread = Float(0.2)

	for seed := int64(0); seed < 20; seed++ {
		res, err := Obtusify(Quantity{Value: 5000, Dims: length}, catalog.SI(), opts, NewRand(seed))
		if unlucky(err) {
			continue
		}
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, slot := range res.Slots {
			if slot.Prefix != 0 || !slot.Pinned {
				t.Fatalf("seed %d: slot %+v has a prefix", seed, slot)
			}
		}
		if !strings.HasPrefix(res.Text, "5000 ") {
			t.Fatalf("seed %d: text %q, want unshifted mantissa", seed, res.Text)
		}
	}
}

// TestObtusifyNeverRendersBrokenPlurals checks the irregular plural fixes.
func TestObtusifyNeverRendersBrokenPlurals(t *testing.T) {
	cat := catalog.Catalog{
		Units: []catalog.DerivedUnit{
			{Name: "henry", Dims: catalog.Dimensions{1, 2, -2, -2}},
			{Name: "hertz", Dims: catalog.Dimensions{0, 0, -1, 0}},
		},
		Prefixes: catalog.SIPrefixes(),
	}
	for loops := 1; loops <= 4; loops++ {
		for seed := int64(0); seed < 20; seed++ {
			opts := DefaultOptions()
			opts.Loops = loops
			res, err := Obtusify(Quantity{Value: 1, Dims: catalog.Dimensions{1, 2, -2, -2}}, cat, opts, NewRand(seed))
			if unlucky(err) {
				continue
			}
			if err != nil {
				t.Fatalf("loops %d seed %d: %v", loops, seed, err)
			}
			if strings.Contains(res.Text, "hertzs") || strings.Contains(res.Text, "henrys") {
				t.Fatalf("loops %d seed %d: broken plural in %q", loops, seed, res.Text)
			}
		}
	}
}

func TestObtusifyTieBreak(t *testing.T) {
	cat := catalog.Catalog{
		Units: []catalog.DerivedUnit{
			{Name: "henry", Dims: catalog.Dimensions{1, 2, -2, -2}},
			{Name: "hertz", Dims: catalog.Dimensions{0, 0, -1, 0}},
		},
		Prefixes: catalog.SIPrefixes(),
	}
	q := Quantity{Value: 1, Dims: catalog.Dimensions{1, 2, -2, -2}}

	opts := DefaultOptions()
	opts.Loops = 1
	res, err := Obtusify(q, cat, opts, NewRand(3))
	if err != nil {
		t.Fatalf("Obtusify: %v", err)
	}
	if res.Counts[0] != 1 || res.Counts[1] != 1 {
		t.Fatalf("counts = %v, want [1 1]", res.Counts)
	}
	if !strings.Contains(res.Text, "hertz-") || !strings.HasSuffix(res.Text, "seconds") {
		t.Fatalf("text = %q, want hertz in the numerator and seconds last", res.Text)
	}

	opts.Tuning.DenominatorWinsTies = true
	res, err = Obtusify(q, cat, opts, NewRand(3))
	if err != nil {
		t.Fatalf("Obtusify: %v", err)
	}
	if res.Counts[0] != 1 || res.Counts[1] != -1 {
		t.Fatalf("counts = %v, want [1 -1]", res.Counts)
	}
	if !strings.Contains(res.Text, " per ") {
		t.Fatalf("text = %q, want a denominator", res.Text)
	}
}

func TestObtusifyRejectsInvalidInput(t *testing.T) {
	tcs := []struct {
		name string
		q    Quantity
		opts func(*Options)
		want error
	}{
		{
			name: "inverted bounds",
			q:    Quantity{Value: 1, Dims: length},
			opts: func(o *Options) { o.MinValueOrder, o.MaxValueOrder = Int(3), Int(-3) },
			want: ErrInvalidBounds,
		},
		{
			name: "zero loops",
			q:    Quantity{Value: 1, Dims: length},
			opts: func(o *Options) { o.Loops = 0 },
			want: ErrInvalidLoops,
		},
		{
			name: "spread of one",
			q:    Quantity{Value: 1, Dims: length},
			opts: func(o *Options) { o.Spread = Float(1) },
			want: ErrInvalidSpread,
		},
		{
			name: "negative budget",
			q:    Quantity{Value: 1, Dims: length},
			opts: func(o *Options) { o.MaxPrefixes = Int(-1) },
			want: ErrInvalidMaxPrefixes,
		},
		{
			name: "zero value",
			q:    Quantity{Value: 0, Dims: length},
			want: ErrInvalidValue,
		},
		{
			name: "infinite value",
			q:    Quantity{Value: math.Inf(1), Dims: length},
			want: ErrInvalidValue,
		},
		{
			name: "no positive axis",
			q:    Quantity{Value: 1, Dims: catalog.Dimensions{0, 0, -1, 0}},
			want: ErrNoDecomposition,
		},
		{
			name: "dimensionless",
			q:    Quantity{Value: 1},
			want: ErrNoDecomposition,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tc.opts != nil {
				tc.opts(&opts)
			}
			res, err := Obtusify(tc.q, catalog.SI(), opts, NewRand(1))
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if res.Text != "" {
				t.Fatalf("text = %q, want no partial output", res.Text)
			}
		})
	}
}

func TestObtusifyRejectsUnseedableCatalog(t *testing.T) {
	cat := catalog.Catalog{
		Units:    []catalog.DerivedUnit{{Name: "hertz", Dims: catalog.Dimensions{0, 0, -1, 0}}},
		Prefixes: catalog.SIPrefixes(),
	}
	_, err := Obtusify(Quantity{Value: 1, Dims: length}, cat, DefaultOptions(), NewRand(1))
	if !errors.Is(err, ErrNoDecomposition) {
		t.Fatalf("error = %v, want %v", err, ErrNoDecomposition)
	}
}

func TestObtusifyRejectsUnnameableExponent(t *testing.T) {
	cat := catalog.Catalog{
		Units:    []catalog.DerivedUnit{{Name: "furlong", Dims: catalog.Dimensions{0, 1, 0, 0}}},
		Prefixes: catalog.SIPrefixes(),
	}
	opts := DefaultOptions()
	opts.Loops = 1
	// One loop leaves furlong² and metre²³.
	_, err := Obtusify(Quantity{Value: 1, Dims: catalog.Dimensions{0, 25, 0, 0}}, cat, opts, NewRand(1))
	if !errors.Is(err, ErrExponentOutOfRange) {
		t.Fatalf("error = %v, want %v", err, ErrExponentOutOfRange)
	}
}

func TestObtusifyRejectsInvalidCatalog(t *testing.T) {
	cat := catalog.Catalog{Units: catalog.SIUnits(), Prefixes: []catalog.Prefix{{Name: "kilo", Magnitude: 3}}}
	_, err := Obtusify(Quantity{Value: 1, Dims: length}, cat, DefaultOptions(), NewRand(1))
	if !errors.Is(err, catalog.ErrNoZeroPrefix) {
		t.Fatalf("error = %v, want %v", err, catalog.ErrNoZeroPrefix)
	}
}

func TestObtusifyDoesNotMutateCatalog(t *testing.T) {
	cat := catalog.SI()
	before := cat.Clone()
	opts := DefaultOptions()
	opts.Loops = 8
	for seed := int64(0); seed < 5; seed++ {
		if _, err := Obtusify(Quantity{Value: 12, Dims: catalog.Dimensions{1, 2, -2, 0}}, cat, opts, NewRand(seed)); err != nil && !unlucky(err) {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
	for i := range cat.Units {
		if cat.Units[i] != before.Units[i] {
			t.Fatalf("unit %d changed: %+v", i, cat.Units[i])
		}
	}
	for i := range cat.Prefixes {
		if cat.Prefixes[i] != before.Prefixes[i] {
			t.Fatalf("prefix %d changed: %+v", i, cat.Prefixes[i])
		}
	}
}
