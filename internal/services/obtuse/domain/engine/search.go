package engine

import (
	"fmt"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// Decomposition is the signed use of each catalog unit plus the base-unit
// remainder. Counts is aligned with the catalog unit order.
type Decomposition struct {
	Counts    []int
	Remainder catalog.Dimensions
}

// Covered returns Σ(unit dims × count) + remainder. It always equals the
// search target.
func (d Decomposition) Covered(units []catalog.DerivedUnit) catalog.Dimensions {
	total := d.Remainder
	for i, count := range d.Counts {
		total = total.Add(units[i].Dims.Scale(count))
	}
	return total
}

// candidate is the best unit for one side of the fraction. A side may have no
// eligible unit at all.
type candidate struct {
	index    int
	distance int
	eligible bool
}

func (c candidate) beats(other candidate) bool {
	if !c.eligible {
		return false
	}
	return !other.eligible || c.distance < other.distance
}

// decompose searches for unit counts covering target. The loop always runs
// exactly loops times.
func decompose(target catalog.Dimensions, units []catalog.DerivedUnit, loops int, spread *float64, tuning Tuning, rng Rand) (Decomposition, error) {
	axes := make([]int, 0, catalog.AxisCount)
	for axis, exp := range target {
		if exp > 0 {
			axes = append(axes, axis)
		}
	}
	if len(axes) == 0 {
		return Decomposition{}, fmt.Errorf("%w: %v has no positive axis", ErrNoDecomposition, target)
	}
	axis := axes[rng.Intn(len(axes))]

	seeds := make([]int, 0, len(units))
	for i, unit := range units {
		if unit.Dims[axis] > 0 {
			seeds = append(seeds, i)
		}
	}
	if len(seeds) == 0 {
		return Decomposition{}, fmt.Errorf("%w: no unit is positive on axis %d", ErrNoDecomposition, axis)
	}

	counts := make([]int, len(units))
	counts[seeds[rng.Intn(len(seeds))]] = 1
	remainder := remainderOf(target, units, counts)

	for i := 1; i <= loops; i++ {
		if spread != nil && loops-i > tuning.SpreadTailLoops && rng.Float64() >= *spread {
			if placeUnused(counts, rng) {
				remainder = remainderOf(target, units, counts)
				continue
			}
		}

		num, den := bestCandidates(units, counts, remainder)
		numeratorFirst := num.beats(den) || (num.eligible && num.distance == den.distance && !tuning.DenominatorWinsTies)
		switch {
		case numeratorFirst:
			counts[num.index]++
		case den.eligible:
			counts[den.index]--
		case num.eligible:
			counts[num.index]++
		}
		remainder = remainderOf(target, units, counts)
	}

	return Decomposition{Counts: counts, Remainder: remainder}, nil
}

// bestCandidates scores adding each unit once more to the numerator or the
// denominator. A unit already used on one side is ineligible for the other so
// counts never change sign.
func bestCandidates(units []catalog.DerivedUnit, counts []int, remainder catalog.Dimensions) (candidate, candidate) {
	var num, den candidate
	for i, unit := range units {
		if counts[i] >= 0 {
			c := candidate{index: i, distance: remainder.Sub(unit.Dims).L1(), eligible: true}
			if c.beats(num) {
				num = c
			}
		}
		if counts[i] <= 0 {
			c := candidate{index: i, distance: remainder.Add(unit.Dims).L1(), eligible: true}
			if c.beats(den) {
				den = c
			}
		}
	}
	return num, den
}

// placeUnused puts a random unused unit on a random side. It reports false
// when every unit is already in use.
func placeUnused(counts []int, rng Rand) bool {
	unused := make([]int, 0, len(counts))
	for i, count := range counts {
		if count == 0 {
			unused = append(unused, i)
		}
	}
	if len(unused) == 0 {
		return false
	}
	pick := unused[rng.Intn(len(unused))]
	if rng.Float64() < 0.5 {
		counts[pick] = 1
	} else {
		counts[pick] = -1
	}
	return true
}

func remainderOf(target catalog.Dimensions, units []catalog.DerivedUnit, counts []int) catalog.Dimensions {
	remainder := target
	for i, count := range counts {
		if count != 0 {
			remainder = remainder.Sub(units[i].Dims.Scale(count))
		}
	}
	return remainder
}
