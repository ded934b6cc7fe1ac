package engine

import (
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// Side places a slot in the numerator or the denominator.
type Side int

const (
	SideNumerator Side = iota
	SideDenominator
)

func (s Side) String() string {
	switch s {
	case SideNumerator:
		return "numerator"
	case SideDenominator:
		return "denominator"
	default:
		return "unknown"
	}
}

// Slot is one rendered unit position.
type Slot struct {
	Unit     string
	Exponent int
	Side     Side
	// Prefix is meaningful only once Assigned is true; magnitude 0 is the
	// empty prefix, not "unassigned".
	Prefix   int
	Assigned bool
	// Pinned marks slots fixed to magnitude 0 by the prefix budget. The
	// tolerance adjuster never moves them.
	Pinned bool
}

// buildSlots lays out numerator then denominator slots: derived units in
// catalog order followed by base-unit remainder axes.
func buildSlots(units []catalog.DerivedUnit, d Decomposition) ([]Slot, error) {
	var num, den []Slot
	for i, count := range d.Counts {
		switch {
		case count > 0:
			num = append(num, Slot{Unit: units[i].Name, Exponent: count, Side: SideNumerator})
		case count < 0:
			den = append(den, Slot{Unit: units[i].Name, Exponent: -count, Side: SideDenominator})
		}
	}
	for axis, exp := range d.Remainder {
		if exp == 0 {
			continue
		}
		name, err := catalog.BaseUnitName(catalog.Axis(axis))
		if err != nil {
			return nil, err
		}
		if exp > 0 {
			num = append(num, Slot{Unit: name, Exponent: exp, Side: SideNumerator})
		} else {
			den = append(den, Slot{Unit: name, Exponent: -exp, Side: SideDenominator})
		}
	}
	return append(num, den...), nil
}

// assignPrefixes pins slots to the empty prefix until at most maxPrefixes
// remain open, then draws a random catalog prefix for each open slot.
func assignPrefixes(slots []Slot, prefixes []catalog.Prefix, maxPrefixes *int, rng Rand) {
	if maxPrefixes != nil {
		for {
			num := openSlots(slots, SideNumerator)
			den := openSlots(slots, SideDenominator)
			if len(num)+len(den) <= *maxPrefixes {
				break
			}
			side := den
			if rng.Float64() < float64(len(num))/float64(len(num)+len(den)) {
				side = num
			}
			pick := side[rng.Intn(len(side))]
			slots[pick].Prefix = 0
			slots[pick].Assigned = true
			slots[pick].Pinned = true
		}
	}

	for i := range slots {
		if slots[i].Assigned {
			continue
		}
		slots[i].Prefix = prefixes[rng.Intn(len(prefixes))].Magnitude
		slots[i].Assigned = true
	}
}

func openSlots(slots []Slot, side Side) []int {
	var open []int
	for i, slot := range slots {
		if slot.Side == side && !slot.Assigned {
			open = append(open, i)
		}
	}
	return open
}
