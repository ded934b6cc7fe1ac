package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// splitDecimal returns the shortest decimal mantissa digits of value and
// floor(log10(value)). Going through the decimal form keeps exact powers of
// ten exact, which math.Log10 does not guarantee.
func splitDecimal(value float64) (string, int) {
	s := strconv.FormatFloat(value, 'e', -1, 64)
	digits, exp, _ := strings.Cut(s, "e")
	k, err := strconv.Atoi(exp)
	if err != nil {
		return digits, 0
	}
	return digits, k
}

// shiftMantissa returns digits × 10^-order. Results that overflow to
// infinity or underflow to zero fail with ErrMantissaOutOfRange.
func shiftMantissa(digits string, order int) (float64, error) {
	v, err := strconv.ParseFloat(digits+"e"+strconv.Itoa(-order), 64)
	if err != nil || v == 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %se%d", ErrMantissaOutOfRange, digits, -order)
	}
	return v, nil
}

// prefixOrder returns how many powers of ten the slots shift the value's
// mantissa: Σ numerator prefix×exponent − Σ denominator prefix×exponent − k.
func prefixOrder(slots []Slot, k int) int {
	total := 0
	for _, slot := range slots {
		shift := slot.Prefix * slot.Exponent
		if slot.Side == SideDenominator {
			shift = -shift
		}
		total += shift
	}
	return total - k
}

func withinBounds(order int, minOrder, maxOrder *int) bool {
	if maxOrder != nil && order > *maxOrder {
		return false
	}
	if minOrder != nil && order < *minOrder {
		return false
	}
	return true
}

// adjustPrefixes moves one prefix per attempt until the order lies within the
// bounds. Only slots that came out of prefix assignment with a non-empty
// prefix may move; that set is fixed before the first attempt, so a slot
// passing through the empty prefix stays movable. Attempts that find nothing
// to move still count.
func adjustPrefixes(slots []Slot, magnitudes []int, k int, minOrder, maxOrder *int, maxAttempts int, rng Rand) (int, error) {
	sort.Ints(magnitudes)
	order := prefixOrder(slots, k)

	movable := make([]bool, len(slots))
	for i, slot := range slots {
		movable[i] = !slot.Pinned && slot.Prefix != 0
	}

	numSlots := 0
	for _, slot := range slots {
		if slot.Side == SideNumerator {
			numSlots++
		}
	}
	numeratorShare := float64(numSlots) / float64(len(slots))

	for attempt := 1; !withinBounds(order, minOrder, maxOrder); attempt++ {
		if attempt > maxAttempts {
			return order, fmt.Errorf("%w: order %d still outside [%s, %s] after %d attempts",
				ErrToleranceUnsatisfiable, order, boundLabel(minOrder, "-inf"), boundLabel(maxOrder, "+inf"), maxAttempts)
		}
		decrease := maxOrder != nil && order > *maxOrder

		side := SideDenominator
		if rng.Float64() < numeratorShare {
			side = SideNumerator
		}
		i, ok := pickAdjustable(slots, movable, side, rng)
		if !ok {
			continue
		}
		// Lowering the order means smaller numerator prefixes or larger
		// denominator prefixes.
		up := decrease == (side == SideDenominator)
		next, ok := neighbourMagnitude(magnitudes, slots[i].Prefix, up)
		if !ok {
			continue
		}
		slots[i].Prefix = next
		order = prefixOrder(slots, k)
	}
	return order, nil
}

// pickAdjustable draws a movable slot on side, weighted by its exponent.
func pickAdjustable(slots []Slot, movable []bool, side Side, rng Rand) (int, bool) {
	total := 0
	for i, slot := range slots {
		if slot.Side == side && movable[i] {
			total += slot.Exponent
		}
	}
	if total == 0 {
		return 0, false
	}
	target := rng.Intn(total)
	for i, slot := range slots {
		if slot.Side != side || !movable[i] {
			continue
		}
		if target < slot.Exponent {
			return i, true
		}
		target -= slot.Exponent
	}
	return 0, false
}

// neighbourMagnitude returns the nearest magnitude strictly above (up) or
// below current. magnitudes must be sorted ascending.
func neighbourMagnitude(magnitudes []int, current int, up bool) (int, bool) {
	if up {
		for _, m := range magnitudes {
			if m > current {
				return m, true
			}
		}
		return 0, false
	}
	for i := len(magnitudes) - 1; i >= 0; i-- {
		if magnitudes[i] < current {
			return magnitudes[i], true
		}
	}
	return 0, false
}

func boundLabel(bound *int, unset string) string {
	if bound == nil {
		return unset
	}
	return fmt.Sprintf("%d", *bound)
}
