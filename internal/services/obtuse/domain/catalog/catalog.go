// Package catalog defines the derived-unit and prefix catalogs the obfuscation
// engine draws from.
//
// Catalogs are plain values. The engine never mutates them, so one catalog can
// be shared across any number of concurrent calls.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Axis indexes one base dimension of a Dimensions vector.
type Axis int

const (
	AxisMass Axis = iota
	AxisLength
	AxisTime
	AxisCurrent
)

// AxisCount is the size of the dimension space.
const AxisCount = 4

var baseUnitNames = [AxisCount]string{"kilogram", "metre", "second", "ampere"}

// BaseUnitName returns the SI base unit rendered for the axis.
func BaseUnitName(axis Axis) (string, error) {
	if axis < 0 || int(axis) >= AxisCount {
		return "", fmt.Errorf("%w: %d", ErrUnknownAxis, axis)
	}
	return baseUnitNames[axis], nil
}

// Dimensions holds the exponents of mass, length, time and current.
type Dimensions [AxisCount]int

// Add returns d + o.
func (d Dimensions) Add(o Dimensions) Dimensions {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

// Sub returns d - o.
func (d Dimensions) Sub(o Dimensions) Dimensions {
	for i := range d {
		d[i] -= o[i]
	}
	return d
}

// Scale returns d multiplied by n.
func (d Dimensions) Scale(n int) Dimensions {
	for i := range d {
		d[i] *= n
	}
	return d
}

// L1 returns the sum of absolute exponents.
func (d Dimensions) L1() int {
	total := 0
	for _, v := range d {
		if v < 0 {
			v = -v
		}
		total += v
	}
	return total
}

// IsZero reports whether the vector is dimensionless.
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

func (d Dimensions) String() string {
	return fmt.Sprintf("(M%d L%d T%d I%d)", d[AxisMass], d[AxisLength], d[AxisTime], d[AxisCurrent])
}

// DerivedUnit is a named unit with a fixed dimension vector.
type DerivedUnit struct {
	Name string
	Dims Dimensions
}

// Prefix is a metric prefix and its power-of-ten magnitude.
type Prefix struct {
	Name      string
	Magnitude int
}

// Catalog groups the units and prefixes an obfuscation may use.
type Catalog struct {
	Units    []DerivedUnit
	Prefixes []Prefix
}

var (
	// ErrNoUnits indicates a catalog without derived units.
	ErrNoUnits = errors.New("catalog has no derived units")
	// ErrNoZeroPrefix indicates the prefix catalog lacks magnitude 0.
	ErrNoZeroPrefix = errors.New("prefix catalog must contain magnitude 0")
	// ErrDuplicatePrefix indicates two prefixes share a magnitude.
	ErrDuplicatePrefix = errors.New("duplicate prefix magnitude")
	// ErrDuplicateUnit indicates two units share a name.
	ErrDuplicateUnit = errors.New("duplicate unit name")
	// ErrInvalidUnit indicates a unit with an empty name or no dimensions.
	ErrInvalidUnit = errors.New("unit must have a name and a non-zero dimension vector")
	// ErrUnknownAxis indicates an axis index outside the dimension space.
	ErrUnknownAxis = errors.New("unknown dimension axis")
	// ErrUnknownPrefix indicates a magnitude missing from the prefix catalog.
	ErrUnknownPrefix = errors.New("unknown prefix magnitude")
)

// Validate checks the invariants the engine relies on.
func (c Catalog) Validate() error {
	if len(c.Units) == 0 {
		return ErrNoUnits
	}
	names := make(map[string]struct{}, len(c.Units))
	for _, unit := range c.Units {
		name := strings.TrimSpace(unit.Name)
		if name == "" || unit.Dims.IsZero() {
			return fmt.Errorf("%w: %q", ErrInvalidUnit, unit.Name)
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateUnit, name)
		}
		names[name] = struct{}{}
	}

	seen := make(map[int]struct{}, len(c.Prefixes))
	hasZero := false
	for _, prefix := range c.Prefixes {
		if _, ok := seen[prefix.Magnitude]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicatePrefix, prefix.Magnitude)
		}
		seen[prefix.Magnitude] = struct{}{}
		if prefix.Magnitude == 0 {
			hasZero = true
		}
	}
	if !hasZero {
		return ErrNoZeroPrefix
	}
	return nil
}

// PrefixName returns the name registered for a magnitude.
func (c Catalog) PrefixName(magnitude int) (string, error) {
	for _, prefix := range c.Prefixes {
		if prefix.Magnitude == magnitude {
			return prefix.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownPrefix, magnitude)
}

// Magnitudes returns the prefix magnitudes in ascending order.
func (c Catalog) Magnitudes() []int {
	mags := make([]int, 0, len(c.Prefixes))
	for _, prefix := range c.Prefixes {
		mags = append(mags, prefix.Magnitude)
	}
	sort.Ints(mags)
	return mags
}

// Clone returns a deep copy so callers may edit it freely.
func (c Catalog) Clone() Catalog {
	return Catalog{
		Units:    append([]DerivedUnit(nil), c.Units...),
		Prefixes: append([]Prefix(nil), c.Prefixes...),
	}
}
