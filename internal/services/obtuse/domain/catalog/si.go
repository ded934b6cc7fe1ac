package catalog

// siUnits are the SI derived units used by default. Dimensions are (M, L, T, I).
var siUnits = []DerivedUnit{
	{Name: "hertz", Dims: Dimensions{0, 0, -1, 0}},
	{Name: "newton", Dims: Dimensions{1, 1, -2, 0}},
	{Name: "pascal", Dims: Dimensions{1, -1, -2, 0}},
	{Name: "joule", Dims: Dimensions{1, 2, -2, 0}},
	{Name: "watt", Dims: Dimensions{1, 2, -3, 0}},
	{Name: "coulomb", Dims: Dimensions{0, 0, 1, 1}},
	{Name: "volt", Dims: Dimensions{1, 2, -3, -1}},
	{Name: "farad", Dims: Dimensions{-1, -2, 4, 2}},
	{Name: "ohm", Dims: Dimensions{1, 2, -3, -2}},
	{Name: "siemen", Dims: Dimensions{-1, -2, 3, 2}},
	{Name: "weber", Dims: Dimensions{1, 2, -2, -1}},
	{Name: "tesla", Dims: Dimensions{1, 0, -2, -1}},
	{Name: "henry", Dims: Dimensions{1, 2, -2, -2}},
	{Name: "sievert", Dims: Dimensions{0, 2, -2, 0}},
}

// Dropping the sub-kilo prefixes (hecto..centi) makes tight order bounds much
// harder to reach.
var siPrefixes = []Prefix{
	{Name: "yotta", Magnitude: 24},
	{Name: "zetta", Magnitude: 21},
	{Name: "exa", Magnitude: 18},
	{Name: "peta", Magnitude: 15},
	{Name: "tera", Magnitude: 12},
	{Name: "giga", Magnitude: 9},
	{Name: "mega", Magnitude: 6},
	{Name: "kilo", Magnitude: 3},
	{Name: "hecto", Magnitude: 2},
	{Name: "deca", Magnitude: 1},
	{Name: "", Magnitude: 0},
	{Name: "deci", Magnitude: -1},
	{Name: "centi", Magnitude: -2},
	{Name: "milli", Magnitude: -3},
	{Name: "micro", Magnitude: -6},
	{Name: "nano", Magnitude: -9},
	{Name: "pico", Magnitude: -12},
	{Name: "femto", Magnitude: -15},
	{Name: "atto", Magnitude: -18},
	{Name: "zepto", Magnitude: -21},
	{Name: "yocto", Magnitude: -24},
}

// SI returns a fresh copy of the default SI catalog.
func SI() Catalog {
	return Catalog{Units: siUnits, Prefixes: siPrefixes}.Clone()
}

// SIUnits returns a fresh copy of the default derived units.
func SIUnits() []DerivedUnit {
	return append([]DerivedUnit(nil), siUnits...)
}

// SIPrefixes returns a fresh copy of the default prefixes.
func SIPrefixes() []Prefix {
	return append([]Prefix(nil), siPrefixes...)
}
