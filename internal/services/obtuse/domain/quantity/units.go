package quantity

import (
	"strings"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// unit converts one recognised unit to SI base units: value × scale × 10^exp.
type unit struct {
	scale      float64
	exp        int
	dims       catalog.Dimensions
	prefixable bool
}

func si(m, l, t, i int) unit {
	return unit{scale: 1, dims: catalog.Dimensions{m, l, t, i}, prefixable: true}
}

var (
	metre    = si(0, 1, 0, 0)
	gram     = unit{scale: 1, exp: -3, dims: catalog.Dimensions{1, 0, 0, 0}, prefixable: true}
	second   = si(0, 0, 1, 0)
	ampere   = si(0, 0, 0, 1)
	hertz    = si(0, 0, -1, 0)
	newton   = si(1, 1, -2, 0)
	pascal   = si(1, -1, -2, 0)
	joule    = si(1, 2, -2, 0)
	watt     = si(1, 2, -3, 0)
	coulomb  = si(0, 0, 1, 1)
	volt     = si(1, 2, -3, -1)
	farad    = si(-1, -2, 4, 2)
	ohm      = si(1, 2, -3, -2)
	siemens  = si(-1, -2, 3, 2)
	weber    = si(1, 2, -2, -1)
	tesla    = si(1, 0, -2, -1)
	henry    = si(1, 2, -2, -2)
	gray     = si(0, 2, -2, 0)
	litre    = unit{scale: 1, exp: -3, dims: catalog.Dimensions{0, 3, 0, 0}, prefixable: true}
	minute   = unit{scale: 60, dims: catalog.Dimensions{0, 0, 1, 0}}
	hour     = unit{scale: 3600, dims: catalog.Dimensions{0, 0, 1, 0}}
	day      = unit{scale: 86400, dims: catalog.Dimensions{0, 0, 1, 0}}
	inch     = unit{scale: 0.0254, dims: catalog.Dimensions{0, 1, 0, 0}}
	foot     = unit{scale: 0.3048, dims: catalog.Dimensions{0, 1, 0, 0}}
	yard     = unit{scale: 0.9144, dims: catalog.Dimensions{0, 1, 0, 0}}
	mile     = unit{scale: 1609.344, dims: catalog.Dimensions{0, 1, 0, 0}}
	pound    = unit{scale: 0.45359237, dims: catalog.Dimensions{1, 0, 0, 0}}
	mileHour = unit{scale: 0.44704, dims: catalog.Dimensions{0, 1, -1, 0}}
)

// symbols are case-sensitive. Text is NFKC-normalised first, so the ohm sign
// arrives as a Greek capital omega.
var symbols = map[string]unit{
	"m":   metre,
	"g":   gram,
	"s":   second,
	"A":   ampere,
	"Hz":  hertz,
	"N":   newton,
	"Pa":  pascal,
	"J":   joule,
	"W":   watt,
	"C":   coulomb,
	"V":   volt,
	"F":   farad,
	"Ω":   ohm,
	"S":   siemens,
	"Wb":  weber,
	"T":   tesla,
	"H":   henry,
	"Gy":  gray,
	"Sv":  gray,
	"L":   litre,
	"l":   litre,
	"min": minute,
	"h":   hour,
	"hr":  hour,
	"d":   day,
	"in":  inch,
	"ft":  foot,
	"yd":  yard,
	"mi":  mile,
	"lb":  pound,
	"mph": mileHour,
}

// names are matched lower-cased, singular.
var names = map[string]unit{
	"metre":   metre,
	"meter":   metre,
	"gram":    gram,
	"second":  second,
	"ampere":  ampere,
	"amp":     ampere,
	"hertz":   hertz,
	"newton":  newton,
	"pascal":  pascal,
	"joule":   joule,
	"watt":    watt,
	"coulomb": coulomb,
	"volt":    volt,
	"farad":   farad,
	"ohm":     ohm,
	"siemens": siemens,
	"weber":   weber,
	"tesla":   tesla,
	"henry":   henry,
	"gray":    gray,
	"sievert": gray,
	"litre":   litre,
	"liter":   litre,
	"minute":  minute,
	"hour":    hour,
	"day":     day,
	"inch":    inch,
	"foot":    foot,
	"feet":    foot,
	"yard":    yard,
	"mile":    mile,
	"pound":   pound,
}

var prefixSymbols = map[string]int{
	"Y": 24, "Z": 21, "E": 18, "P": 15, "T": 12, "G": 9, "M": 6, "k": 3,
	"h": 2, "da": 1, "d": -1, "c": -2, "m": -3, "μ": -6, "u": -6,
	"n": -9, "p": -12, "f": -15, "a": -18, "z": -21, "y": -24,
}

var prefixNames = []struct {
	name string
	exp  int
}{
	{"yotta", 24}, {"zetta", 21}, {"exa", 18}, {"peta", 15}, {"tera", 12},
	{"giga", 9}, {"mega", 6}, {"kilo", 3}, {"hecto", 2}, {"deca", 1},
	{"deka", 1}, {"deci", -1}, {"centi", -2}, {"milli", -3}, {"micro", -6},
	{"nano", -9}, {"pico", -12}, {"femto", -15}, {"atto", -18},
	{"zepto", -21}, {"yocto", -24},
}

// lookup resolves a word as a symbol, a prefixed symbol, a name or a
// prefixed name, in that order.
func lookup(word string) (unit, bool) {
	if u, ok := symbols[word]; ok {
		return u, true
	}
	// Two-byte prefixes are "da" and "μ".
	for _, size := range []int{2, 1} {
		if len(word) <= size {
			continue
		}
		exp, ok := prefixSymbols[word[:size]]
		if !ok {
			continue
		}
		if u, ok := symbols[word[size:]]; ok && u.prefixable {
			u.exp += exp
			return u, true
		}
	}

	lower := strings.ToLower(word)
	if u, ok := lookupName(lower); ok {
		return u, true
	}
	for _, p := range prefixNames {
		rest, ok := strings.CutPrefix(lower, p.name)
		if !ok || rest == "" {
			continue
		}
		if u, ok := lookupName(rest); ok && u.prefixable {
			u.exp += p.exp
			return u, true
		}
	}
	return unit{}, false
}

func lookupName(word string) (unit, bool) {
	candidates := []string{word}
	if base, ok := strings.CutSuffix(word, "ies"); ok {
		candidates = append(candidates, base+"y")
	}
	if base, ok := strings.CutSuffix(word, "es"); ok {
		candidates = append(candidates, base)
	}
	if base, ok := strings.CutSuffix(word, "s"); ok {
		candidates = append(candidates, base)
	}
	for _, c := range candidates {
		if u, ok := names[c]; ok {
			return u, true
		}
	}
	return unit{}, false
}
