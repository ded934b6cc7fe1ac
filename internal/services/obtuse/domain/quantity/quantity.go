// Package quantity finds a physical quantity in free text and converts it to
// SI base units.
//
// Text is NFKC-normalised before scanning so superscript powers ("m²"), the
// micro sign and the ohm sign read like their plain forms. The reported
// Surface is always a slice of the original, unnormalised text.
package quantity

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoQuantity indicates the text holds no number followed by a unit.
	ErrNoQuantity = errors.New("no quantity found")
	// ErrUnknownUnit indicates a number was followed by an unrecognised word.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrDimensionless indicates the units cancel out.
	ErrDimensionless = errors.New("quantity is dimensionless")
)

// Result is a quantity found in text.
type Result struct {
	// Value is the magnitude in SI base units.
	Value float64
	Dims  catalog.Dimensions
	// Surface is the matched text, number and units, as written.
	Surface string
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?(?:[eE][-+]?\d+)?`)

// Parse returns the first quantity in text. When numbers are present but
// none is followed by a usable unit, the first failure is returned.
func Parse(text string) (Result, error) {
	normalized, origin := normalize(text)

	var firstErr error
	for _, loc := range numberPattern.FindAllStringIndex(normalized, -1) {
		start, end := loc[0], loc[1]
		for end > start && normalized[end-1] == ',' {
			end--
		}
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(normalized[:start])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
				continue
			}
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(normalized[start:end], ",", ""), 64)
		if err != nil {
			continue
		}

		p := &parser{s: normalized, pos: end}
		p.skipSpaces()
		if !p.atLetter() {
			continue
		}
		u, err := p.expression()
		if err == nil && u.dims.IsZero() {
			err = fmt.Errorf("%w: %q", ErrDimensionless, text[origin[start]:origin[p.pos]])
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return Result{
			Value:   value * u.scale * math.Pow10(u.exp),
			Dims:    u.dims,
			Surface: text[origin[start]:origin[p.pos]],
		}, nil
	}
	if firstErr != nil {
		return Result{}, firstErr
	}
	return Result{}, ErrNoQuantity
}

// normalize applies NFKC rune by rune and maps every normalised byte back to
// the offset of the original rune it came from. The extra final entry maps
// the end of the normalised text to len(text).
func normalize(text string) (string, []int) {
	var b strings.Builder
	origin := make([]int, 0, len(text)+1)
	for offset, r := range text {
		n := norm.NFKC.String(string(r))
		b.WriteString(n)
		for range len(n) {
			origin = append(origin, offset)
		}
	}
	origin = append(origin, len(text))
	return b.String(), origin
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek() (rune, int) {
	if p.pos >= len(p.s) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(p.s[p.pos:])
}

func (p *parser) skipSpaces() bool {
	start := p.pos
	for {
		r, size := p.peek()
		if size == 0 || !unicode.IsSpace(r) {
			return p.pos > start
		}
		p.pos += size
	}
}

func (p *parser) atLetter() bool {
	r, size := p.peek()
	return size > 0 && unicode.IsLetter(r)
}

func (p *parser) word() string {
	start := p.pos
	for p.atLetter() {
		_, size := p.peek()
		p.pos += size
	}
	return p.s[start:p.pos]
}

// expression reads products, quotients and "per" clauses. It stops before
// the first separator whose following term does not resolve, leaving pos at
// the end of the last unit consumed.
func (p *parser) expression() (unit, error) {
	total, err := p.term()
	if err != nil {
		return unit{}, err
	}
	for {
		save := p.pos
		spaced := p.skipSpaces()

		inverse := false
		r, size := p.peek()
		switch {
		case r == '/':
			p.pos += size
			inverse = true
		case r == '·' || r == '⋅' || r == '*':
			p.pos += size
		case r == '-' && !spaced:
			p.pos += size
		case spaced && p.atLetter():
			mark := p.pos
			if strings.EqualFold(p.word(), "per") && p.skipSpaces() {
				inverse = true
			} else {
				p.pos = mark
			}
		default:
			p.pos = save
			return total, nil
		}

		p.skipSpaces()
		next, err := p.term()
		if err != nil {
			p.pos = save
			return total, nil
		}
		if inverse {
			next = next.pow(-1)
		}
		total = total.mul(next)
	}
}

// term reads one unit word and an optional power.
func (p *parser) term() (unit, error) {
	w := p.word()
	if w == "" {
		return unit{}, fmt.Errorf("%w: expected a unit", ErrUnknownUnit)
	}
	u, ok := lookup(w)
	if !ok {
		return unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, w)
	}
	if power, ok := p.power(); ok {
		u = u.pow(power)
	}
	return u, nil
}

// power reads "^n", "^-n" or digits attached to the unit, as superscripts
// become after normalisation. A superscript minus normalises to U+2212.
func (p *parser) power() (int, bool) {
	save := p.pos
	r, size := p.peek()
	caret := r == '^'
	if caret {
		p.pos += size
		r, size = p.peek()
	}
	sign := 1
	if (r == '-' && caret) || r == '−' {
		sign = -1
		p.pos += size
	}
	start := p.pos
	for {
		r, size := p.peek()
		if size == 0 || r < '0' || r > '9' {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		p.pos = save
		return 0, false
	}
	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		p.pos = save
		return 0, false
	}
	return sign * n, true
}

func (u unit) mul(o unit) unit {
	return unit{
		scale: u.scale * o.scale,
		exp:   u.exp + o.exp,
		dims:  u.dims.Add(o.dims),
	}
}

func (u unit) pow(n int) unit {
	return unit{
		scale: math.Pow(u.scale, float64(n)),
		exp:   u.exp * n,
		dims:  u.dims.Scale(n),
	}
}
