package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
)

// exponentWords are appended to a unit name; the plural "s" of squared and
// above is part of the word. Past eight the bot stops taking it seriously.
var exponentWords = map[int]string{
	1:  "",
	2:  "s-squared",
	3:  "s-cubed",
	4:  "s-quarted",
	5:  "s-quinted",
	6:  "s-sexted",
	7:  "s-hepted",
	8:  "s-octed",
	9:  "nonned????",
	10: "dude",
	11: "stop",
	12: "the",
	13: "words",
	14: " don't",
	15: "even",
	16: "go",
	17: "this",
	18: "high",
}

// MaxExponent is the largest exponent the composer can name.
const MaxExponent = 18

var pluralFixes = strings.NewReplacer(
	"hertzs", "hertz",
	"henrys", "henries",
)

func exponentWord(exp int) (string, error) {
	word, ok := exponentWords[exp]
	if !ok {
		return "", fmt.Errorf("%w: %d (supported 1..%d)", ErrExponentOutOfRange, exp, MaxExponent)
	}
	return word, nil
}

// checkExponents fails fast, before any prefix is drawn, on slots the
// composer could not render.
func checkExponents(slots []Slot) error {
	for _, slot := range slots {
		if _, err := exponentWord(slot.Exponent); err != nil {
			return fmt.Errorf("%s: %w", slot.Unit, err)
		}
	}
	return nil
}

// composeUnits renders the unit expression, e.g.
// "kilonewton-metres per microsecond".
func composeUnits(slots []Slot, cat catalog.Catalog) (string, error) {
	var num, den []string
	for _, slot := range slots {
		prefix, err := cat.PrefixName(slot.Prefix)
		if err != nil {
			return "", err
		}
		word, err := exponentWord(slot.Exponent)
		if err != nil {
			return "", fmt.Errorf("%s: %w", slot.Unit, err)
		}
		term := prefix + slot.Unit + word
		if slot.Side == SideNumerator {
			num = append(num, term)
		} else {
			den = append(den, term)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(num, "-"))
	b.WriteString("s")
	if len(den) > 0 {
		b.WriteString(" per ")
		b.WriteString(strings.Join(den, "-"))
	}
	return b.String(), nil
}

// FormatMantissa rounds to four significant figures in positional notation,
// trimming trailing zeros. The rounded digits are placed directly, so values
// near the float64 limits never round to infinity.
func FormatMantissa(v float64) string {
	mant, expText, _ := strings.Cut(strconv.FormatFloat(v, 'e', 3, 64), "e")
	exp, err := strconv.Atoi(expText)
	if err != nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	negative := strings.HasPrefix(mant, "-")
	digits := strings.TrimRight(strings.Replace(strings.TrimPrefix(mant, "-"), ".", "", 1), "0")
	if digits == "" {
		return "0"
	}

	var s string
	switch point := exp + 1; {
	case point <= 0:
		s = "0." + strings.Repeat("0", -point) + digits
	case point >= len(digits):
		s = digits + strings.Repeat("0", point-len(digits))
	default:
		s = digits[:point] + "." + digits[point:]
	}
	if negative {
		s = "-" + s
	}
	return s
}

func composeQuantity(mantissa float64, units string) string {
	return pluralFixes.Replace(FormatMantissa(mantissa) + " " + units)
}
