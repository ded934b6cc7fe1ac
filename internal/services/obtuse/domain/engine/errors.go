package engine

import "errors"

var (
	// ErrInvalidBounds indicates the maximum value order is below the minimum.
	ErrInvalidBounds = errors.New("max value order must not be below min value order")

	// ErrNoDecomposition indicates the target has no positive axis or no unit
	// can seed the numerator.
	ErrNoDecomposition = errors.New("no decomposition possible")

	// ErrExponentOutOfRange indicates a unit exponent the composer cannot name.
	ErrExponentOutOfRange = errors.New("unit exponent out of range")

	// ErrMantissaOutOfRange indicates the shifted mantissa does not fit a
	// float64, which happens only when the value order is unbounded.
	ErrMantissaOutOfRange = errors.New("mantissa out of range")

	// ErrToleranceUnsatisfiable indicates the prefix adjuster ran out of attempts.
	ErrToleranceUnsatisfiable = errors.New("tolerance unsatisfiable")

	// ErrInvalidValue indicates a non-positive or non-finite magnitude.
	ErrInvalidValue = errors.New("value must be a positive finite number")

	// ErrInvalidLoops indicates a loop count below one.
	ErrInvalidLoops = errors.New("loops must be at least 1")

	// ErrInvalidSpread indicates a spread outside [0, 1).
	ErrInvalidSpread = errors.New("spread must be in [0, 1)")

	// ErrInvalidMaxPrefixes indicates a negative prefix budget.
	ErrInvalidMaxPrefixes = errors.New("max prefixes must be non-negative")
)
