// Package errors provides structured error handling with localized messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidOptions  Code = "INVALID_OPTIONS"
	CodeInvalidValue    Code = "INVALID_VALUE"
	CodeInvalidCatalog  Code = "INVALID_CATALOG"
	CodeInvalidFilter   Code = "INVALID_FILTER"
	CodeInvalidPage     Code = "INVALID_PAGE_TOKEN"
	CodeNoQuantity      Code = "NO_QUANTITY"
	CodeUnknownUnit     Code = "UNKNOWN_UNIT"
	CodeDimensionless   Code = "DIMENSIONLESS"
	CodeNoDecomposition Code = "NO_DECOMPOSITION"

	// Outcome errors; another seed or looser options may succeed.
	CodeExponentOutOfRange     Code = "EXPONENT_OUT_OF_RANGE"
	CodeMantissaOutOfRange     Code = "MANTISSA_OUT_OF_RANGE"
	CodeToleranceUnsatisfiable Code = "TOLERANCE_UNSATISFIABLE"
	CodeReplyTooLong           Code = "REPLY_TOO_LONG"

	// Storage errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeHistoryDisabled Code = "HISTORY_DISABLED"
	CodeStorageFailure  Code = "STORAGE_FAILURE"
)

// Exit codes used by command-line entry points.
const (
	ExitInternal = 1
	ExitUsage    = 2
	ExitOutcome  = 3
	ExitNotFound = 4
)

// ExitCode maps domain codes to process exit codes.
func (c Code) ExitCode() int {
	switch c {
	case CodeInvalidOptions,
		CodeInvalidValue,
		CodeInvalidCatalog,
		CodeInvalidFilter,
		CodeInvalidPage,
		CodeNoQuantity,
		CodeUnknownUnit,
		CodeDimensionless,
		CodeNoDecomposition:
		return ExitUsage

	case CodeExponentOutOfRange,
		CodeMantissaOutOfRange,
		CodeToleranceUnsatisfiable,
		CodeReplyTooLong:
		return ExitOutcome

	case CodeNotFound,
		CodeHistoryDisabled:
		return ExitNotFound

	default:
		return ExitInternal
	}
}
