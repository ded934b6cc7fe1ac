package app

import (
	stderrors "errors"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/platform/pagination"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/engine"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/quantity"
)

var isErr = stderrors.Is

var catalogErrors = []error{
	catalog.ErrNoUnits,
	catalog.ErrNoZeroPrefix,
	catalog.ErrDuplicatePrefix,
	catalog.ErrDuplicateUnit,
	catalog.ErrInvalidUnit,
	catalog.ErrUnknownAxis,
	catalog.ErrUnknownPrefix,
}

// mapError converts domain sentinels into coded platform errors. Errors that
// already carry a code, and context errors, pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	reason := map[string]string{"Reason": err.Error()}

	switch {
	case isErr(err, engine.ErrInvalidValue):
		return apperrors.Wrap(apperrors.CodeInvalidValue, err.Error(), err)
	case isErr(err, engine.ErrInvalidLoops),
		isErr(err, engine.ErrInvalidBounds),
		isErr(err, engine.ErrInvalidSpread),
		isErr(err, engine.ErrInvalidMaxPrefixes):
		return apperrors.WrapWithMetadata(apperrors.CodeInvalidOptions, err.Error(), reason, err)
	case isErr(err, engine.ErrNoDecomposition):
		return apperrors.WrapWithMetadata(apperrors.CodeNoDecomposition, err.Error(), nil, err)
	case isErr(err, engine.ErrExponentOutOfRange):
		return apperrors.Wrap(apperrors.CodeExponentOutOfRange, err.Error(), err)
	case isErr(err, engine.ErrMantissaOutOfRange):
		return apperrors.Wrap(apperrors.CodeMantissaOutOfRange, err.Error(), err)
	case isErr(err, engine.ErrToleranceUnsatisfiable):
		return apperrors.Wrap(apperrors.CodeToleranceUnsatisfiable, err.Error(), err)
	case isErr(err, quantity.ErrNoQuantity):
		return apperrors.Wrap(apperrors.CodeNoQuantity, err.Error(), err)
	case isErr(err, quantity.ErrUnknownUnit):
		return apperrors.Wrap(apperrors.CodeUnknownUnit, err.Error(), err)
	case isErr(err, quantity.ErrDimensionless):
		return apperrors.Wrap(apperrors.CodeDimensionless, err.Error(), err)
	case isErr(err, ErrReplyTooLong):
		return apperrors.Wrap(apperrors.CodeReplyTooLong, err.Error(), err)
	case isErr(err, pagination.ErrInvalidPageToken):
		return apperrors.Wrap(apperrors.CodeInvalidPage, err.Error(), err)
	}
	for _, target := range catalogErrors {
		if isErr(err, target) {
			return apperrors.WrapWithMetadata(apperrors.CodeInvalidCatalog, err.Error(), reason, err)
		}
	}
	return err
}
