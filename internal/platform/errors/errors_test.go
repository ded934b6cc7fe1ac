package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeToleranceUnsatisfiable, "adjust prefixes", stderrors.New("boom"))
	if !stderrors.Is(err, New(CodeToleranceUnsatisfiable, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestCodeOfFindsWrappedError(t *testing.T) {
	inner := New(CodeUnknownUnit, "unknown unit")
	wrapped := fmt.Errorf("parse: %w", inner)

	if got := CodeOf(wrapped); got != CodeUnknownUnit {
		t.Fatalf("CodeOf = %q, want %q", got, CodeUnknownUnit)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStorageFailure, "record call", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
}

func TestExitCode(t *testing.T) {
	tcs := []struct {
		code Code
		want int
	}{
		{code: CodeInvalidOptions, want: ExitUsage},
		{code: CodeNoQuantity, want: ExitUsage},
		{code: CodeToleranceUnsatisfiable, want: ExitOutcome},
		{code: CodeMantissaOutOfRange, want: ExitOutcome},
		{code: CodeNotFound, want: ExitNotFound},
		{code: CodeStorageFailure, want: ExitInternal},
		{code: Code("SOMETHING_NEW"), want: ExitInternal},
	}
	for _, tc := range tcs {
		if got := tc.code.ExitCode(); got != tc.want {
			t.Fatalf("%s.ExitCode() = %d, want %d", tc.code, got, tc.want)
		}
	}
}
