package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "type not found")
		if err.Error() != "[NOT_FOUND] type not found" {
			t.Errorf("expected [NOT_FOUND] type not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := New(CodeResolutionFailed, "call not resolved")
		err = AddContext(err, CtxSymbol, "add")
		err = AddContext(err, CtxPath, "A.java")
		expected := "[RESOLUTION_FAILED] call not resolved {path=A.java symbol=add}"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", Wrap(errors.New("boom"), CodeWorkerFailed, "worker stopped"))
		if !IsCode(err, CodeWorkerFailed) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
	})

	t.Run("FromPanic", func(t *testing.T) {
		de := FromPanic(CodeResolutionFailed, "index out of range")
		if de.Code != CodeResolutionFailed {
			t.Fatalf("unexpected code %s", de.Code)
		}
		cause := errors.New("nil map")
		de = FromPanic(CodeResolutionFailed, cause)
		if !errors.Is(de, cause) {
			t.Fatal("expected panic error to be unwrappable")
		}
	})

	t.Run("LogAttrs", func(t *testing.T) {
		de := &DomainError{Code: CodeParseFailed, Message: "bad file"}
		de.WithContext(CtxPath, "B.java")
		attrs := de.LogAttrs()
		if len(attrs) != 4 || attrs[0] != "code" || attrs[2] != CtxPath {
			t.Fatalf("unexpected attrs %v", attrs)
		}
	})
}
