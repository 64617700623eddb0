package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("list", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}
	want := "list not found with id abc123"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("name", "item name is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("expected errors.Is(err, ErrValidation) to be true")
	}
	if err.Field != "name" {
		t.Errorf("Field = %q, want %q", err.Field, "name")
	}
}

func TestForbidden_NamesRequiredIdentity(t *testing.T) {
	err := Forbidden(`this item was claimed by "Maria"; only they can release it`)

	if !errors.Is(err, ErrForbidden) {
		t.Error("expected errors.Is(err, ErrForbidden) to be true")
	}
	if err.Message == "" {
		t.Error("expected a message naming the required identity")
	}
}

func TestProfileIncomplete(t *testing.T) {
	err := ProfileIncomplete()

	if !errors.Is(err, ErrProfileIncomplete) {
		t.Error("expected errors.Is(err, ErrProfileIncomplete) to be true")
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must keep the sentinel reachable
// and the *AppError extractable — the handler layer depends on both.
func TestWrappedErrorChain(t *testing.T) {
	inner := Forbidden("only the list owner can do that")
	wrapped := fmt.Errorf("renaming list: %w", inner)

	if !errors.Is(wrapped, ErrForbidden) {
		t.Error("expected sentinel to survive wrapping")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("expected errors.As to extract *AppError")
	}
	if appErr.Message != "only the list owner can do that" {
		t.Errorf("Message = %q", appErr.Message)
	}
}
