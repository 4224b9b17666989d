package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAlreadyComplete is returned when a win or loss is applied to a
	// ladder that has already reached its goal. State is left untouched.
	ErrAlreadyComplete = errors.New("ladder already complete")

	// ErrNotConverging is returned when the projection produces no steps or
	// hits the step ceiling without reaching the goal. Surfaced separately
	// from validation errors so the user knows the inputs parsed but did
	// not converge.
	ErrNotConverging = errors.New("calculation error: projection never reaches the goal")
)

// ValidationError reports rejected user input. Never fatal: the caller keeps
// the entered values for correction.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a user-input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
