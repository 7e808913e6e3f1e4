package orders

import (
	"errors"
	"fmt"

	"mirmaia/pos/internal/inventory"
)

// ValidationError rejects a malformed request before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ShortageError is the inventory rejection surfaced to order callers.
type ShortageError = inventory.ShortageError

// ErrNotFound is returned by Get for an unknown order.
var ErrNotFound = errors.New("order not found")

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsShortage reports whether err carries a *ShortageError.
func IsShortage(err error) bool {
	var s *ShortageError
	return errors.As(err, &s)
}
