package order

import "errors"

var (
	// ErrEmptyCart is returned when checkout is attempted without any lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned for unknown order ids.
	ErrNotFound = errors.New("order not found")
)

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation helps callers distinguish between business and infrastructure failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
