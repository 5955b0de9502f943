package catalog

import "errors"

// ErrNotFound is returned when a product id is unknown so HTTP handlers can respond with 404.
var ErrNotFound = errors.New("catalog item not found")

type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation reports whether err is a rejected product rather than a storage failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
