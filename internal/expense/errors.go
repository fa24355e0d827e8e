package expense

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("expense not found")
	ErrEditLimitExceeded = errors.New("expense is locked: amend limit reached")
	ErrAmendConflict     = errors.New("expense was amended by another session")
)

// ValidationError reports user input that was rejected before reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
