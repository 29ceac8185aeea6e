package store

import "errors"

var (
	// ErrNotFound means the id has no backing record.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller does not own the record; the record
	// is left untouched.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError rejects malformed input before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

func validationErr(err error) error {
	return ValidationError{Reason: err.Error()}
}
