package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDependency indicates that an external collaborator (group, expense or
// settlement provider) failed or returned inconsistent data.
var ErrDependency = errors.New("dependency error")

// ErrPersistence indicates that a write to the settlement store failed.
var ErrPersistence = errors.New("persistence error")

// ErrInvalidTransition indicates a settlement status change the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal is used for unexpected failures that carry no domain meaning.
var ErrInternal = errors.New("internal error")

// AppError attaches an HTTP-ish status code and a human readable message to an error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy sentinel err belongs to, or nil when it matches none.
func Kind(err error) error {
	for _, sentinel := range []error{ErrValidation, ErrDependency, ErrPersistence, ErrInvalidTransition, ErrNotFound, ErrDuplicate, ErrForbidden} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
