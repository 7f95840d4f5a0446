package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller's role does not allow the requested action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the resource changed underneath the caller (stale version).
var ErrConflict = errors.New("conflict")

// ErrInternal is returned when the failure is not the caller's fault.
var ErrInternal = errors.New("internal error")

// ErrUnbalancedEntry indicates that debits and credits differ beyond tolerance.
var ErrUnbalancedEntry = errors.New("journal entry is not balanced")

// ErrInsufficientLines is a validation error: an entry needs at least two lines.
var ErrInsufficientLines = fmt.Errorf("%w: journal entry must have at least two lines", ErrValidation)

// ErrInvalidStateTransition is matched by every InvalidStateTransitionError.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// InvalidStateTransitionError names the status an entry was in and the action that was refused.
type InvalidStateTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidStateTransitionError) Error() string {
	current := e.Current
	if current == "" {
		current = "none"
	}
	return fmt.Sprintf("%s: cannot %s a journal entry in status %s", ErrInvalidStateTransition, e.Attempted, current)
}

// Is lets errors.Is(err, ErrInvalidStateTransition) match.
func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// NewInvalidStateTransition builds an InvalidStateTransitionError.
func NewInvalidStateTransition(current, attempted string) error {
	return &InvalidStateTransitionError{Current: current, Attempted: attempted}
}

// AppError carries an HTTP-ish status code and a message alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewConflictError returns an AppError that matches ErrConflict.
func NewConflictError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrConflict}
}

// IsClientError reports whether err was caused by the caller's request rather than a server fault.
func IsClientError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrValidation, ErrDuplicate, ErrForbidden, ErrConflict, ErrUnbalancedEntry, ErrInvalidStateTransition} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
