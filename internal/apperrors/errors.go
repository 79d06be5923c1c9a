package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the actor is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflicting resource state")

// ErrInvalidEntrySet is returned when a posting is empty, malformed, or does not net to zero per asset.
// Nothing is written when it is returned.
var ErrInvalidEntrySet = errors.New("invalid entry set")

// ErrInsufficientFunds is returned when a posting would take a user wallet below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrRetryable marks transient storage faults (lock timeouts, serialization failures, deadlocks).
// Callers may retry the whole operation a bounded number of times.
var ErrRetryable = errors.New("transient storage fault, retry")

// IsRetryable reports whether err is a transient fault worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a caller input problem (plain validation or a bad entry set).
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidEntrySet)
}
