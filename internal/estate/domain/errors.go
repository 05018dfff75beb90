package domain

import "errors"

// Error taxonomy of the lifecycle engine. Operations wrap one of these with
// context, callers match with errors.Is.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrAuthorization marks a role or actor not permitted for the operation.
	ErrAuthorization = errors.New("authorization error")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPrecondition marks an existing entity missing a required sub-state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrConflict marks a transition rejected by the current state.
	ErrConflict = errors.New("conflict")
	// ErrTransient marks store contention or timeout. Safe to retry.
	ErrTransient = errors.New("transient store error")
)

// IsRetryable reports whether the caller may retry the failed operation as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
