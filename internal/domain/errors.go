package domain

import "errors"

var (
	// ErrUnauthenticated indicates no user could be resolved for the caller.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the entity is absent or owned by another user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a lifecycle step out of order.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState indicates the session is not in a state that allows the operation.
	ErrInvalidState = errors.New("invalid session state")

	// ErrConflict indicates a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")
)
