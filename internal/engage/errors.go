package engage

import "errors"

// Sentinel errors added by the engagement layer on top of the store's
// ErrNotFound / ErrConflict.
var (
	// ErrInvalidOperation means the mutation makes no sense for the
	// actor, e.g. following yourself.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrValidation means the input was malformed or missing.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden means the actor has no rights over the target entity.
	ErrForbidden = errors.New("forbidden")
)
