package contract

import "errors"

var (
	// ErrPrivacyViolation marks a Deny-class memory access. Fatal to the
	// request, never retried; the user only ever sees a generic refusal.
	ErrPrivacyViolation = errors.New("privacy violation")

	// ErrRoleMismatch marks a claimed role that conflicts with the role the
	// session was pinned to. No state is mutated.
	ErrRoleMismatch = errors.New("session role mismatch")

	// ErrNoRoute means the classifier could not pick a handler target.
	ErrNoRoute = errors.New("no route for request")

	// ErrStoreUnavailable marks a transient store failure, retryable.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrValidation = errors.New("validation failed")
)
