package service

import "errors"

// Error taxonomy surfaced to callers. Handlers map these to HTTP
// status codes; nothing is retried internally.
var (
	// ErrNotFound: a referenced trip, supply, or record is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: malformed input or an unmet precondition,
	// including stock that would go negative.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState: the operation is illegal for the trip's current
	// state or type.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict: uniqueness violation or a concurrent writer won a
	// guarded update.
	ErrConflict = errors.New("conflict")
)
