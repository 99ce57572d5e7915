package mirror

import "errors"

// Sentinel errors for the three local failure classes. Transport and
// server failures pass through from the remote store unchanged.
var (
	// ErrValidation indicates a required field was empty. Detected
	// locally, before any network call.
	ErrValidation = errors.New("validation")

	// ErrNotFound indicates an id that is absent from the local mirror.
	ErrNotFound = errors.New("not found")

	// ErrInFlight indicates a request of the same operation class is
	// already outstanding.
	ErrInFlight = errors.New("request already in flight")
)
