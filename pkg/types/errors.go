package types

import "errors"

// Standard errors returned by the repository and store layers. Validation
// errors are detected before any store access and are never wrapped store
// faults; callers can match them with errors.Is.
var (
	// ErrNameRequired is returned when an entity is written with a blank name.
	ErrNameRequired = errors.New("name must not be blank")

	// ErrInvalidID is returned when an operation requires a positive id.
	ErrInvalidID = errors.New("id must be positive")

	// ErrNotFound is returned when no entity exists for the given id.
	ErrNotFound = errors.New("not found")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)
