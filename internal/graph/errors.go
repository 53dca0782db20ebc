package graph

import "errors"

// Sentinel errors returned by Graph mutators and lookups. Callers match them
// with errors.Is; returned errors wrap them with the offending ids.
var (
	// ErrNotFound indicates an operation referenced an unknown station id.
	ErrNotFound = errors.New("graph: station not found")

	// ErrInvalidWeight indicates a negative or non-finite connection weight.
	ErrInvalidWeight = errors.New("graph: invalid connection weight")

	// ErrSelfLoop indicates a connection from a station to itself.
	ErrSelfLoop = errors.New("graph: self-loop not allowed")

	// ErrCapacityExceeded indicates a fixed-capacity graph is full.
	ErrCapacityExceeded = errors.New("graph: station capacity exceeded")

	// ErrInvalidPrice indicates a negative or non-finite fuel price.
	ErrInvalidPrice = errors.New("graph: invalid fuel price")
)
