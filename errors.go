package rubikal

import "errors"

// Sentinel errors for the rubikal package.
var (
	// Input errors
	ErrInvalidMove       = errors.New("rubikal: invalid move token")
	ErrSliceLookup       = errors.New("rubikal: unknown slice")
	ErrInvalidCoordinate = errors.New("rubikal: invalid cubelet coordinate")
	ErrInvalidConfig     = errors.New("rubikal: invalid configuration")

	// State errors
	ErrInvariantViolation = errors.New("rubikal: slice membership invariant violated")
	ErrTickBudget         = errors.New("rubikal: cube still rotating after tick budget")
)
