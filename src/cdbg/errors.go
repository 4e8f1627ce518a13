package cdbg

import "errors"

// Sentinel errors returned by the cdbg package. These have no teacher
// precedent - the mutation primitives need their own failure vocabulary,
// so they follow the same errors.New + %w wrapping convention as
// src/hashing/errors.go.
var (
	// ErrUnknownDnode is returned when a DecisionNode lookup by hash fails.
	ErrUnknownDnode = errors.New("cdbg: no decision node at that hash")
	// ErrUnknownUnode is returned when a UnitigNode lookup fails.
	ErrUnknownUnode = errors.New("cdbg: no unitig node at that id or hash")
	// ErrInvariant is returned when a mutation primitive is asked to do
	// something that would violate a structural invariant of the graph
	// (e.g. clipping a unitig of exactly K bases, splitting at a position
	// outside the unitig, merging a unitig with itself, or loading into a
	// non-empty Store).
	ErrInvariant = errors.New("cdbg: invariant violation")
)
