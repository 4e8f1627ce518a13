// Package dbgstore provides the de Bruijn graph k-mer membership oracle the
// core compactor treats as an external collaborator: a set (possibly
// counting) of hashing.Hash values with an insert-and-test primitive. The
// core never iterates a Store, only queries it.
package dbgstore

import "github.com/will-rowe/cdbgstream/src/hashing"

// Store is the membership oracle the Segment Finder and Local Traverser
// query. Implementations must be safe for concurrent use: many readers
// (queriers, the Local Traverser) alongside the single streaming writer.
type Store interface {
	// InsertAndTest inserts h and reports whether it was not previously
	// present.
	InsertAndTest(h hashing.Hash) bool

	// Contains reports whether h is present.
	Contains(h hashing.Hash) bool

	// Count returns the number of times h has been inserted. Exact
	// backends return a precise count; probabilistic backends may return
	// an approximation or a fixed sentinel such as 1.
	Count(h hashing.Hash) uint32

	// NUnique returns the number of distinct hashes observed.
	NUnique() uint64

	// EstimatedFP returns the estimated false-positive rate of the
	// backend. Exact backends always return 0.
	EstimatedFP() float64
}
