// Package traverse computes the local neighborhood of a k-mer: the subset of
// its four possible left/right extensions that are actually present in the
// dBG store, and the resulting in/out degree. These are pure functions of
// (Hasher state, dBG store) - grounded on the neighbor-filtering idea in
// original_source's assembly traversal (boink's AssemblerMixin), rebuilt
// here from the spec's own description since the core has no dependency on
// boink itself.
package traverse

import (
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
)

// Neighborhood holds the filtered left/right extension hashes of a k-mer.
type Neighborhood struct {
	Left  []hashing.Hash
	Right []hashing.Hash
}

// InDegree is the number of k-mers that can precede this one in the dBG.
func (n Neighborhood) InDegree() int { return len(n.Left) }

// OutDegree is the number of k-mers that can follow this one in the dBG.
func (n Neighborhood) OutDegree() int { return len(n.Right) }

// IsDecision reports whether this k-mer has branching in- or out-degree.
func (n Neighborhood) IsDecision() bool {
	return n.InDegree() > 1 || n.OutDegree() > 1
}

// FilterLeft enumerates the four candidate left extensions of the k-mer the
// Hasher currently holds and keeps the ones the store reports present.
func FilterLeft(h hashing.Hasher, store dbgstore.Store) ([]hashing.Hash, error) {
	candidates, err := h.EnumerateLeft()
	if err != nil {
		return nil, err
	}
	return filterPresent(candidates, store), nil
}

// FilterRight is the symmetric operation for right extensions.
func FilterRight(h hashing.Hasher, store dbgstore.Store) ([]hashing.Hash, error) {
	candidates, err := h.EnumerateRight()
	if err != nil {
		return nil, err
	}
	return filterPresent(candidates, store), nil
}

func filterPresent(candidates [4]hashing.Hash, store dbgstore.Store) []hashing.Hash {
	var present []hashing.Hash
	for _, c := range candidates {
		if store.Contains(c) {
			present = append(present, c)
		}
	}
	return present
}

// Local computes the full Neighborhood (both sides) of the k-mer the Hasher
// currently holds.
func Local(h hashing.Hasher, store dbgstore.Store) (Neighborhood, error) {
	left, err := FilterLeft(h, store)
	if err != nil {
		return Neighborhood{}, err
	}
	right, err := FilterRight(h, store)
	if err != nil {
		return Neighborhood{}, err
	}
	return Neighborhood{Left: left, Right: right}, nil
}
