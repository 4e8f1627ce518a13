// Package cdbg holds the compacted de Bruijn graph's own index: decision
// nodes, unitig nodes, and the mutation primitives that keep them
// consistent as reads stream in. Grounded on src/graph/node.go and
// src/graph/index.go's ContainmentIndex for the indexed-store shape, and
// on original_source's cdbg.hh for the primitive set and its invariants.
package cdbg

import "github.com/will-rowe/cdbgstream/src/hashing"

// NodeID identifies a UnitigNode. Unlike a DecisionNode - which is keyed by
// the hash of the single k-mer it represents - a unitig can be many k-mers
// long, so it needs an identity independent of any one k-mer hash.
type NodeID uint64

// NodeMeta classifies a UnitigNode by its connectivity.
type NodeMeta uint8

const (
	// TRIVIAL is a unitig of exactly one k-mer that touches no decision
	// node on either end.
	TRIVIAL NodeMeta = iota
	// ISLAND is a unitig with no decision node on either end, length > 1.
	// A unitig of exactly K bases is never ISLAND: it is TRIVIAL, or TIP or
	// FULL when it neighbours itself (see DESIGN.md on homopolymers).
	ISLAND
	// TIP has a decision node on exactly one end.
	TIP
	// FULL has a decision node on both ends.
	FULL
	// CIRCULAR loops back on itself: the unitig's two ends are the same
	// k-mer and it is longer than K, or it was closed by Circularize.
	CIRCULAR
)

func (m NodeMeta) String() string {
	switch m {
	case TRIVIAL:
		return "TRIVIAL"
	case ISLAND:
		return "ISLAND"
	case TIP:
		return "TIP"
	case FULL:
		return "FULL"
	case CIRCULAR:
		return "CIRCULAR"
	default:
		return "UNKNOWN"
	}
}

// DecisionNode is a single k-mer with branching in- or out-degree. It is
// keyed by its own hash: there is at most one DecisionNode per hash.
type DecisionNode struct {
	ID          hashing.Hash
	Sequence    []byte
	LeftDegree  int
	RightDegree int
	Count       uint64
}

// IsDecision reports the structural condition that makes a k-mer a
// decision node: branching in- or out-degree.
func (d *DecisionNode) IsDecision() bool {
	return d.LeftDegree > 1 || d.RightDegree > 1
}

// UnitigNode is a maximal run of non-branching k-mers, possibly bordered
// on either end by a DecisionNode.
type UnitigNode struct {
	ID       NodeID
	Sequence []byte

	// LeftEnd and RightEnd are the hashes of the unitig's own boundary
	// k-mers (not the neighboring decision node's hash).
	LeftEnd, RightEnd hashing.Hash

	// Tags are interior k-mer hashes sampled by the Segment Finder,
	// giving O(1) lookup into the middle of a long unitig without a full
	// Sequence scan.
	Tags map[hashing.Hash]struct{}

	Meta        NodeMeta
	ComponentID uint64
}

// Length returns the number of k-mers the unitig covers.
func (u *UnitigNode) Length(k int) int {
	if len(u.Sequence) < k {
		return 0
	}
	return len(u.Sequence) - k + 1
}

func (u *UnitigNode) hasTag(h hashing.Hash) bool {
	_, ok := u.Tags[h]
	return ok
}
