package cdbg

import (
	"sync"

	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
)

// Store is the cDBG's own index: the decision nodes, the unitig nodes, and
// the two lookup maps that let any k-mer hash be resolved to the unitig
// node that currently owns it. Grounded on src/graph/index.go's
// RWMutex-guarded map-of-maps, narrowed to the three maps the spec names.
//
// unodes is the single owner of every UnitigNode; unitigEnds and
// unitigTags never store pointers, only the NodeID the owning map holds -
// this keeps "who owns this k-mer" a pure lookup with no risk of a stale
// pointer surviving a merge or split that replaces the node at the ID.
type Store struct {
	mu sync.RWMutex

	k          int
	tagDensity int

	dnodes     map[hashing.Hash]*DecisionNode
	unodes     map[NodeID]*UnitigNode
	unitigEnds map[hashing.Hash]NodeID
	unitigTags map[hashing.Hash]NodeID

	nextNodeID      NodeID
	componentsValid bool

	sink HistorySink

	// newHasher and dbg let the Mutator re-derive the hash of any k-mer it
	// already holds the bytes for (endpoint connectivity checks in
	// RecomputeMeta, tag reassignment on split) without the cDBG needing
	// to remember a reverse hash-to-sequence map of its own.
	newHasher func() hashing.Hasher
	dbg       dbgstore.Store
}

// NewStore constructs an empty cDBG index for k-mers of length k. tagDensity
// is the approximate spacing, in k-mers, between sampled interior tags.
// newHasher must construct a fresh Hasher of the same kind and K used by the
// Segment Finder feeding this Store; dbg is the dBG Store that same Segment
// Finder inserts into.
func NewStore(k, tagDensity int, newHasher func() hashing.Hasher, dbg dbgstore.Store) *Store {
	return &Store{
		k:          k,
		tagDensity: tagDensity,
		dnodes:     make(map[hashing.Hash]*DecisionNode),
		unodes:     make(map[NodeID]*UnitigNode),
		unitigEnds: make(map[hashing.Hash]NodeID),
		unitigTags: make(map[hashing.Hash]NodeID),
		sink:       nopSink{},
		newHasher:  newHasher,
		dbg:        dbg,
	}
}

// SetHistorySink installs the sink every mutation primitive reports to.
// Passing nil restores the no-op sink.
func (s *Store) SetHistorySink(sink HistorySink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sink == nil {
		sink = nopSink{}
	}
	s.sink = sink
}

// K returns the k-mer length this store was built with.
func (s *Store) K() int { return s.k }

func (s *Store) allocNodeID() NodeID {
	s.nextNodeID++
	return s.nextNodeID
}

// NumDnodes returns the current number of decision nodes.
func (s *Store) NumDnodes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dnodes)
}

// NumUnodes returns the current number of unitig nodes.
func (s *Store) NumUnodes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.unodes)
}

// Begin acquires the Store's single exclusive writer lock and returns a
// Mutator bound to it, per the concurrency model's rule that one read's
// Phase 1 + Phase 2 + Phase 3 run under a single critical section. The
// caller must call Unlock exactly once, typically via defer.
func (s *Store) Begin() *Mutator {
	s.mu.Lock()
	return &Mutator{s: s}
}

// Unlock releases the Store's writer lock acquired by Begin.
func (m *Mutator) Unlock() {
	m.s.mu.Unlock()
}
