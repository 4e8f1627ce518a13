package dbgstore

import (
	"sync"

	"github.com/will-rowe/cdbgstream/src/hashing"
)

// ExactSet is a counting, exact dBG store: a map of observed hashes guarded
// by a mutex. Grounded on the sync.RWMutex-guarded lookup map pattern of
// src/graph/index.go's ContainmentIndex.
type ExactSet struct {
	mu     sync.Mutex
	counts map[hashing.Hash]uint32
}

// NewExactSet constructs an empty ExactSet.
func NewExactSet() *ExactSet {
	return &ExactSet{counts: make(map[hashing.Hash]uint32)}
}

// InsertAndTest implements Store.
func (s *ExactSet) InsertAndTest(h hashing.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.counts[h]
	s.counts[h]++
	return !seen
}

// Contains implements Store.
func (s *ExactSet) Contains(h hashing.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.counts[h]
	return ok
}

// Count implements Store.
func (s *ExactSet) Count(h hashing.Hash) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[h]
}

// NUnique implements Store.
func (s *ExactSet) NUnique() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.counts))
}

// EstimatedFP implements Store. ExactSet never has false positives.
func (s *ExactSet) EstimatedFP() float64 { return 0.0 }
