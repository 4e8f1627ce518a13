package cdbg

import "github.com/will-rowe/cdbgstream/src/hashing"

// Unodes returns every live unitig node. Used by the serialize and
// reporting packages to walk the whole graph.
func (s *Store) Unodes() []*UnitigNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*UnitigNode, 0, len(s.unodes))
	for _, u := range s.unodes {
		out = append(out, u)
	}
	return out
}

// Dnodes returns every live decision node.
func (s *Store) Dnodes() []*DecisionNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*DecisionNode, 0, len(s.dnodes))
	for _, d := range s.dnodes {
		out = append(out, d)
	}
	return out
}

// QueryDnode looks up a decision node by its k-mer hash.
func (s *Store) QueryDnode(h hashing.Hash) (*DecisionNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dnodes[h]
	return d, ok
}

// QueryUnodeEnd resolves a k-mer hash known to be a unitig boundary to the
// unitig it borders.
func (s *Store) QueryUnodeEnd(h hashing.Hash) (*UnitigNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.unitigEnds[h]
	if !ok {
		return nil, false
	}
	return s.unodes[id], true
}

// QueryUnodeTag resolves an interior tag hash to its owning unitig. Because
// tags are a sparse sample, a miss here is not evidence the hash is absent
// from every unitig's sequence.
func (s *Store) QueryUnodeTag(h hashing.Hash) (*UnitigNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.unitigTags[h]
	if !ok {
		return nil, false
	}
	return s.unodes[id], true
}

// QueryUnodeID looks up a unitig node by its NodeID.
func (s *Store) QueryUnodeID(id NodeID) (*UnitigNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.unodes[id]
	return u, ok
}

// FindDnodeNeighbors returns the unitigs whose boundary k-mer is one of the
// decision node's immediate dBG neighbors, found by re-seeding a Hasher on
// the decision k-mer and filtering through unitig_ends.
func (s *Store) FindDnodeNeighbors(h hashing.Hash) ([]*UnitigNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dnodes[h]
	if !ok {
		return nil, ErrUnknownDnode
	}
	hsr := s.newHasher()
	if _, err := hsr.Seed(d.Sequence); err != nil {
		return nil, err
	}
	left, err := hsr.EnumerateLeft()
	if err != nil {
		return nil, err
	}
	right, err := hsr.EnumerateRight()
	if err != nil {
		return nil, err
	}
	var out []*UnitigNode
	seen := map[NodeID]struct{}{}
	for _, cand := range left {
		if id, ok := s.unitigEnds[cand]; ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, s.unodes[id])
			}
		}
	}
	for _, cand := range right {
		if id, ok := s.unitigEnds[cand]; ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, s.unodes[id])
			}
		}
	}
	return out, nil
}

// FindUnodeNeighbors returns the decision nodes bordering a unitig's two
// ends, if those ends happen to coincide with a decision k-mer's immediate
// dBG neighbors.
func (s *Store) FindUnodeNeighbors(id NodeID) ([]*DecisionNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.unodes[id]
	if !ok {
		return nil, ErrUnknownUnode
	}
	var out []*DecisionNode
	for _, end := range []hashing.Hash{u.LeftEnd, u.RightEnd} {
		hsr := s.newHasher()
		seq := u.Sequence[:s.k]
		if end == u.RightEnd {
			seq = u.Sequence[len(u.Sequence)-s.k:]
		}
		if _, err := hsr.Seed(seq); err != nil {
			return nil, err
		}
		left, err := hsr.EnumerateLeft()
		if err != nil {
			return nil, err
		}
		right, err := hsr.EnumerateRight()
		if err != nil {
			return nil, err
		}
		for _, cand := range append(left[:], right[:]...) {
			if d, ok := s.dnodes[cand]; ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

// TraverseBreadthFirst walks the cDBG starting from a unitig node, crossing
// decision nodes where exactly one unitig continues on the far side, and
// calls visit once per unitig reached (including start). Traversal stops
// when visit returns false.
func (s *Store) TraverseBreadthFirst(start NodeID, visit func(*UnitigNode) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.unodes[start]; !ok {
		return ErrUnknownUnode
	}
	seen := map[NodeID]struct{}{start: {}}
	queue := []NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		u := s.unodes[id]
		if !visit(u) {
			return nil
		}
		for _, end := range []hashing.Hash{u.LeftEnd, u.RightEnd} {
			for _, next := range s.adjacentUnodesLocked(end, id) {
				if _, ok := seen[next]; ok {
					continue
				}
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// adjacentUnodesLocked finds unitigs reachable across the decision node (if
// any) bordering end, excluding self. Caller must already hold s.mu.
func (s *Store) adjacentUnodesLocked(end hashing.Hash, self NodeID) []NodeID {
	d, ok := s.dnodes[end]
	if !ok {
		return nil
	}
	hsr := s.newHasher()
	if _, err := hsr.Seed(d.Sequence); err != nil {
		return nil
	}
	left, err := hsr.EnumerateLeft()
	if err != nil {
		return nil
	}
	right, err := hsr.EnumerateRight()
	if err != nil {
		return nil
	}
	var out []NodeID
	for _, cand := range append(left[:], right[:]...) {
		if id, ok := s.unitigEnds[cand]; ok && id != self {
			out = append(out, id)
		}
	}
	return out
}

// FindConnectedComponents recomputes component_id for every unitig node by
// weakly-connected-component label and returns the partition as
// component_id -> member node IDs. This is the lazy recompute the spec's
// ComponentID field calls for - it is not maintained incrementally by the
// Mutator.
func (s *Store) FindConnectedComponents() map[uint64][]NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.unodes {
		u.ComponentID = 0
	}
	var componentID uint64
	for id, u := range s.unodes {
		if u.ComponentID != 0 {
			continue
		}
		componentID++
		queue := []NodeID{id}
		u.ComponentID = componentID
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cu := s.unodes[cur]
			for _, end := range []hashing.Hash{cu.LeftEnd, cu.RightEnd} {
				for _, next := range s.adjacentUnodesLocked(end, cur) {
					nu := s.unodes[next]
					if nu.ComponentID != 0 {
						continue
					}
					nu.ComponentID = componentID
					queue = append(queue, next)
				}
			}
		}
	}
	out := make(map[uint64][]NodeID, componentID)
	for id, u := range s.unodes {
		u.ComponentID--
		out[u.ComponentID] = append(out[u.ComponentID], id)
	}
	return out
}
