package cdbg

import (
	"fmt"

	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/traverse"
)

// Mutator is a bound handle to a Store's writer lock, obtained from
// Store.Begin. Every primitive below is atomic with respect to the three
// indices and emits its history event last, after the structural change
// has landed - grounded on the vertex/edge mutation methods of
// other_examples/ExaScience-elprep__assemble-reads.go's kmerGraph and on
// original_source's cdbg.hh for the exact primitive semantics.
type Mutator struct {
	s *Store
}

func otherEnd(u *UnitigNode, dir hashing.Direction) hashing.Hash {
	if dir == hashing.LEFT {
		return u.RightEnd
	}
	return u.LeftEnd
}

func hashesOf(seq []byte, newHasher func() hashing.Hasher) []hashing.Hash {
	h := newHasher()
	k := h.K()
	if len(seq) < k {
		return nil
	}
	n := len(seq) - k + 1
	out := make([]hashing.Hash, n)
	cur, err := h.Seed(seq[:k])
	if err != nil {
		return nil
	}
	out[0] = cur
	for i := 1; i < n; i++ {
		cur, err = h.ShiftRight(seq[i-1], seq[i+k-1])
		if err != nil {
			return out[:i]
		}
		out[i] = cur
	}
	return out
}

func toSet(hs []hashing.Hash) map[hashing.Hash]struct{} {
	set := make(map[hashing.Hash]struct{}, len(hs))
	for _, h := range hs {
		set[h] = struct{}{}
	}
	return set
}

// BuildDnode materializes a decision node at hash h if one does not already
// exist; otherwise it increments the existing node's observation count.
func (m *Mutator) BuildDnode(h hashing.Hash, kmer []byte) *DecisionNode {
	if d, ok := m.s.dnodes[h]; ok {
		d.Count++
		return d
	}
	hsr := m.s.newHasher()
	_, _ = hsr.Seed(kmer)
	nb, _ := traverse.Local(hsr, m.s.dbg)
	d := &DecisionNode{
		ID:          h,
		Sequence:    append([]byte(nil), kmer...),
		LeftDegree:  nb.InDegree(),
		RightDegree: nb.OutDegree(),
		Count:       1,
	}
	m.s.dnodes[h] = d
	m.s.sink.Notify(HistoryEvent{Kind: EventBuildDnode, DnodeID: h})
	return d
}

// BuildUnode allocates a new unitig node covering seq, with leftEnd and
// rightEnd as its boundary k-mer hashes and tags as its initial interior
// sample.
func (m *Mutator) BuildUnode(seq []byte, leftEnd, rightEnd hashing.Hash, tags []hashing.Hash) *UnitigNode {
	id := m.s.allocNodeID()
	u := &UnitigNode{
		ID:       id,
		Sequence: append([]byte(nil), seq...),
		LeftEnd:  leftEnd,
		RightEnd: rightEnd,
		Tags:     make(map[hashing.Hash]struct{}, len(tags)),
	}
	m.s.unodes[id] = u
	m.s.unitigEnds[leftEnd] = id
	m.s.unitigEnds[rightEnd] = id
	for _, t := range tags {
		u.Tags[t] = struct{}{}
		m.s.unitigTags[t] = id
	}
	m.recomputeMeta(u)
	m.s.sink.Notify(HistoryEvent{Kind: EventBuildUnode, UnodeID: id, Meta: u.Meta, Seq: u.Sequence})
	return u
}

// ExtendUnode locates the unitig bordering oldEnd and appends newSeq on the
// dir side, replacing oldEnd with newEnd as that side's boundary hash.
func (m *Mutator) ExtendUnode(dir hashing.Direction, newSeq []byte, oldEnd, newEnd hashing.Hash, newTags []hashing.Hash) (*UnitigNode, error) {
	id, ok := m.s.unitigEnds[oldEnd]
	if !ok {
		return nil, fmt.Errorf("extend_unode: %w", ErrUnknownUnode)
	}
	u := m.s.unodes[id]
	other := otherEnd(u, dir)
	if oldEnd != other {
		delete(m.s.unitigEnds, oldEnd)
	}

	if dir == hashing.LEFT {
		u.Sequence = append(append([]byte(nil), newSeq...), u.Sequence...)
		u.LeftEnd = newEnd
	} else {
		u.Sequence = append(append([]byte(nil), u.Sequence...), newSeq...)
		u.RightEnd = newEnd
	}
	m.s.unitigEnds[u.LeftEnd] = id
	m.s.unitigEnds[u.RightEnd] = id
	for _, t := range newTags {
		u.Tags[t] = struct{}{}
		m.s.unitigTags[t] = id
	}
	m.recomputeMeta(u)
	m.s.sink.Notify(HistoryEvent{Kind: EventExtendUnode, UnodeID: id, Meta: u.Meta, Seq: u.Sequence})
	return u, nil
}

// ClipUnode removes the single boundary k-mer on the dir side of the unitig
// bordering oldEnd, replacing it with newEnd.
func (m *Mutator) ClipUnode(dir hashing.Direction, oldEnd, newEnd hashing.Hash) (*UnitigNode, error) {
	id, ok := m.s.unitigEnds[oldEnd]
	if !ok {
		return nil, fmt.Errorf("clip_unode: %w", ErrUnknownUnode)
	}
	u := m.s.unodes[id]
	k := m.s.k
	if len(u.Sequence) <= k {
		return nil, fmt.Errorf("clip_unode: %w: unitig too short to clip", ErrInvariant)
	}
	other := otherEnd(u, dir)
	if oldEnd != other {
		delete(m.s.unitigEnds, oldEnd)
	}

	if dir == hashing.LEFT {
		u.Sequence = u.Sequence[1:]
		u.LeftEnd = newEnd
	} else {
		u.Sequence = u.Sequence[:len(u.Sequence)-1]
		u.RightEnd = newEnd
	}
	if _, tagged := u.Tags[oldEnd]; tagged {
		delete(u.Tags, oldEnd)
		delete(m.s.unitigTags, oldEnd)
	}
	m.s.unitigEnds[u.LeftEnd] = id
	m.s.unitigEnds[u.RightEnd] = id
	m.recomputeMeta(u)
	m.s.sink.Notify(HistoryEvent{Kind: EventClipUnode, UnodeID: id, Meta: u.Meta, Seq: u.Sequence})
	return u, nil
}

// SplitUnode breaks the unitig at id into two at k-mer position splitAt,
// removing the k-mer at that position (it has become a decision node owned
// by neither half). leftNewRightEnd and rightNewLeftEnd are the new
// boundary hashes the two halves expose on the side facing the removed
// k-mer. If the unitig is circular, the split instead linearizes it into a
// single open unitig (see DESIGN.md's open-question note on circular
// splits) and the second return value is nil.
func (m *Mutator) SplitUnode(id NodeID, splitAt int, leftNewRightEnd, rightNewLeftEnd hashing.Hash) (*UnitigNode, *UnitigNode, error) {
	u, ok := m.s.unodes[id]
	if !ok {
		return nil, nil, fmt.Errorf("split_unode: %w", ErrUnknownUnode)
	}
	k := m.s.k

	if u.LeftEnd == u.RightEnd {
		left, err := m.splitCircular(u, splitAt)
		return left, nil, err
	}

	d := splitAt
	if d < 0 || d+k >= len(u.Sequence) {
		return nil, nil, fmt.Errorf("split_unode: %w: split position out of range", ErrInvariant)
	}
	leftSeq := append([]byte(nil), u.Sequence[:d+k-1]...)
	rightSeq := append([]byte(nil), u.Sequence[d+1:]...)

	origLeftEnd, origRightEnd := u.LeftEnd, u.RightEnd
	leftSet := toSet(hashesOf(leftSeq, m.s.newHasher))
	rightSet := toSet(hashesOf(rightSeq, m.s.newHasher))

	leftTags := map[hashing.Hash]struct{}{}
	rightTags := map[hashing.Hash]struct{}{}
	for t := range u.Tags {
		if _, ok := leftSet[t]; ok {
			leftTags[t] = struct{}{}
		} else if _, ok := rightSet[t]; ok {
			rightTags[t] = struct{}{}
		}
		delete(m.s.unitigTags, t)
	}

	delete(m.s.unitigEnds, origRightEnd)
	delete(m.s.unitigEnds, origLeftEnd)

	u.Sequence = leftSeq
	u.LeftEnd = origLeftEnd
	u.RightEnd = leftNewRightEnd
	u.Tags = leftTags

	rightID := m.s.allocNodeID()
	right := &UnitigNode{
		ID:       rightID,
		Sequence: rightSeq,
		LeftEnd:  rightNewLeftEnd,
		RightEnd: origRightEnd,
		Tags:     rightTags,
	}
	m.s.unodes[rightID] = right

	m.s.unitigEnds[u.LeftEnd] = u.ID
	m.s.unitigEnds[u.RightEnd] = u.ID
	m.s.unitigEnds[right.LeftEnd] = right.ID
	m.s.unitigEnds[right.RightEnd] = right.ID
	for t := range leftTags {
		m.s.unitigTags[t] = u.ID
	}
	for t := range rightTags {
		m.s.unitigTags[t] = right.ID
	}

	m.recomputeMeta(u)
	m.recomputeMeta(right)
	m.s.sink.Notify(HistoryEvent{
		Kind:       EventSplitUnode,
		UnodeID:    u.ID,
		OtherUnode: right.ID,
		Meta:       u.Meta,
		Seq:        u.Sequence,
		LSeq:       u.Sequence,
		RSeq:       right.Sequence,
		RMeta:      right.Meta,
	})
	return u, right, nil
}

func (m *Mutator) splitCircular(u *UnitigNode, splitAt int) (*UnitigNode, error) {
	k := m.s.k
	n := len(u.Sequence)
	if n <= k {
		return nil, fmt.Errorf("split_unode: %w: circular unitig of length K cannot be split", ErrInvariant)
	}
	d := ((splitAt % n) + n) % n
	rotated := append(append([]byte(nil), u.Sequence[d:]...), u.Sequence[:d]...)
	// rotated[0:k] is the decision k-mer being removed. Linearizing a loop
	// means the remainder must still carry the k-1 wrap-around bases that
	// used to close it, or the new open unitig's own k-mers would not all
	// be present in the dBG store.
	linear := append(append([]byte(nil), rotated[k:]...), rotated[:k-1]...)

	for t := range u.Tags {
		delete(m.s.unitigTags, t)
	}
	delete(m.s.unitigEnds, u.LeftEnd)

	newHashes := hashesOf(linear, m.s.newHasher)
	newSet := toSet(newHashes)
	newTags := map[hashing.Hash]struct{}{}
	for t := range u.Tags {
		if _, ok := newSet[t]; ok {
			newTags[t] = struct{}{}
		}
	}

	u.Sequence = linear
	if len(newHashes) > 0 {
		u.LeftEnd = newHashes[0]
		u.RightEnd = newHashes[len(newHashes)-1]
	}
	u.Tags = newTags
	m.s.unitigEnds[u.LeftEnd] = u.ID
	m.s.unitigEnds[u.RightEnd] = u.ID
	for t := range newTags {
		m.s.unitigTags[t] = u.ID
	}
	m.recomputeMeta(u)
	m.s.sink.Notify(HistoryEvent{Kind: EventSplitUnode, UnodeID: u.ID, Meta: u.Meta, Seq: u.Sequence})
	return u, nil
}

// MergeUnodes concatenates the unitig ending at leftEnd, spanSeq, and the
// unitig starting at rightEnd into a single unitig. The left unitig's
// NodeID survives; the right unitig is deleted.
func (m *Mutator) MergeUnodes(spanSeq []byte, leftEnd, rightEnd hashing.Hash, tags []hashing.Hash) (*UnitigNode, error) {
	leftID, ok := m.s.unitigEnds[leftEnd]
	if !ok {
		return nil, fmt.Errorf("merge_unodes: %w", ErrUnknownUnode)
	}
	rightID, ok := m.s.unitigEnds[rightEnd]
	if !ok {
		return nil, fmt.Errorf("merge_unodes: %w", ErrUnknownUnode)
	}
	if leftID == rightID {
		return nil, fmt.Errorf("merge_unodes: %w: left and right ends belong to the same unitig, use Circularize", ErrInvariant)
	}
	left := m.s.unodes[leftID]
	right := m.s.unodes[rightID]

	combinedLeftEnd, combinedRightEnd := left.LeftEnd, right.RightEnd
	newSeq := append(append(append([]byte(nil), left.Sequence...), spanSeq...), right.Sequence...)

	delete(m.s.unitigEnds, left.RightEnd)
	delete(m.s.unitigEnds, right.LeftEnd)
	delete(m.s.unitigEnds, left.LeftEnd)
	delete(m.s.unitigEnds, right.RightEnd)
	for t := range left.Tags {
		delete(m.s.unitigTags, t)
	}
	for t := range right.Tags {
		delete(m.s.unitigTags, t)
	}

	// The decision open question resolves tag carry-forward here: the span
	// itself contributes no stale tags (it is freshly observed sequence),
	// so the merged tag set is simply the union of the two halves plus
	// whatever the Segment Finder sampled from the span.
	merged := map[hashing.Hash]struct{}{}
	for t := range left.Tags {
		merged[t] = struct{}{}
	}
	for t := range right.Tags {
		merged[t] = struct{}{}
	}
	for _, t := range tags {
		merged[t] = struct{}{}
	}

	left.Sequence = newSeq
	left.LeftEnd = combinedLeftEnd
	left.RightEnd = combinedRightEnd
	left.Tags = merged
	delete(m.s.unodes, rightID)

	m.s.unitigEnds[left.LeftEnd] = leftID
	m.s.unitigEnds[left.RightEnd] = leftID
	for t := range merged {
		m.s.unitigTags[t] = leftID
	}

	m.recomputeMeta(left)
	m.s.sink.Notify(HistoryEvent{Kind: EventMergeUnodes, UnodeID: leftID, OtherUnode: rightID, Meta: left.Meta, Seq: left.Sequence})
	return left, nil
}

// Circularize closes a unitig's two ends into a loop by appending spanSeq,
// the read-derived sequence connecting its right end back to its left end.
// This is the Phase 3 same-unitig case the spec carves out alongside
// MergeUnodes, not one of the eight named primitives, but built from the
// same index-maintenance discipline.
func (m *Mutator) Circularize(id NodeID, spanSeq []byte) (*UnitigNode, error) {
	u, ok := m.s.unodes[id]
	if !ok {
		return nil, fmt.Errorf("circularize: %w", ErrUnknownUnode)
	}
	delete(m.s.unitigEnds, u.RightEnd)
	delete(m.s.unitigEnds, u.LeftEnd)
	for t := range u.Tags {
		delete(m.s.unitigTags, t)
	}
	u.Sequence = append(append([]byte(nil), u.Sequence...), spanSeq...)
	u.RightEnd = u.LeftEnd
	m.s.unitigEnds[u.LeftEnd] = id
	newHashes := hashesOf(u.Sequence, m.s.newHasher)
	newSet := toSet(newHashes)
	newTags := map[hashing.Hash]struct{}{}
	for t := range u.Tags {
		if _, ok := newSet[t]; ok {
			newTags[t] = struct{}{}
		}
	}
	u.Tags = newTags
	for t := range newTags {
		m.s.unitigTags[t] = id
	}
	u.Meta = CIRCULAR
	m.s.sink.Notify(HistoryEvent{Kind: EventMergeUnodes, UnodeID: id, Meta: CIRCULAR, Seq: u.Sequence})
	return u, nil
}

// DeleteUnode removes a unitig node from all three indices.
func (m *Mutator) DeleteUnode(id NodeID) error {
	u, ok := m.s.unodes[id]
	if !ok {
		return fmt.Errorf("delete_unode: %w", ErrUnknownUnode)
	}
	delete(m.s.unitigEnds, u.LeftEnd)
	delete(m.s.unitigEnds, u.RightEnd)
	for t := range u.Tags {
		delete(m.s.unitigTags, t)
	}
	delete(m.s.unodes, id)
	m.s.sink.Notify(HistoryEvent{Kind: EventDeleteUnode, UnodeID: id})
	return nil
}

// DeleteDnode removes a decision node. Per the spec's lifecycle rule,
// callers invoke this when a decision node's degree has been induced back
// down to <=1 on both sides.
func (m *Mutator) DeleteDnode(h hashing.Hash) error {
	if _, ok := m.s.dnodes[h]; !ok {
		return fmt.Errorf("delete_dnode: %w", ErrUnknownDnode)
	}
	delete(m.s.dnodes, h)
	m.s.sink.Notify(HistoryEvent{Kind: EventDeleteDnode, DnodeID: h})
	return nil
}

// RecomputeMeta re-derives u's NodeMeta from its current endpoint
// connectivity against the dBG store.
func (m *Mutator) RecomputeMeta(u *UnitigNode) { m.recomputeMeta(u) }

func (m *Mutator) recomputeMeta(u *UnitigNode) {
	k := m.s.k
	if len(u.Sequence) < k {
		u.Meta = TRIVIAL
		return
	}
	if u.LeftEnd == u.RightEnd && len(u.Sequence) > k {
		u.Meta = CIRCULAR
		return
	}

	leftSeq := u.Sequence[:k]
	rightSeq := u.Sequence[len(u.Sequence)-k:]

	lh := m.s.newHasher()
	_, _ = lh.Seed(leftSeq)
	lnb, _ := traverse.Local(lh, m.s.dbg)

	rh := m.s.newHasher()
	_, _ = rh.Seed(rightSeq)
	rnb, _ := traverse.Local(rh, m.s.dbg)

	leftConnects := lnb.InDegree() > 0
	rightConnects := rnb.OutDegree() > 0

	switch {
	case len(u.Sequence) == k && !leftConnects && !rightConnects:
		u.Meta = TRIVIAL
	case !leftConnects && !rightConnects:
		u.Meta = ISLAND
	case leftConnects != rightConnects:
		u.Meta = TIP
	default:
		u.Meta = FULL
	}
}

// The methods below give the Streaming Compactor driver (src/compactor)
// lock-free read access to the index while it holds the Mutator: safe only
// because Begin already took the Store's exclusive lock for the whole read.

// IsDnode reports whether h already has a materialized decision node.
func (m *Mutator) IsDnode(h hashing.Hash) bool {
	_, ok := m.s.dnodes[h]
	return ok
}

// UnitigAtEnd resolves a k-mer hash to the unitig it borders, if any.
func (m *Mutator) UnitigAtEnd(h hashing.Hash) (*UnitigNode, bool) {
	id, ok := m.s.unitigEnds[h]
	if !ok {
		return nil, false
	}
	return m.s.unodes[id], true
}

// UnitigAtTag resolves an interior tag hash to its owning unitig, if any.
func (m *Mutator) UnitigAtTag(h hashing.Hash) (*UnitigNode, bool) {
	id, ok := m.s.unitigTags[h]
	if !ok {
		return nil, false
	}
	return m.s.unodes[id], true
}

// AllUnodes returns every live unitig node. Used as the fallback scan when
// an induced decision k-mer interior to a unitig was not caught by the
// sparse tag sample.
func (m *Mutator) AllUnodes() []*UnitigNode {
	out := make([]*UnitigNode, 0, len(m.s.unodes))
	for _, u := range m.s.unodes {
		out = append(out, u)
	}
	return out
}

// K returns the k-mer length of the bound Store.
func (m *Mutator) K() int { return m.s.k }

// TagDensity returns the tag spacing of the bound Store.
func (m *Mutator) TagDensity() int { return m.s.tagDensity }
