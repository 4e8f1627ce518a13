// Package compactor drives one read's worth of segments through the three
// phases the spec lays out: find the decision k-mers this read induces,
// apply that induction to split or clip the unitigs it touches, then apply
// the read's own build/extend/merge mutations. Grounded on the
// phase-separated Run methods of src/pipeline/index.go and on
// original_source's StreamingCompactor (boink's compactor.hh) for the
// three-phase shape itself.
package compactor

import (
	"fmt"
	"sort"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/segment"
	"github.com/will-rowe/cdbgstream/src/traverse"
)

// Compactor owns the collaborators one streaming ingest needs: a Hasher
// factory, the dBG membership oracle, and the cDBG index itself.
type Compactor struct {
	newHasher  func() hashing.Hasher
	dbg        dbgstore.Store
	store      *cdbg.Store
	tagDensity int
}

// New constructs a Compactor. newHasher must build a fresh Hasher of the
// same kind and K the store was built with.
func New(store *cdbg.Store, dbg dbgstore.Store, newHasher func() hashing.Hasher, tagDensity int) *Compactor {
	return &Compactor{newHasher: newHasher, dbg: dbg, store: store, tagDensity: tagDensity}
}

// InsertSequence performs dBG-only insertion, bypassing the compactor
// entirely - the spec's insert_sequence op.
func (c *Compactor) InsertSequence(seq []byte) (int, error) {
	h := c.newHasher()
	k := h.K()
	if len(seq) < k {
		return 0, nil
	}
	n := 0
	cur, err := h.Seed(seq[:k])
	if err != nil {
		return 0, fmt.Errorf("compactor: insert_sequence: %w", err)
	}
	if c.dbg.InsertAndTest(cur) {
		n++
	}
	for i := 1; i < len(seq)-k+1; i++ {
		cur, err = h.ShiftRight(seq[i-1], seq[i+k-1])
		if err != nil {
			return n, fmt.Errorf("compactor: insert_sequence: %w", err)
		}
		if c.dbg.InsertAndTest(cur) {
			n++
		}
	}
	return n, nil
}

// induction is one decision k-mer discovered during Phase 1, carrying the
// bytes needed to materialize its DecisionNode in Phase 2.
type induction struct {
	hash hashing.Hash
	kmer []byte
}

// UpdateSequence applies one read to the cDBG: Phase 1 finds the decision
// k-mers it induces, Phase 2 applies that induction, Phase 3 applies the
// read's own unitig mutations. A read shorter than K, or one whose
// alphabet is invalid, is rejected before any index mutation: segment.Find
// is validated first, exactly as the spec's error-handling design
// requires.
func (c *Compactor) UpdateSequence(seq []byte) error {
	segs, err := segment.Find(seq, c.newHasher, c.dbg, c.tagDensity)
	if err != nil {
		return fmt.Errorf("compactor: update_sequence: %w", err)
	}
	if segs == nil {
		return nil
	}

	newThisRead := newReadSet(segs, c.newHasher)

	mut := c.store.Begin()
	defer mut.Unlock()

	induced := c.phase1(mut, segs, newThisRead)
	if err := c.phase2(mut, induced); err != nil {
		return fmt.Errorf("compactor: phase 2: %w", err)
	}
	if err := c.phase3(mut, segs); err != nil {
		return fmt.Errorf("compactor: phase 3: %w", err)
	}
	return nil
}

func newReadSet(segs []segment.Segment, newHasher func() hashing.Hasher) map[hashing.Hash]struct{} {
	set := map[hashing.Hash]struct{}{}
	for _, s := range segs {
		if s.IsNull() {
			continue
		}
		for _, h := range hashesOfSeq(s.Sequence, newHasher) {
			set[h] = struct{}{}
		}
	}
	return set
}

func hashesOfSeq(seq []byte, newHasher func() hashing.Hasher) []hashing.Hash {
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

// phase1 finds every decision k-mer this read induces, per the spec's
// triple-walk over (u, v, w).
func (c *Compactor) phase1(mut *cdbg.Mutator, segs []segment.Segment, newThisRead map[hashing.Hash]struct{}) []induction {
	var out []induction
	seen := map[hashing.Hash]struct{}{}
	add := func(h hashing.Hash, kmer []byte) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, induction{hash: h, kmer: kmer})
	}

	for i, v := range segs {
		if v.IsNull() {
			continue
		}
		var u, w *segment.Segment
		if i > 0 {
			u = &segs[i-1]
		}
		if i < len(segs)-1 {
			w = &segs[i+1]
		}

		if v.IsDecision() {
			add(v.LeftAnchor, v.Sequence)
			c.collectInducedNeighbors(mut, v.Sequence, newThisRead, add)
			continue
		}

		// unitig-slice: a Null neighbor marks a gap to an old k-mer this
		// read didn't insert. That old k-mer - not v's own boundary, which
		// is new by construction and so can never itself be the induced
		// one - is the candidate that may have just gained a second
		// out-edge/in-edge from this read's own new k-mer. LeftFlank and
		// RightFlank carry its hash; testInducedByHash resolves the bytes
		// via whichever unitig currently owns it.
		if u != nil && u.IsNull() {
			c.testInducedByHash(mut, v.LeftFlank, newThisRead, add)
		}
		if w != nil && w.IsNull() {
			c.testInducedByHash(mut, v.RightFlank, newThisRead, add)
		}
	}
	return out
}

// collectInducedNeighbors inspects a freshly-materialized decision k-mer's
// dBG neighbors: any neighbor not new-to-this-read and not already a dnode,
// whose own local neighborhood is itself a decision, joins the induced set.
func (c *Compactor) collectInducedNeighbors(mut *cdbg.Mutator, kmer []byte, newThisRead map[hashing.Hash]struct{}, add func(hashing.Hash, []byte)) {
	h := c.newHasher()
	if _, err := h.Seed(kmer); err != nil {
		return
	}
	nb, err := traverse.Local(h, c.dbg)
	if err != nil {
		return
	}
	for _, cand := range append(append([]hashing.Hash{}, nb.Left...), nb.Right...) {
		c.testInducedByHash(mut, cand, newThisRead, add)
	}
}

// testInduced checks whether the given k-mer (bytes + hash already known)
// should be added to the induced set.
func (c *Compactor) testInduced(mut *cdbg.Mutator, kmer []byte, h hashing.Hash, newThisRead map[hashing.Hash]struct{}, add func(hashing.Hash, []byte)) {
	if _, isNew := newThisRead[h]; isNew {
		return
	}
	if mut.IsDnode(h) {
		return
	}
	hsr := c.newHasher()
	if _, err := hsr.Seed(kmer); err != nil {
		return
	}
	nb, err := traverse.Local(hsr, c.dbg)
	if err != nil || !nb.IsDecision() {
		return
	}
	add(h, kmer)
}

// testInducedByHash is testInduced for a candidate we only have the hash
// for. The Hasher contract has no hash-to-sequence inverse, so the k-mer's
// own bytes are recovered from an existing unitig that holds the hash as
// one of its ends or as a tag; a candidate with neither anchor is skipped.
func (c *Compactor) testInducedByHash(mut *cdbg.Mutator, h hashing.Hash, newThisRead map[hashing.Hash]struct{}, add func(hashing.Hash, []byte)) {
	if _, isNew := newThisRead[h]; isNew {
		return
	}
	if mut.IsDnode(h) {
		return
	}
	if !c.dbg.Contains(h) {
		return
	}
	// We cannot recover this neighbor's own sequence bytes from its hash
	// alone; locate it via an existing unitig end or tag, both of which
	// carry sequence. A neighbor with no such anchor cannot be classified
	// here and is left for a later read to induce once it is reachable.
	if u, ok := mut.UnitigAtEnd(h); ok {
		kmer := endKmerBytes(u, h, c.newHasher().K())
		c.testInduced(mut, kmer, h, newThisRead, add)
		return
	}
	if u, ok := mut.UnitigAtTag(h); ok {
		if idx, ok := findKmerPos(u, h, c.newHasher); ok {
			k := c.newHasher().K()
			kmer := u.Sequence[idx : idx+k]
			c.testInduced(mut, kmer, h, newThisRead, add)
		}
	}
}

func endKmerBytes(u *cdbg.UnitigNode, h hashing.Hash, k int) []byte {
	if h == u.LeftEnd {
		return u.Sequence[:k]
	}
	return u.Sequence[len(u.Sequence)-k:]
}

func findKmerPos(u *cdbg.UnitigNode, h hashing.Hash, newHasher func() hashing.Hasher) (int, bool) {
	hs := hashesOfSeq(u.Sequence, newHasher)
	for i, c := range hs {
		if c == h {
			return i, true
		}
	}
	return 0, false
}

// phase2 materializes each induced decision k-mer and clips or splits the
// unitig it sits inside. Processed in ascending position order within the
// same unitig so split boundaries land deterministically: orderByUnitigPosition
// resolves each induction's owning unitig and offset against the
// pre-phase-2 graph once, up front, so a later split on a shared unitig
// cannot disturb the order already decided for it.
func (c *Compactor) phase2(mut *cdbg.Mutator, induced []induction) error {
	k := c.newHasher().K()
	induced = orderByUnitigPosition(mut, induced, c.newHasher)

	for _, ind := range induced {
		mut.BuildDnode(ind.hash, ind.kmer)

		if u, ok := mut.UnitigAtEnd(ind.hash); ok {
			if u.LeftEnd == u.RightEnd && len(u.Sequence) == k {
				if err := mut.DeleteUnode(u.ID); err != nil {
					return err
				}
				continue
			}
			hs := hashesOfSeq(u.Sequence, c.newHasher)
			if ind.hash == u.LeftEnd {
				if _, err := mut.ClipUnode(hashing.LEFT, ind.hash, hs[1]); err != nil {
					return err
				}
			} else {
				if _, err := mut.ClipUnode(hashing.RIGHT, ind.hash, hs[len(hs)-2]); err != nil {
					return err
				}
			}
			continue
		}

		if u, ok := mut.UnitigAtTag(ind.hash); ok {
			if idx, ok := findKmerPos(u, ind.hash, c.newHasher); ok {
				if err := c.splitAt(mut, u, idx); err != nil {
					return err
				}
			}
			continue
		}

		for _, u := range mut.AllUnodes() {
			if idx, ok := findKmerPos(u, ind.hash, c.newHasher); ok {
				if err := c.splitAt(mut, u, idx); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// orderByUnitigPosition resolves each induction's current owning unitig and
// its offset within that unitig, then sorts ascending by (unitig, offset).
// The spec's tie-break only constrains order among inductions sharing a
// unitig, so grouping by unitig ID first and ordering by position second
// satisfies it; inductions on different unitigs come out in ascending
// unitig NodeID order.
func orderByUnitigPosition(mut *cdbg.Mutator, induced []induction, newHasher func() hashing.Hasher) []induction {
	k := newHasher().K()
	type located struct {
		ind induction
		uid cdbg.NodeID
		pos int
	}
	locs := make([]located, len(induced))
	for i, ind := range induced {
		l := located{ind: ind}
		if u, ok := mut.UnitigAtEnd(ind.hash); ok {
			l.uid = u.ID
			if ind.hash != u.LeftEnd {
				l.pos = len(u.Sequence) - k
			}
		} else if u, ok := mut.UnitigAtTag(ind.hash); ok {
			l.uid = u.ID
			if idx, ok := findKmerPos(u, ind.hash, newHasher); ok {
				l.pos = idx
			}
		} else {
			for _, u := range mut.AllUnodes() {
				if idx, ok := findKmerPos(u, ind.hash, newHasher); ok {
					l.uid = u.ID
					l.pos = idx
					break
				}
			}
		}
		locs[i] = l
	}
	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].uid != locs[j].uid {
			return locs[i].uid < locs[j].uid
		}
		return locs[i].pos < locs[j].pos
	})
	out := make([]induction, len(locs))
	for i, l := range locs {
		out[i] = l.ind
	}
	return out
}

func (c *Compactor) splitAt(mut *cdbg.Mutator, u *cdbg.UnitigNode, idx int) error {
	hs := hashesOfSeq(u.Sequence, c.newHasher)
	var leftNewRightEnd, rightNewLeftEnd hashing.Hash
	if idx > 0 {
		leftNewRightEnd = hs[idx-1]
	}
	if idx < len(hs)-1 {
		rightNewLeftEnd = hs[idx+1]
	}
	_, _, err := mut.SplitUnode(u.ID, idx, leftNewRightEnd, rightNewLeftEnd)
	return err
}

// phase3 applies each segment's own build/extend/merge/circularize
// mutation per the has_left/has_right table.
func (c *Compactor) phase3(mut *cdbg.Mutator, segs []segment.Segment) error {
	k := c.newHasher().K()
	for _, s := range segs {
		if s.IsNull() || s.IsDecision() {
			continue
		}
		leftU, hasLeft := mut.UnitigAtEnd(s.LeftFlank)
		rightU, hasRight := mut.UnitigAtEnd(s.RightFlank)

		switch {
		case !hasLeft && !hasRight:
			mut.BuildUnode(s.Sequence, s.LeftAnchor, s.RightAnchor, s.Tags)
		case hasLeft && !hasRight:
			trimmed := s.Sequence
			if len(trimmed) >= k-1 {
				trimmed = trimmed[k-1:]
			}
			if _, err := mut.ExtendUnode(hashing.RIGHT, trimmed, s.LeftFlank, s.RightAnchor, s.Tags); err != nil {
				return err
			}
		case !hasLeft && hasRight:
			trimmed := s.Sequence
			if len(trimmed) >= k-1 {
				trimmed = trimmed[:len(trimmed)-(k-1)]
			}
			if _, err := mut.ExtendUnode(hashing.LEFT, trimmed, s.RightFlank, s.LeftAnchor, s.Tags); err != nil {
				return err
			}
		default:
			span := s.Sequence
			if len(span) >= 2*(k-1) {
				span = span[k-1 : len(span)-(k-1)]
			}
			if leftU.ID == rightU.ID {
				if _, err := mut.Circularize(leftU.ID, span); err != nil {
					return err
				}
			} else {
				if _, err := mut.MergeUnodes(span, s.LeftFlank, s.RightFlank, s.Tags); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
