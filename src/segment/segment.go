// Package segment turns an incoming read into the ordered sequence of
// compact segments the Streaming Compactor drives: null boundary sentinels,
// singleton decision k-mers, and maximal runs of new k-mers (unitig
// slices). Grounded on original_source's compact_segment (boink's
// compactor.hh) for the sweep shape, rebuilt against the spec's own
// transition table since the core has no dependency on boink itself.
package segment

import (
	"fmt"

	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/traverse"
)

// Kind classifies a Segment.
type Kind uint8

const (
	// Null is a boundary sentinel: no k-mers, marks where a run of new
	// k-mers was broken by an old k-mer or ends at a read boundary.
	Null Kind = iota
	// DecisionKmer is a single new k-mer that is itself a decision k-mer.
	DecisionKmer
	// UnitigSlice is a maximal run of new, non-decision k-mers.
	UnitigSlice
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case DecisionKmer:
		return "decision"
	case UnitigSlice:
		return "unitig-slice"
	default:
		return "unknown"
	}
}

// Segment is one classified stretch of a read, as produced by Find.
type Segment struct {
	Kind Kind

	// LeftAnchor and RightAnchor are the hashes of the first and last
	// k-mer covered by the segment. For a DecisionKmer segment they are
	// equal. Null segments carry none.
	LeftAnchor, RightAnchor hashing.Hash

	// LeftFlank and RightFlank are the hash just outside the segment: the
	// adjacent read k-mer, or, at a read boundary, the unique dBG
	// neighbor if exactly one exists. If no such k-mer exists, the flank
	// equals the adjacent anchor.
	LeftFlank, RightFlank hashing.Hash

	// StartPos and Length describe the segment's k-mer index range within
	// the read: k-mers [StartPos, StartPos+Length) are covered.
	StartPos, Length int

	// Sequence is the raw read bytes the segment covers (Length+K-1
	// bases for a unitig slice, exactly K bases for a decision k-mer).
	Sequence []byte

	// Tags are interior k-mer hashes sampled at roughly one per
	// tagDensity k-mers, for O(1) random access into long unitigs later.
	Tags []hashing.Hash
}

func (s Segment) IsNull() bool     { return s.Kind == Null }
func (s Segment) IsDecision() bool { return s.Kind == DecisionKmer }

var nullSegment = Segment{Kind: Null}

// Find classifies every k-mer of seq and returns the ordered segment list.
// newHasher must produce a fresh, unseeded Hasher of the same concrete kind
// and K each time it is called; Find calls it three times: once for a
// probe that reads K, then once to drive insertion and once to drive
// decision detection, both as independent rolling sweeps over seq.
//
// A read shorter than K is a no-op: Find returns (nil, nil). An invalid
// alphabet is reported as an error and nothing is inserted into store.
func Find(seq []byte, newHasher func() hashing.Hasher, store dbgstore.Store, tagDensity int) ([]Segment, error) {
	probe := newHasher()
	k := probe.K()
	if len(seq) < k {
		return nil, nil
	}
	if err := validateAlphabet(seq); err != nil {
		return nil, err
	}

	numKmers := len(seq) - k + 1
	hashes := make([]hashing.Hash, numKmers)
	isNew := make([]bool, numKmers)
	isDecision := make([]bool, numKmers)

	// Pass 1: insert every k-mer, recording hash and novelty.
	insertHasher := newHasher()
	cur, err := insertHasher.Seed(seq[:k])
	if err != nil {
		return nil, fmt.Errorf("segment: seeding insert pass: %w", err)
	}
	hashes[0] = cur
	isNew[0] = store.InsertAndTest(cur)
	for i := 1; i < numKmers; i++ {
		out, in := seq[i-1], seq[i+k-1]
		h, err := insertHasher.ShiftRight(out, in)
		if err != nil {
			return nil, fmt.Errorf("segment: insert pass shift at %d: %w", i, err)
		}
		hashes[i] = h
		isNew[i] = store.InsertAndTest(h)
	}

	// Pass 2: with the read's own k-mers now all present, determine which
	// positions are decision k-mers, and capture the two read-boundary
	// neighborhoods needed for flank resolution.
	decideHasher := newHasher()
	if _, err := decideHasher.Seed(seq[:k]); err != nil {
		return nil, fmt.Errorf("segment: seeding decision pass: %w", err)
	}
	var leftBoundary, rightBoundary traverse.Neighborhood
	for i := 0; i < numKmers; i++ {
		nb, err := traverse.Local(decideHasher, store)
		if err != nil {
			return nil, fmt.Errorf("segment: decision pass at %d: %w", i, err)
		}
		isDecision[i] = nb.IsDecision()
		if i == 0 {
			leftBoundary = nb
		}
		if i == numKmers-1 {
			rightBoundary = nb
		}
		if i < numKmers-1 {
			if _, err := decideHasher.ShiftRight(seq[i], seq[i+k]); err != nil {
				return nil, fmt.Errorf("segment: decision pass shift at %d: %w", i+1, err)
			}
		}
	}

	leftFlankAt := func(i int, anchor hashing.Hash) hashing.Hash {
		if i > 0 {
			return hashes[i-1]
		}
		if len(leftBoundary.Left) == 1 {
			return leftBoundary.Left[0]
		}
		return anchor
	}
	rightFlankAt := func(i int, anchor hashing.Hash) hashing.Hash {
		if i < numKmers-1 {
			return hashes[i+1]
		}
		if len(rightBoundary.Right) == 1 {
			return rightBoundary.Right[0]
		}
		return anchor
	}

	var out []Segment
	var cur2 *Segment

	closeCur := func(endPos int) {
		if cur2 == nil {
			return
		}
		cur2.Length = endPos - cur2.StartPos + 1
		cur2.RightAnchor = hashes[endPos]
		cur2.RightFlank = rightFlankAt(endPos, cur2.RightAnchor)
		cur2.Sequence = seq[cur2.StartPos : endPos+k]
		cur2.Tags = sampleTags(hashes, cur2.StartPos, endPos, tagDensity)
		out = append(out, *cur2)
		cur2 = nil
	}

	for i := 0; i < numKmers; i++ {
		if !isNew[i] {
			closeCur(i - 1)
			if len(out) == 0 || out[len(out)-1].Kind != Null {
				out = append(out, nullSegment)
			}
			continue
		}
		if isDecision[i] {
			closeCur(i - 1)
			out = append(out, Segment{
				Kind:        DecisionKmer,
				LeftAnchor:  hashes[i],
				RightAnchor: hashes[i],
				LeftFlank:   leftFlankAt(i, hashes[i]),
				RightFlank:  rightFlankAt(i, hashes[i]),
				StartPos:    i,
				Length:      1,
				Sequence:    seq[i : i+k],
			})
			continue
		}
		if cur2 == nil {
			cur2 = &Segment{
				Kind:       UnitigSlice,
				LeftAnchor: hashes[i],
				LeftFlank:  leftFlankAt(i, hashes[i]),
				StartPos:   i,
			}
		}
	}
	closeCur(numKmers - 1)
	if len(out) == 0 || out[len(out)-1].Kind != Null {
		out = append(out, nullSegment)
	}
	if len(out) == 0 || out[0].Kind != Null {
		out = append([]Segment{nullSegment}, out...)
	}
	return out, nil
}

func sampleTags(hashes []hashing.Hash, start, end, density int) []hashing.Hash {
	if density <= 0 {
		return nil
	}
	var tags []hashing.Hash
	for pos := start + 1; pos < end; pos++ {
		if (pos-start)%density == 0 {
			tags = append(tags, hashes[pos])
		}
	}
	return tags
}

func validateAlphabet(seq []byte) error {
	for _, b := range seq {
		switch b {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return fmt.Errorf("segment: %w", hashing.ErrBadAlphabet)
		}
	}
	return nil
}
