package cdbg

import (
	"testing"

	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
)

const testK = 4

func newHasher() hashing.Hasher { return hashing.NewForwardHasher(testK) }

// hashOf seeds a fresh Hasher on a K-length window and returns its hash.
func hashOf(t *testing.T, kmer string) hashing.Hash {
	t.Helper()
	h, err := newHasher().Seed([]byte(kmer))
	if err != nil {
		t.Fatalf("could not hash %q: %v", kmer, err)
	}
	return h
}

// insertAll rolls every overlapping K-mer of seq into hashes, and
// registers each one as present in dbg.
func insertAll(t *testing.T, dbg dbgstore.Store, seq string) []hashing.Hash {
	t.Helper()
	hs := hashesOf([]byte(seq), newHasher)
	for _, h := range hs {
		dbg.InsertAndTest(h)
	}
	return hs
}

func newTestStore(dbg dbgstore.Store) *Store {
	return NewStore(testK, 8, newHasher, dbg)
}

// TestBuildUnodeIsland builds a single unitig from a non-repetitive
// sequence whose boundary k-mers have no dBG neighbors outside themselves,
// so it should classify as ISLAND (invariant 1: both ends land in
// unitig_ends and map back to the same node).
func TestBuildUnodeIsland(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	seq := "ACGTGA" // k-mers: ACGT, CGTG, GTGA - all distinct, no self-loop
	hs := insertAll(t, dbg, seq)
	s := newTestStore(dbg)
	mut := s.Begin()

	u := mut.BuildUnode([]byte(seq), hs[0], hs[len(hs)-1], []hashing.Hash{hs[1]})
	if u.Meta != ISLAND {
		t.Fatalf("expected ISLAND, got %v", u.Meta)
	}
	if got, ok := s.unitigEnds[hs[0]]; !ok || got != u.ID {
		t.Fatalf("left end not indexed to unitig")
	}
	if got, ok := s.unitigEnds[hs[len(hs)-1]]; !ok || got != u.ID {
		t.Fatalf("right end not indexed to unitig")
	}
	mut.Unlock()
	if s.NumUnodes() != 1 {
		t.Fatalf("expected 1 unode, got %d", s.NumUnodes())
	}
}

// TestBuildDnodeDegree constructs a real branch in the dBG (two distinct
// right-extensions of the same k-1 overlap) and checks the resulting
// DecisionNode's degree matches.
func TestBuildDnodeDegree(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	// ACGT branches right to either ACGTA (via CGTA) or ACGTC (via CGTC)
	insertAll(t, dbg, "ACGTA")
	insertAll(t, dbg, "ACGTC")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	h := hashOf(t, "ACGT")
	d := mut.BuildDnode(h, []byte("ACGT"))
	if d.RightDegree != 2 {
		t.Fatalf("expected right degree 2, got %d", d.RightDegree)
	}
	if !d.IsDecision() {
		t.Fatalf("expected IsDecision true")
	}
	// a second call increments count rather than rebuilding
	d2 := mut.BuildDnode(h, []byte("ACGT"))
	if d2.Count != 2 {
		t.Fatalf("expected count 2 on rebuild, got %d", d2.Count)
	}
}

func collectEvents() (*[]HistoryEvent, HistorySinkFunc) {
	events := &[]HistoryEvent{}
	return events, HistorySinkFunc(func(e HistoryEvent) { *events = append(*events, e) })
}

// TestExtendUnode extends an existing unitig on the right and checks the
// NodeId survives, the sequence grows, and exactly one extend event fires.
func TestExtendUnode(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGTGA")
	s := newTestStore(dbg)
	events, sink := collectEvents()
	s.SetHistorySink(sink)
	mut := s.Begin()

	u := mut.BuildUnode([]byte("ACGTGA"), hs[0], hs[len(hs)-1], nil)
	origID := u.ID

	newHashes := insertAll(t, dbg, "GATT") // extends "...GA" with "TT" -> new end k-mer GATT
	extended, err := mut.ExtendUnode(hashing.RIGHT, []byte("TT"), hs[len(hs)-1], newHashes[len(newHashes)-1], nil)
	if err != nil {
		t.Fatalf("ExtendUnode failed: %v", err)
	}
	mut.Unlock()

	if extended.ID != origID {
		t.Fatalf("expected NodeId to survive extend, got %d want %d", extended.ID, origID)
	}
	if string(extended.Sequence) != "ACGTGATT" {
		t.Fatalf("unexpected sequence after extend: %q", extended.Sequence)
	}
	extendCount := 0
	for _, e := range *events {
		if e.Kind == EventExtendUnode {
			extendCount++
		}
	}
	if extendCount != 1 {
		t.Fatalf("expected exactly one extend event, got %d", extendCount)
	}
}

// TestClipUnodeTooShort ensures a unitig of exactly K cannot be clipped.
func TestClipUnodeTooShort(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGT")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	u := mut.BuildUnode([]byte("ACGT"), hs[0], hs[0], nil)
	_, err := mut.ClipUnode(hashing.LEFT, hs[0], hs[0])
	if err == nil {
		t.Fatalf("expected error clipping a length-K unitig")
	}
	if len(u.Sequence) != testK {
		t.Fatalf("unitig should be untouched after failed clip")
	}
}

// TestClipUnode clips a real boundary k-mer off a longer unitig.
func TestClipUnode(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGTGA")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	u := mut.BuildUnode([]byte("ACGTGA"), hs[0], hs[len(hs)-1], nil)
	clipped, err := mut.ClipUnode(hashing.LEFT, hs[0], hs[1])
	if err != nil {
		t.Fatalf("ClipUnode failed: %v", err)
	}
	if string(clipped.Sequence) != "CGTGA" {
		t.Fatalf("unexpected sequence after clip: %q", clipped.Sequence)
	}
	if clipped.LeftEnd != hs[1] {
		t.Fatalf("left end not updated after clip")
	}
	if _, ok := s.unitigEnds[hs[0]]; ok {
		t.Fatalf("old left end should no longer be indexed")
	}
	_ = u
}

// TestSplitUnode splits an interior k-mer out of a unitig and checks both
// halves, tag reassignment, and index bookkeeping.
func TestSplitUnode(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	seq := "ACGTGATTACA" // k=4: 8 overlapping k-mers, all distinct
	hs := insertAll(t, dbg, seq)
	s := newTestStore(dbg)
	mut := s.Begin()

	tagIdx := 4
	u := mut.BuildUnode([]byte(seq), hs[0], hs[len(hs)-1], []hashing.Hash{hs[tagIdx]})

	splitAt := 4 // remove hs[4] as the new decision k-mer
	left, right, err := mut.SplitUnode(u.ID, splitAt, hs[splitAt-1], hs[splitAt+1])
	if err != nil {
		t.Fatalf("SplitUnode failed: %v", err)
	}
	wantLeft := seq[:splitAt+testK-1]
	wantRight := seq[splitAt+1:]
	if string(left.Sequence) != wantLeft {
		t.Fatalf("unexpected left sequence: got %q want %q", left.Sequence, wantLeft)
	}
	if string(right.Sequence) != wantRight {
		t.Fatalf("unexpected right sequence: got %q want %q", right.Sequence, wantRight)
	}
	if left.RightEnd != hs[splitAt-1] || right.LeftEnd != hs[splitAt+1] {
		t.Fatalf("split boundary hashes not wired correctly")
	}
	// the tag at the removed k-mer must not survive on either half
	if left.hasTag(hs[tagIdx]) || right.hasTag(hs[tagIdx]) {
		t.Fatalf("tag at removed decision k-mer should be dropped by split")
	}
	mut.Unlock()
	if s.NumUnodes() != 2 {
		t.Fatalf("expected 2 unodes after split, got %d", s.NumUnodes())
	}
}

// TestSplitCircularAtK checks the open-question decision recorded in
// DESIGN.md: a circular unitig of length exactly K cannot be split.
func TestSplitCircularAtK(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGT")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	u := mut.BuildUnode([]byte("ACGT"), hs[0], hs[0], nil) // LeftEnd == RightEnd
	_, _, err := mut.SplitUnode(u.ID, 0, 0, 0)
	if err == nil {
		t.Fatalf("expected error splitting a length-K circular unitig")
	}
}

// TestMergeUnodes joins two distinct unitigs via a connecting span,
// checking the surviving NodeId, concatenated sequence, and tag union.
func TestMergeUnodes(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	leftHs := insertAll(t, dbg, "ACGTGA")
	rightHs := insertAll(t, dbg, "TTACAG")
	s := newTestStore(dbg)
	mut := s.Begin()

	left := mut.BuildUnode([]byte("ACGTGA"), leftHs[0], leftHs[len(leftHs)-1], []hashing.Hash{leftHs[1]})
	right := mut.BuildUnode([]byte("TTACAG"), rightHs[0], rightHs[len(rightHs)-1], []hashing.Hash{rightHs[1]})

	span := []byte("CC")
	merged, err := mut.MergeUnodes(span, leftHs[len(leftHs)-1], rightHs[0], nil)
	if err != nil {
		t.Fatalf("MergeUnodes failed: %v", err)
	}
	if merged.ID != left.ID {
		t.Fatalf("expected surviving NodeId to be the left unitig's")
	}
	want := "ACGTGA" + "CC" + "TTACAG"
	if string(merged.Sequence) != want {
		t.Fatalf("unexpected merged sequence: got %q want %q", merged.Sequence, want)
	}
	if !merged.hasTag(leftHs[1]) || !merged.hasTag(rightHs[1]) {
		t.Fatalf("expected merged tag set to union both halves")
	}
	rightID := right.ID
	mut.Unlock()
	if _, ok := s.QueryUnodeID(rightID); ok {
		t.Fatalf("right unitig should have been deleted after merge")
	}
	if s.NumUnodes() != 1 {
		t.Fatalf("expected 1 unode after merge, got %d", s.NumUnodes())
	}
}

// TestCircularize closes a unitig's two ends into a self loop.
func TestCircularize(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGTGA")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	u := mut.BuildUnode([]byte("ACGTGA"), hs[0], hs[len(hs)-1], nil)
	circ, err := mut.Circularize(u.ID, []byte("CG"))
	if err != nil {
		t.Fatalf("Circularize failed: %v", err)
	}
	if circ.LeftEnd != circ.RightEnd {
		t.Fatalf("expected LeftEnd == RightEnd after circularize")
	}
	if circ.Meta != CIRCULAR {
		t.Fatalf("expected CIRCULAR meta, got %v", circ.Meta)
	}
}

// TestDeleteUnodeAndDnode checks index cleanup and double-delete errors.
func TestDeleteUnodeAndDnode(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	hs := insertAll(t, dbg, "ACGTGA")
	s := newTestStore(dbg)
	mut := s.Begin()
	defer mut.Unlock()

	u := mut.BuildUnode([]byte("ACGTGA"), hs[0], hs[len(hs)-1], nil)
	if err := mut.DeleteUnode(u.ID); err != nil {
		t.Fatalf("DeleteUnode failed: %v", err)
	}
	if _, ok := s.unitigEnds[hs[0]]; ok {
		t.Fatalf("left end should be purged after delete")
	}
	if err := mut.DeleteUnode(u.ID); err == nil {
		t.Fatalf("expected error on double delete")
	}

	h := hashOf(t, "TTTT")
	mut.BuildDnode(h, []byte("TTTT"))
	if err := mut.DeleteDnode(h); err != nil {
		t.Fatalf("DeleteDnode failed: %v", err)
	}
	if err := mut.DeleteDnode(h); err == nil {
		t.Fatalf("expected error on double delete of dnode")
	}
}

// TestFindConnectedComponentsIdempotent guards against the sentinel bug
// where a second call could confuse a real 0-valued component ID with an
// unvisited marker.
func TestFindConnectedComponentsIdempotent(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	aHs := insertAll(t, dbg, "ACGTGA")
	bHs := insertAll(t, dbg, "TTACAG")
	s := newTestStore(dbg)
	mut := s.Begin()
	mut.BuildUnode([]byte("ACGTGA"), aHs[0], aHs[len(aHs)-1], nil)
	mut.BuildUnode([]byte("TTACAG"), bHs[0], bHs[len(bHs)-1], nil)
	mut.Unlock()

	first := s.FindConnectedComponents()
	second := s.FindConnectedComponents()
	if len(first) != len(second) {
		t.Fatalf("component count changed across idempotent calls: %d then %d", len(first), len(second))
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 disjoint components, got %d", len(first))
	}
	for id, members := range first {
		if len(members) != 1 {
			t.Fatalf("expected component %d to have exactly 1 member, got %d", id, len(members))
		}
	}
}
