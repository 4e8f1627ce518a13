package compactor

import (
	"testing"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
)

const testK = 5

func newTestHasher() hashing.Hasher { return hashing.NewForwardHasher(testK) }

func newTestCompactor() (*Compactor, *cdbg.Store) {
	dbg := dbgstore.NewExactSet()
	store := cdbg.NewStore(testK, 4, newTestHasher, dbg)
	return New(store, dbg, newTestHasher, 4), store
}

// TestUpdateSequenceFirstRead ingests a single, non-repetitive read into an
// empty graph. With no prior k-mers present, nothing can branch, so the
// whole read must land as exactly one unitig with no decision nodes and no
// splitting, matching the spec's "first read" base case.
func TestUpdateSequenceFirstRead(t *testing.T) {
	c, store := newTestCompactor()
	seq := "ACGTGATTACAGCC" // 14 bases, k=5: no repeated 5-mer anywhere in it

	if err := c.UpdateSequence([]byte(seq)); err != nil {
		t.Fatalf("UpdateSequence failed: %v", err)
	}
	if store.NumDnodes() != 0 {
		t.Fatalf("expected 0 decision nodes, got %d", store.NumDnodes())
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected 1 unitig, got %d", store.NumUnodes())
	}
	got := store.Unodes()[0]
	if string(got.Sequence) != seq {
		t.Fatalf("unexpected unitig sequence: got %q want %q", got.Sequence, seq)
	}
}

// TestUpdateSequenceTwoDisjointReads ingests two reads that share no k-mer,
// which must produce two separate unitigs in two separate components.
func TestUpdateSequenceTwoDisjointReads(t *testing.T) {
	c, store := newTestCompactor()
	first := "ACGTGATTACA"
	second := "GGCCTTGAAGC"

	if err := c.UpdateSequence([]byte(first)); err != nil {
		t.Fatalf("first UpdateSequence failed: %v", err)
	}
	if err := c.UpdateSequence([]byte(second)); err != nil {
		t.Fatalf("second UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 2 {
		t.Fatalf("expected 2 unitigs, got %d", store.NumUnodes())
	}
	if store.NumDnodes() != 0 {
		t.Fatalf("expected 0 decision nodes, got %d", store.NumDnodes())
	}
	if comps := store.FindConnectedComponents(); len(comps) != 2 {
		t.Fatalf("expected 2 connected components, got %d", len(comps))
	}
}

// TestUpdateSequenceRejectsShortRead mirrors segment.Find's no-op contract
// for a read shorter than K: it must not error and must not mutate the
// graph.
func TestUpdateSequenceRejectsShortRead(t *testing.T) {
	c, store := newTestCompactor()
	if err := c.UpdateSequence([]byte("ACGT")); err != nil {
		t.Fatalf("short read should be a silent no-op, got error: %v", err)
	}
	if store.NumUnodes() != 0 {
		t.Fatalf("expected no unitigs created from a sub-K read")
	}
}

// TestUpdateSequenceRejectsBadAlphabet checks that an invalid base is
// reported as an error and leaves the graph untouched.
func TestUpdateSequenceRejectsBadAlphabet(t *testing.T) {
	c, store := newTestCompactor()
	if err := c.UpdateSequence([]byte("ACGTN")); err == nil {
		t.Fatalf("expected an error for a non-ACGT base")
	}
	if store.NumUnodes() != 0 {
		t.Fatalf("a rejected read must not mutate the graph")
	}
}

// TestUpdateSequenceSingleKmerIsland ingests a lone K-length read: it must
// land as a single unitig with no external connections on either side, which
// recomputeMeta reports as TRIVIAL rather than ISLAND.
func TestUpdateSequenceSingleKmerIsland(t *testing.T) {
	c, store := newTestCompactor()
	seq := "ACGTC" // exactly K=5, no homopolymer run

	if err := c.UpdateSequence([]byte(seq)); err != nil {
		t.Fatalf("UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected 1 unitig, got %d", store.NumUnodes())
	}
	got := store.Unodes()[0]
	if string(got.Sequence) != seq {
		t.Fatalf("unexpected unitig sequence: got %q want %q", got.Sequence, seq)
	}
	if got.Meta != cdbg.TRIVIAL {
		t.Fatalf("expected TRIVIAL meta for an unconnected K-length unitig, got %v", got.Meta)
	}
}

// TestUpdateSequenceInducedSplit drives the classic induction case: a second
// read shares a K-1 prefix with an existing unitig's interior k-mer but
// diverges at the next base, so that shared k-mer gains a second out-edge
// and must be split out into its own DecisionNode (spec.md §8 seed scenario
// 2). tagDensity=4 (newTestCompactor's default) happens to sample the
// decision position, so it is reachable via UnitigAtTag in Phase 1 without
// needing a denser store.
func TestUpdateSequenceInducedSplit(t *testing.T) {
	c, store := newTestCompactor()
	first := "ACGTGATCAG"  // K=5 kmers: ACGTG CGTGA GTGAT TGATC GATCA ATCAG
	second := "ACGTGATCAT" // shares everything but the final base: GATCA now branches to ATCAG (old) and ATCAT (new)

	if err := c.UpdateSequence([]byte(first)); err != nil {
		t.Fatalf("first UpdateSequence failed: %v", err)
	}
	if err := c.UpdateSequence([]byte(second)); err != nil {
		t.Fatalf("second UpdateSequence failed: %v", err)
	}
	if store.NumDnodes() != 1 {
		t.Fatalf("expected 1 decision node for the induced branch, got %d", store.NumDnodes())
	}
	if store.NumUnodes() != 3 {
		t.Fatalf("expected a left unitig plus one new unitig per branch, got %d", store.NumUnodes())
	}
	want := map[string]bool{"ACGTGATC": true, "ATCAG": true, "ATCAT": true}
	for _, u := range store.Unodes() {
		if !want[string(u.Sequence)] {
			t.Fatalf("unexpected unitig sequence %q", u.Sequence)
		}
		delete(want, string(u.Sequence))
	}
	if len(want) != 0 {
		t.Fatalf("missing expected unitig sequences: %v", want)
	}
}

func newCanonicalHasher() hashing.Hasher { return hashing.NewCanonicalHasher(testK) }

func newCanonicalCompactor() (*Compactor, *cdbg.Store) {
	dbg := dbgstore.NewExactSet()
	store := cdbg.NewStore(testK, 4, newCanonicalHasher, dbg)
	return New(store, dbg, newCanonicalHasher, 4), store
}

// TestCanonicalMirrorRead resolves the strand-orientation open question from
// spec.md §8 seed scenario 4: under a canonical hasher, ingesting a read and
// then its exact reverse complement must collapse onto the very same
// unitig rather than building a mirrored second one, since every k-mer the
// second read contributes is already present under its canonical identity.
func TestCanonicalMirrorRead(t *testing.T) {
	c, store := newCanonicalCompactor()
	forward := "ACGTGATGAG"
	revcomp := "CTCATCACGT"

	if err := c.UpdateSequence([]byte(forward)); err != nil {
		t.Fatalf("forward UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected 1 unitig after the forward read, got %d", store.NumUnodes())
	}

	if err := c.UpdateSequence([]byte(revcomp)); err != nil {
		t.Fatalf("revcomp UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected the mirrored read to collapse onto the same unitig, got %d unitigs", store.NumUnodes())
	}
	if store.NumDnodes() != 0 {
		t.Fatalf("expected no decision nodes, got %d", store.NumDnodes())
	}
}

// TestUpdateSequenceStreamingExtend covers spec.md §8 seed scenario 5: a
// second read overlapping an existing unitig's right end by exactly K-1
// bases must extend that unitig in place - same NodeID, longer sequence -
// rather than building a new one.
func TestUpdateSequenceStreamingExtend(t *testing.T) {
	c, store := newTestCompactor()
	first := "ACGTGATCAG"
	if err := c.UpdateSequence([]byte(first)); err != nil {
		t.Fatalf("first UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected 1 unitig, got %d", store.NumUnodes())
	}
	beforeID := store.Unodes()[0].ID

	second := "TCAGCTT" // overlaps the unitig's right end (ATCAG) by K-1=4 bases, extends 3
	if err := c.UpdateSequence([]byte(second)); err != nil {
		t.Fatalf("second UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected the extend to stay a single unitig, got %d", store.NumUnodes())
	}
	after, ok := store.QueryUnodeID(beforeID)
	if !ok {
		t.Fatalf("expected the original NodeID to survive the extend")
	}
	want := "ACGTGATCAGCTT"
	if string(after.Sequence) != want {
		t.Fatalf("unexpected extended sequence: got %q want %q", after.Sequence, want)
	}
	if store.NumDnodes() != 0 {
		t.Fatalf("expected no decision nodes, got %d", store.NumDnodes())
	}
}

func newDenseTaggedCompactor() (*Compactor, *cdbg.Store) {
	dbg := dbgstore.NewExactSet()
	store := cdbg.NewStore(testK, 1, newTestHasher, dbg)
	return New(store, dbg, newTestHasher, 1), store
}

// TestUpdateSequenceStreamingCircularize drives spec.md §8 seed scenario 6
// end to end: a read that bridges a unitig's right end back to its own
// left end closes it into a loop, and a later read that induces a decision
// k-mer interior to that loop forces a split_circular linearization - the
// loop's NodeID survives, unlike a two-child split.
func TestUpdateSequenceStreamingCircularize(t *testing.T) {
	c, store := newDenseTaggedCompactor()

	linear := "ACGTGACTA" // K=5 kmers: ACGTG CGTGA GTGAC TGACT GACTA, all distinct
	if err := c.UpdateSequence([]byte(linear)); err != nil {
		t.Fatalf("linear UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected 1 unitig, got %d", store.NumUnodes())
	}
	loopID := store.Unodes()[0].ID

	bridge := "ACTAACGT" // last 4 bases of linear + first 4 bases of linear: closes the loop with no extra span
	if err := c.UpdateSequence([]byte(bridge)); err != nil {
		t.Fatalf("bridge UpdateSequence failed: %v", err)
	}
	if store.NumUnodes() != 1 {
		t.Fatalf("expected the bridge to close the loop in place, got %d unitigs", store.NumUnodes())
	}
	looped, ok := store.QueryUnodeID(loopID)
	if !ok {
		t.Fatalf("expected the original NodeID to survive circularization")
	}
	if looped.Meta != cdbg.CIRCULAR {
		t.Fatalf("expected CIRCULAR meta after the bridge, got %v", looped.Meta)
	}
	if string(looped.Sequence) != linear {
		t.Fatalf("expected an empty span to leave the sequence unchanged, got %q", looped.Sequence)
	}

	branch := "GTGACG" // GTGAC (interior of the loop) now branches to TGACT (existing) and TGACG (new)
	if err := c.UpdateSequence([]byte(branch)); err != nil {
		t.Fatalf("branch UpdateSequence failed: %v", err)
	}
	if store.NumDnodes() != 1 {
		t.Fatalf("expected 1 decision node from the induced branch, got %d", store.NumDnodes())
	}
	if store.NumUnodes() != 2 {
		t.Fatalf("expected 2 unitigs after the split_circular, got %d", store.NumUnodes())
	}
	linearized, ok := store.QueryUnodeID(loopID)
	if !ok {
		t.Fatalf("expected the loop's NodeID to survive linearization")
	}
	if linearized.Meta == cdbg.CIRCULAR {
		t.Fatalf("expected the loop to linearize, not stay circular")
	}
	if string(linearized.Sequence) != "TAACGTGA" {
		t.Fatalf("unexpected linearized sequence: got %q", linearized.Sequence)
	}
}
