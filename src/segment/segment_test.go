package segment

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

// TestFindShortReadIsNoOp covers the boundary case from spec.md §8: a read
// shorter than K must not error and must not touch the store.
func TestFindShortReadIsNoOp(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	segs, err := Find([]byte("ACG"), newHasher, dbg, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segs != nil {
		t.Fatalf("expected nil segments for a sub-K read, got %v", segs)
	}
	if dbg.NUnique() != 0 {
		t.Fatalf("a sub-K read must not insert anything into the store")
	}
}

// TestFindRejectsBadAlphabet checks that an invalid base is reported as an
// error before any insertion happens.
func TestFindRejectsBadAlphabet(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	if _, err := Find([]byte("ACGTN"), newHasher, dbg, 4); err == nil {
		t.Fatalf("expected an error for a non-ACGT base")
	}
	if dbg.NUnique() != 0 {
		t.Fatalf("a rejected read must not insert anything into the store")
	}
}

// TestFindSingleUnitigSlice drives a first read into an empty store: with
// no prior k-mers present nothing can branch, so the whole read must come
// back as one UnitigSlice bracketed by the two boundary Null sentinels.
func TestFindSingleUnitigSlice(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	seq := "ACGTACT" // K=4: ACGT, CGTA, GTAC, TACT - all distinct, no branch

	segs, err := Find([]byte(seq), newHasher, dbg, 4)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected [Null, UnitigSlice, Null], got %d segments: %+v", len(segs), segs)
	}
	if !segs[0].IsNull() || !segs[2].IsNull() {
		t.Fatalf("expected leading and trailing Null sentinels, got %+v", segs)
	}
	got := segs[1]
	if got.Kind != UnitigSlice {
		t.Fatalf("expected UnitigSlice, got %v", got.Kind)
	}
	if string(got.Sequence) != seq {
		t.Fatalf("unexpected slice sequence: got %q want %q", got.Sequence, seq)
	}
	if got.StartPos != 0 || got.Length != 4 {
		t.Fatalf("unexpected StartPos/Length: got (%d,%d)", got.StartPos, got.Length)
	}
	if got.LeftAnchor != hashOf(t, "ACGT") || got.RightAnchor != hashOf(t, "TACT") {
		t.Fatalf("unexpected anchors")
	}
	// no unique dBG neighbor exists outside the read itself, so both
	// flanks fall back to their own anchor.
	if got.LeftFlank != got.LeftAnchor || got.RightFlank != got.RightAnchor {
		t.Fatalf("expected flanks to fall back to their anchors at an isolated read boundary")
	}
}

// TestFindTagSampling checks that interior k-mers are sampled at the given
// density, skipping both boundary k-mers.
func TestFindTagSampling(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	seq := "ACGTGATTAC" // K=4, kmers: ACGT CGTG GTGA TGAT GATT ATTA TTAC - all distinct, no branch

	segs, err := Find([]byte(seq), newHasher, dbg, 2)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(segs) != 3 || segs[1].Kind != UnitigSlice {
		t.Fatalf("expected a single UnitigSlice, got %+v", segs)
	}
	want := []hashing.Hash{hashOf(t, "GTGA"), hashOf(t, "GATT")}
	got := segs[1].Tags
	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag %d mismatch: got %v want %v", i, got[i], want[i])
		}
	}
}

// TestFindDecisionKmer constructs a genuine branch ahead of the read (a
// second right-extension of ACGT already present in the store) so that the
// read's own first k-mer classifies as a DecisionKmer segment rather than
// folding into a unitig slice.
func TestFindDecisionKmer(t *testing.T) {
	dbg := dbgstore.NewExactSet()
	dbg.InsertAndTest(hashOf(t, "CGTA")) // pre-existing alternate branch of ACGT

	seq := "ACGTT" // kmers: ACGT (branches: CGTA pre-existing, CGTT this read), CGTT
	segs, err := Find([]byte(seq), newHasher, dbg, 4)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("expected [Null, Decision, UnitigSlice, Null], got %d: %+v", len(segs), segs)
	}
	if !segs[0].IsNull() {
		t.Fatalf("expected leading Null sentinel")
	}
	dec := segs[1]
	if dec.Kind != DecisionKmer {
		t.Fatalf("expected DecisionKmer, got %v", dec.Kind)
	}
	if string(dec.Sequence) != "ACGT" {
		t.Fatalf("unexpected decision k-mer sequence: %q", dec.Sequence)
	}
	if dec.RightFlank != hashOf(t, "CGTT") {
		t.Fatalf("expected decision segment's right flank to be the next read k-mer")
	}
	slice := segs[2]
	if slice.Kind != UnitigSlice || string(slice.Sequence) != "CGTT" {
		t.Fatalf("expected trailing UnitigSlice CGTT, got %+v", slice)
	}
	if !segs[3].IsNull() {
		t.Fatalf("expected trailing Null sentinel")
	}
}
