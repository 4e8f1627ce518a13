package hashing

import "testing"

func complement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementTable[b]
	}
	return out
}

func TestForwardSeedLengthError(t *testing.T) {
	h := NewForwardHasher(5)
	if _, err := h.Seed([]byte("ACG")); err == nil {
		t.Fatalf("expected a length error for a sequence shorter than k")
	}
}

func TestForwardSeedBadAlphabet(t *testing.T) {
	h := NewForwardHasher(5)
	if _, err := h.Seed([]byte("ACGTX")); err == nil {
		t.Fatalf("expected a bad alphabet error")
	}
}

func TestForwardUninitializedShift(t *testing.T) {
	h := NewForwardHasher(5)
	if _, err := h.ShiftRight('A', 'C'); err == nil {
		t.Fatalf("expected an uninitialized error before seed")
	}
}

func TestForwardShiftMatchesReseed(t *testing.T) {
	k := 5
	seq := []byte("AAAAACCCCC")
	h := NewForwardHasher(k)
	if _, err := h.Seed(seq[:k]); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for i := 0; i+k < len(seq); i++ {
		out := seq[i]
		in := seq[i+k]
		got, err := h.ShiftRight(out, in)
		if err != nil {
			t.Fatalf("shift_right failed: %v", err)
		}
		fresh := NewForwardHasher(k)
		want, err := fresh.Seed(seq[i+1 : i+1+k])
		if err != nil {
			t.Fatalf("reseed failed: %v", err)
		}
		if got != want {
			t.Fatalf("shift_right at %d: got %d, want %d", i, got, want)
		}
	}
}

func TestForwardShiftLeftMatchesReseed(t *testing.T) {
	k := 5
	seq := []byte("AAAAACCCCC")
	start := len(seq) - k
	h := NewForwardHasher(k)
	if _, err := h.Seed(seq[start : start+k]); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for i := start - 1; i >= 0; i-- {
		in := seq[i]
		out := seq[i+k]
		got, err := h.ShiftLeft(in, out)
		if err != nil {
			t.Fatalf("shift_left failed: %v", err)
		}
		fresh := NewForwardHasher(k)
		want, err := fresh.Seed(seq[i : i+k])
		if err != nil {
			t.Fatalf("reseed failed: %v", err)
		}
		if got != want {
			t.Fatalf("shift_left at %d: got %d, want %d", i, got, want)
		}
	}
}

func TestForwardEnumerateRightMatchesShift(t *testing.T) {
	k := 5
	h := NewForwardHasher(k)
	if _, err := h.Seed([]byte("AAAAA")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	candidates, err := h.EnumerateRight()
	if err != nil {
		t.Fatalf("enumerate_right failed: %v", err)
	}
	bases := [4]byte{'A', 'C', 'G', 'T'}
	for i, b := range bases {
		probe := NewForwardHasher(k)
		probe.Seed([]byte("AAAAA"))
		want, err := probe.ShiftRight('A', b)
		if err != nil {
			t.Fatalf("shift_right failed: %v", err)
		}
		if candidates[i] != want {
			t.Fatalf("enumerate_right[%d]=%d, want %d", i, candidates[i], want)
		}
	}
	// enumerate must not mutate the window
	stillCurrent, _ := h.Current()
	probe := NewForwardHasher(k)
	probe.Seed([]byte("AAAAA"))
	original, _ := probe.Current()
	if stillCurrent != original {
		t.Fatalf("enumerate_right mutated hasher state")
	}
}

func TestCanonicalIdempotentUnderRevComp(t *testing.T) {
	k := 5
	fwd := []byte("ACGTACGTAC")
	rc := complement(fwd)

	h1 := NewCanonicalHasher(k)
	h1.Seed(fwd[:k])
	h2 := NewCanonicalHasher(k)
	h2.Seed(rc[len(rc)-k:])

	got1, _ := h1.Current()
	got2, _ := h2.Current()
	if got1 != got2 {
		t.Fatalf("canonical hash not idempotent under reverse-complement: %d vs %d", got1, got2)
	}
}

func TestCanonicalShiftMatchesReseed(t *testing.T) {
	k := 5
	seq := []byte("AAAAACCCCGTTTTT")
	h := NewCanonicalHasher(k)
	if _, err := h.Seed(seq[:k]); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for i := 0; i+k < len(seq); i++ {
		got, err := h.ShiftRight(seq[i], seq[i+k])
		if err != nil {
			t.Fatalf("shift_right failed: %v", err)
		}
		fresh := NewCanonicalHasher(k)
		want, _ := fresh.Seed(seq[i+1 : i+1+k])
		if got != want {
			t.Fatalf("canonical shift_right at %d: got %d want %d", i, got, want)
		}
	}
}

func TestLargeKWindow(t *testing.T) {
	k := 63
	seq := make([]byte, k+5)
	bases := []byte("ACGT")
	for i := range seq {
		seq[i] = bases[i%4]
	}
	h := NewForwardHasher(k)
	if _, err := h.Seed(seq[:k]); err != nil {
		t.Fatalf("seed failed for k=63: %v", err)
	}
	got, err := h.ShiftRight(seq[0], seq[k])
	if err != nil {
		t.Fatalf("shift_right failed for k=63: %v", err)
	}
	fresh := NewForwardHasher(k)
	want, _ := fresh.Seed(seq[1 : 1+k])
	if got != want {
		t.Fatalf("k=63 shift mismatch: got %d want %d", got, want)
	}
}
