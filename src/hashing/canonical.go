package hashing

import "fmt"

// CanonicalHasher hashes k-mers strand-agnostically: the reported Hash is
// always min(hash(forward), hash(reverse-complement)), so a sequence and its
// reverse-complement hash identically. Grounded on src/minhash/khf.go's
// `kmers[1]` reverse-complement companion to the forward window, and on
// src/minhash/minhash.go's `CANONICAL` convention.
type CanonicalHasher struct {
	k      int
	fwd    kmerWord
	rev    kmerWord // reverse-complement companion, kept in lockstep with fwd
	buf    []byte
	seeded bool
}

// NewCanonicalHasher constructs a CanonicalHasher for k-mers of length k.
func NewCanonicalHasher(k int) *CanonicalHasher {
	return &CanonicalHasher{k: k, fwd: newKmerWord(k), rev: newKmerWord(k)}
}

// K implements Hasher.
func (h *CanonicalHasher) K() int { return h.k }

func (h *CanonicalHasher) canonicalHash() Hash {
	fh := mix(h.fwd.hi, h.fwd.lo)
	rh := mix(h.rev.hi, h.rev.lo)
	if rh < fh {
		return rh
	}
	return fh
}

// Seed implements Hasher.
func (h *CanonicalHasher) Seed(seq []byte) (Hash, error) {
	if len(seq) < h.k {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrLengthError, len(seq), h.k)
	}
	window := seq[:h.k]
	fwdCodes := make([]uint8, h.k)
	revCodes := make([]uint8, h.k)
	for i, b := range window {
		c := seqNT4table[b]
		if c > 3 {
			return 0, fmt.Errorf("%w: byte %q at position %d", ErrBadAlphabet, b, i)
		}
		fwdCodes[i] = c
		// revCodes holds the reverse-complement k-mer read left to right:
		// the complement of the last forward base comes first.
		revCodes[h.k-1-i] = 3 - c
	}
	h.fwd.load(fwdCodes)
	h.rev.load(revCodes)
	h.buf = append(h.buf[:0], window...)
	h.seeded = true
	return h.canonicalHash(), nil
}

// ShiftRight implements Hasher.
func (h *CanonicalHasher) ShiftRight(out, in byte) (Hash, error) {
	if !h.seeded {
		return 0, ErrUninitialized
	}
	if h.buf[0] != out {
		return 0, fmt.Errorf("hashing: shift_right out symbol %q does not match current window head %q", out, h.buf[0])
	}
	c := seqNT4table[in]
	if c > 3 {
		return 0, fmt.Errorf("%w: byte %q", ErrBadAlphabet, in)
	}
	h.fwd.pushRight(c)
	h.rev.pushLeft(3 - c)
	h.buf = append(h.buf[1:], in)
	return h.canonicalHash(), nil
}

// ShiftLeft implements Hasher.
func (h *CanonicalHasher) ShiftLeft(in, out byte) (Hash, error) {
	if !h.seeded {
		return 0, ErrUninitialized
	}
	if h.buf[len(h.buf)-1] != out {
		return 0, fmt.Errorf("hashing: shift_left out symbol %q does not match current window tail %q", out, h.buf[len(h.buf)-1])
	}
	c := seqNT4table[in]
	if c > 3 {
		return 0, fmt.Errorf("%w: byte %q", ErrBadAlphabet, in)
	}
	h.fwd.pushLeft(c)
	h.rev.pushRight(3 - c)
	newBuf := make([]byte, 0, len(h.buf))
	newBuf = append(newBuf, in)
	newBuf = append(newBuf, h.buf[:len(h.buf)-1]...)
	h.buf = newBuf
	return h.canonicalHash(), nil
}

// EnumerateLeft implements Hasher.
func (h *CanonicalHasher) EnumerateLeft() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	for c := uint8(0); c < 4; c++ {
		fwdCandidate := h.fwd
		fwdCandidate.pushLeft(c)
		revCandidate := h.rev
		revCandidate.pushRight(3 - c)
		fh := mix(fwdCandidate.hi, fwdCandidate.lo)
		rh := mix(revCandidate.hi, revCandidate.lo)
		if rh < fh {
			out[c] = rh
		} else {
			out[c] = fh
		}
	}
	return out, nil
}

// EnumerateRight implements Hasher.
func (h *CanonicalHasher) EnumerateRight() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	for c := uint8(0); c < 4; c++ {
		fwdCandidate := h.fwd
		fwdCandidate.pushRight(c)
		revCandidate := h.rev
		revCandidate.pushLeft(3 - c)
		fh := mix(fwdCandidate.hi, fwdCandidate.lo)
		rh := mix(revCandidate.hi, revCandidate.lo)
		if rh < fh {
			out[c] = rh
		} else {
			out[c] = fh
		}
	}
	return out, nil
}

// Current implements Hasher.
func (h *CanonicalHasher) Current() (Hash, bool) {
	if !h.seeded {
		return 0, false
	}
	return h.canonicalHash(), true
}
