package hashing

import "fmt"

// ForwardHasher hashes k-mers on a single strand only (no canonicalization).
// Grounded on src/minhash/khf.go's `kmers[0]` forward rolling encoding.
type ForwardHasher struct {
	k      int
	word   kmerWord
	buf    []byte // raw bases currently in the window, for out-symbol validation
	seeded bool
}

// NewForwardHasher constructs a ForwardHasher for k-mers of length k.
func NewForwardHasher(k int) *ForwardHasher {
	return &ForwardHasher{k: k, word: newKmerWord(k)}
}

// K implements Hasher.
func (h *ForwardHasher) K() int { return h.k }

// Seed implements Hasher.
func (h *ForwardHasher) Seed(seq []byte) (Hash, error) {
	if len(seq) < h.k {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrLengthError, len(seq), h.k)
	}
	window := seq[:h.k]
	codes := make([]uint8, h.k)
	for i, b := range window {
		c := seqNT4table[b]
		if c > 3 {
			return 0, fmt.Errorf("%w: byte %q at position %d", ErrBadAlphabet, b, i)
		}
		codes[i] = c
	}
	h.word.load(codes)
	h.buf = append(h.buf[:0], window...)
	h.seeded = true
	return mix(h.word.hi, h.word.lo), nil
}

// ShiftRight implements Hasher.
func (h *ForwardHasher) ShiftRight(out, in byte) (Hash, error) {
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
	h.word.pushRight(c)
	h.buf = append(h.buf[1:], in)
	return mix(h.word.hi, h.word.lo), nil
}

// ShiftLeft implements Hasher.
func (h *ForwardHasher) ShiftLeft(in, out byte) (Hash, error) {
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
	h.word.pushLeft(c)
	newBuf := make([]byte, 0, len(h.buf))
	newBuf = append(newBuf, in)
	newBuf = append(newBuf, h.buf[:len(h.buf)-1]...)
	h.buf = newBuf
	return mix(h.word.hi, h.word.lo), nil
}

// EnumerateLeft implements Hasher.
func (h *ForwardHasher) EnumerateLeft() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	for c := uint8(0); c < 4; c++ {
		candidate := h.word
		candidate.pushLeft(c)
		out[c] = mix(candidate.hi, candidate.lo)
	}
	return out, nil
}

// EnumerateRight implements Hasher.
func (h *ForwardHasher) EnumerateRight() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	for c := uint8(0); c < 4; c++ {
		candidate := h.word
		candidate.pushRight(c)
		out[c] = mix(candidate.hi, candidate.lo)
	}
	return out, nil
}

// Current implements Hasher.
func (h *ForwardHasher) Current() (Hash, bool) {
	if !h.seeded {
		return 0, false
	}
	return mix(h.word.hi, h.word.lo), true
}
