package hashing

import (
	"fmt"

	ntHash "github.com/will-rowe/ntHash"
)

// NtHasher is a Hasher backed by the teacher's rolling hash dependency,
// github.com/will-rowe/ntHash, the same library used for k-mer hashing in
// src/minhash/kmv.go (`ntHash.New(&sequence, k)`, `.Hash(CANONICAL)`). ntHash
// only exposes a whole-window hashing entry point rather than a standalone
// seed/shift pair, so NtHasher keeps its own byte window (like ForwardHasher
// and CanonicalHasher) and re-derives the hash from ntHash on every Seed or
// shift - this forgoes ntHash's internal O(1) rolling update, but it is the
// only public surface kmv.go demonstrates, and it lets a construction select
// a production rolling-hash backend without the core depending on its
// internal representation.
type NtHasher struct {
	k         int
	canonical bool
	buf       []byte
	seeded    bool
}

// NewNtHasher constructs an NtHasher for k-mers of length k. If canonical is
// true, hashes are strand-agnostic (matches minhash.CANONICAL usage).
func NewNtHasher(k int, canonical bool) *NtHasher {
	return &NtHasher{k: k, canonical: canonical}
}

func (h *NtHasher) K() int { return h.k }

func (h *NtHasher) hashWindow() (Hash, error) {
	seq := append([]byte(nil), h.buf...)
	hasher, err := ntHash.New(&seq, uint(h.k))
	if err != nil {
		return 0, fmt.Errorf("hashing: ntHash init failed: %w", err)
	}
	for hv := range hasher.Hash(h.canonical) {
		return hv, nil
	}
	return 0, fmt.Errorf("hashing: ntHash produced no value for a %d-symbol window", len(h.buf))
}

func (h *NtHasher) checkWindow(window []byte) error {
	for i, b := range window {
		if !validSymbol(b) {
			return fmt.Errorf("%w: byte %q at position %d", ErrBadAlphabet, b, i)
		}
	}
	return nil
}

// Seed implements Hasher.
func (h *NtHasher) Seed(seq []byte) (Hash, error) {
	if len(seq) < h.k {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrLengthError, len(seq), h.k)
	}
	window := seq[:h.k]
	if err := h.checkWindow(window); err != nil {
		return 0, err
	}
	h.buf = append(h.buf[:0], window...)
	h.seeded = true
	return h.hashWindow()
}

// ShiftRight implements Hasher.
func (h *NtHasher) ShiftRight(out, in byte) (Hash, error) {
	if !h.seeded {
		return 0, ErrUninitialized
	}
	if h.buf[0] != out {
		return 0, fmt.Errorf("hashing: shift_right out symbol %q does not match current window head %q", out, h.buf[0])
	}
	if !validSymbol(in) {
		return 0, fmt.Errorf("%w: byte %q", ErrBadAlphabet, in)
	}
	h.buf = append(h.buf[1:], in)
	return h.hashWindow()
}

// ShiftLeft implements Hasher.
func (h *NtHasher) ShiftLeft(in, out byte) (Hash, error) {
	if !h.seeded {
		return 0, ErrUninitialized
	}
	if h.buf[len(h.buf)-1] != out {
		return 0, fmt.Errorf("hashing: shift_left out symbol %q does not match current window tail %q", out, h.buf[len(h.buf)-1])
	}
	if !validSymbol(in) {
		return 0, fmt.Errorf("%w: byte %q", ErrBadAlphabet, in)
	}
	newBuf := make([]byte, 0, len(h.buf))
	newBuf = append(newBuf, in)
	newBuf = append(newBuf, h.buf[:len(h.buf)-1]...)
	h.buf = newBuf
	return h.hashWindow()
}

// EnumerateLeft implements Hasher.
func (h *NtHasher) EnumerateLeft() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	bases := [4]byte{'A', 'C', 'G', 'T'}
	for i, b := range bases {
		candidate := append([]byte{b}, h.buf[:len(h.buf)-1]...)
		saved := h.buf
		h.buf = candidate
		hv, err := h.hashWindow()
		h.buf = saved
		if err != nil {
			return [4]Hash{}, err
		}
		out[i] = hv
	}
	return out, nil
}

// EnumerateRight implements Hasher.
func (h *NtHasher) EnumerateRight() ([4]Hash, error) {
	if !h.seeded {
		return [4]Hash{}, ErrUninitialized
	}
	var out [4]Hash
	bases := [4]byte{'A', 'C', 'G', 'T'}
	for i, b := range bases {
		candidate := append(append([]byte{}, h.buf[1:]...), b)
		saved := h.buf
		h.buf = candidate
		hv, err := h.hashWindow()
		h.buf = saved
		if err != nil {
			return [4]Hash{}, err
		}
		out[i] = hv
	}
	return out, nil
}

// Current implements Hasher.
func (h *NtHasher) Current() (Hash, bool) {
	if !h.seeded {
		return 0, false
	}
	hv, err := h.hashWindow()
	if err != nil {
		return 0, false
	}
	return hv, true
}
