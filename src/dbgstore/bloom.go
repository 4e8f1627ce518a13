package dbgstore

import (
	"sync"

	"github.com/will-rowe/cdbgstream/src/hashing"
)

// bitMask is precomputed exactly like src/minhash/bloom.go's `mask [64]uint64`.
var bitMask [64]uint64

func init() {
	bitMask[0] = 1
	for i := 1; i < len(bitMask); i++ {
		bitMask[i] = 2 * bitMask[i-1]
	}
}

// BloomStore is a probabilistic, space-efficient dBG store: a single bitset
// addressed by `hash % size`, grounded directly on src/minhash/bloom.go's
// BloomFilter (Add/Check over a []uint64 sketch guarded by a RWMutex).
// Because membership is a single bit, Count never distinguishes 1 occurrence
// from many - it returns 1 if present, 0 otherwise, which the spec allows
// ("optional for probabilistic backends").
type BloomStore struct {
	mu      sync.RWMutex
	size    uint64
	sketch  []uint64
	nInsert uint64
}

// NewBloomStore constructs a BloomStore of 2^log2Bits bits of storage (at
// least one 64-bit word), grounded on bloom.go's NewBloomFilter
// size-rounding convention.
func NewBloomStore(log2Bits int) *BloomStore {
	words := 1
	if log2Bits > 6 {
		words = 1 << uint(log2Bits-6)
	}
	return &BloomStore{
		size:   64 * uint64(words),
		sketch: make([]uint64, words),
	}
}

func (b *BloomStore) cellOffset(h hashing.Hash) (uint64, uint64) {
	slot := h % b.size
	return slot / 64, slot % 64
}

// InsertAndTest implements Store.
func (b *BloomStore) InsertAndTest(h hashing.Hash) bool {
	c, o := b.cellOffset(h)
	b.mu.Lock()
	defer b.mu.Unlock()
	wasSet := b.sketch[c]&bitMask[o] > 0
	b.sketch[c] |= bitMask[o]
	if !wasSet {
		b.nInsert++
	}
	return !wasSet
}

// Contains implements Store.
func (b *BloomStore) Contains(h hashing.Hash) bool {
	c, o := b.cellOffset(h)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sketch[c]&bitMask[o] > 0
}

// Count implements Store.
func (b *BloomStore) Count(h hashing.Hash) uint32 {
	if b.Contains(h) {
		return 1
	}
	return 0
}

// NUnique implements Store. This is the number of successful inserts
// observed by this store instance, not a cardinality estimate over set
// bits - a true estimator would need a separate counting structure which is
// out of scope for a bare bitset backend.
func (b *BloomStore) NUnique() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nInsert
}

// EstimatedFP implements Store: the classic single-hash-function bitset
// fill-ratio estimate (fraction of bits set), grounded on the fill-ratio
// reasoning behind bloom.go's sizing.
func (b *BloomStore) EstimatedFP() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	set := 0
	for _, word := range b.sketch {
		set += popcount(word)
	}
	return float64(set) / float64(b.size)
}

func popcount(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}
