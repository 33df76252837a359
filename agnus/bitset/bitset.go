// Package bitset implements the dirty tile tracker used by the display
// buffers: a fixed size bit array indexed by tileY*tilesPerRow+tileX.
package bitset

import (
	"fmt"
	"math/bits"
)

const wordSize = 32

// Set is a fixed size bit array. Bits are stored MSB-first inside each
// 32-bit word, so bit 0 is the top bit of word 0.
type Set struct {
	words []uint32
	n     int
}

// New returns a cleared set with room for n bits.
func New(n int) *Set {
	if n < 0 {
		panic(fmt.Sprintf("bitset: negative size %d", n))
	}
	return &Set{
		words: make([]uint32, (n+wordSize-1)/wordSize),
		n:     n,
	}
}

func mask(i int) uint32 {
	return 1 << (wordSize - 1 - (i & (wordSize - 1)))
}

func (s *Set) check(i int) {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitset: index %d out of range [0, %d)", i, s.n))
	}
}

// Len returns the number of bits the set can hold.
func (s *Set) Len() int {
	return s.n
}

// Clear resets every bit.
func (s *Set) Clear() {
	clear(s.words)
}

// Insert sets bit i. It panics if i is outside the set, callers clip
// coordinates to the tile grid before inserting.
func (s *Set) Insert(i int) {
	s.check(i)
	s.words[i/wordSize] |= mask(i)
}

// IsSet reports whether bit i is set.
func (s *Set) IsSet(i int) bool {
	s.check(i)
	return s.words[i/wordSize]&mask(i) != 0
}

// Empty reports whether no bit is set.
func (s *Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount32(w)
	}
	return total
}

// Iterate calls fn with the index of every set bit in ascending order.
// Zero words are skipped without inspecting their bits.
func (s *Set) Iterate(fn func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			lz := bits.LeadingZeros32(w)
			fn(wi*wordSize + lz)
			w &^= 1 << (wordSize - 1 - lz)
		}
	}
}

// Words returns a copy of the backing words.
func (s *Set) Words() []uint32 {
	out := make([]uint32, len(s.words))
	copy(out, s.words)
	return out
}

// TileIndex returns the bit index of tile (tx, ty) in a grid perRow tiles wide.
func TileIndex(tx, ty, perRow int) int {
	return ty*perRow + tx
}
