package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(s *Set) []int {
	var out []int
	s.Iterate(func(i int) {
		out = append(out, i)
	})
	return out
}

func TestNew(t *testing.T) {
	s := New(320 / 16 * 256 / 16)
	assert.Equal(t, 320, s.Len())
	assert.Len(t, s.Words(), 10)
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Count())

	odd := New(33)
	assert.Len(t, odd.Words(), 2)
}

func TestInsertIterateClear(t *testing.T) {
	s := New(320)
	require.True(t, s.Empty())

	for _, i := range []int{2, 40, 5, 2} {
		s.Insert(i)
	}

	assert.Equal(t, []int{2, 5, 40}, collect(s))
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.IsSet(40))
	assert.False(t, s.IsSet(41))

	s.Clear()
	assert.Empty(t, collect(s))
	assert.True(t, s.Empty())
}

func TestMSBFirstLayout(t *testing.T) {
	s := New(64)
	s.Insert(0)
	s.Insert(31)
	s.Insert(32)

	words := s.Words()
	assert.Equal(t, uint32(0x80000001), words[0])
	assert.Equal(t, uint32(0x80000000), words[1])
}

func TestIterateEmptyIsNoop(t *testing.T) {
	s := New(100)
	calls := 0
	s.Iterate(func(int) { calls++ })
	assert.Zero(t, calls)
}

func TestIterateAscendingAcrossWords(t *testing.T) {
	s := New(200)
	want := []int{0, 1, 31, 32, 63, 64, 130, 199}
	for i := len(want) - 1; i >= 0; i-- {
		s.Insert(want[i])
	}
	assert.Equal(t, want, collect(s))
}

func TestOutOfRangePanics(t *testing.T) {
	s := New(10)
	assert.Panics(t, func() { s.Insert(10) })
	assert.Panics(t, func() { s.Insert(-1) })
	assert.Panics(t, func() { s.IsSet(12) })
}

func TestWordsIsCopy(t *testing.T) {
	s := New(32)
	w := s.Words()
	w[0] = 0xffffffff
	assert.True(t, s.Empty())
}

func TestTileIndex(t *testing.T) {
	assert.Equal(t, 0, TileIndex(0, 0, 20))
	assert.Equal(t, 23, TileIndex(3, 1, 20))
	assert.Equal(t, 319, TileIndex(19, 15, 20))
}
