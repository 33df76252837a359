package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallPools(t *testing.T) *Pools {
	t.Helper()
	p, err := New(Config{
		GeneralPoolSize:  64,
		GeneralMaxBlocks: 4,
		ChipPoolSize:     256,
		ChipMaxBlocks:    3,
	})
	require.NoError(t, err)
	return p
}

var _ Allocator = (*Pools)(nil)

func TestChipAllocationsAreConsecutive(t *testing.T) {
	p := smallPools(t)

	a, err := p.AllocateBlock(Chip, 40)
	require.NoError(t, err)
	b, err := p.AllocateBlock(Chip, 41)
	require.NoError(t, err)

	assert.Equal(t, uint32(ChipBase), p.BlockAddress(a))
	assert.Equal(t, uint32(ChipBase+40), p.BlockAddress(b))
	assert.Len(t, p.Bytes(b), 42, "sizes round up to whole words")
	assert.Equal(t, 2, p.InUse(Chip))
}

func TestPoolsAreSeparate(t *testing.T) {
	p := smallPools(t)

	d, err := p.AllocateBlock(Default, 16)
	require.NoError(t, err)
	c, err := p.AllocateBlock(Chip, 16)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), p.BlockAddress(d))
	assert.Equal(t, uint32(ChipBase), p.BlockAddress(c))
	assert.NotEqual(t, d, c)
}

func TestOutOfMemory(t *testing.T) {
	p := smallPools(t)

	_, err := p.AllocateBlock(Chip, 300)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, err = p.AllocateBlock(Default, 0)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestBlockTableFull(t *testing.T) {
	p := smallPools(t)
	for i := 0; i < 3; i++ {
		_, err := p.AllocateBlock(Chip, 8)
		require.NoError(t, err)
	}
	_, err := p.AllocateBlock(Chip, 8)
	assert.ErrorIs(t, err, ErrNoBlocks)
}

func TestFreedBlocksAreReused(t *testing.T) {
	p := smallPools(t)

	a, err := p.AllocateBlock(Chip, 64)
	require.NoError(t, err)
	addr := p.BlockAddress(a)
	p.FreeBlock(a)
	assert.Equal(t, 0, p.InUse(Chip))

	b, err := p.AllocateBlock(Chip, 32)
	require.NoError(t, err)
	assert.Equal(t, addr, p.BlockAddress(b))
	assert.Equal(t, a, b)

	assert.NotPanics(t, func() { p.FreeBlock(InvalidHandle) })
}

func TestStaleHandlePanics(t *testing.T) {
	p := smallPools(t)
	h, err := p.AllocateBlock(Default, 8)
	require.NoError(t, err)
	p.FreeBlock(h)
	assert.Panics(t, func() { p.BlockAddress(h) })
}

func TestChipRAMWordAccess(t *testing.T) {
	c := NewChipRAM(8)
	c.Write16(2, 0xBEEF)
	assert.Equal(t, uint8(0xBE), c.Read8(2))
	assert.Equal(t, uint8(0xEF), c.Read8(3))
	assert.Equal(t, uint16(0xBEEF), c.Read16(2))

	c.Write16(100, 0x1234)
	assert.Equal(t, uint16(0), c.Read16(100))

	c.Fill(0, 8, 0xff)
	assert.Equal(t, uint16(0xffff), c.Read16(6))
	assert.Len(t, c.Slice(6, 10), 2)
}

func TestChipBytesAliasChipRAM(t *testing.T) {
	p := smallPools(t)
	h, err := p.AllocateBlock(Chip, 4)
	require.NoError(t, err)

	p.Bytes(h)[0] = 0x12
	p.Bytes(h)[1] = 0x34
	assert.Equal(t, uint16(0x1234), p.ChipRAM().Read16(p.BlockAddress(h)))
}
