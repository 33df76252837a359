package resources

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

func newPools(t *testing.T) *memory.Pools {
	t.Helper()
	p, err := memory.New(memory.DefaultConfig())
	require.NoError(t, err)
	return p
}

func testSheet(t *testing.T, pools *memory.Pools) *raster.TileSheet {
	t.Helper()
	sheet := &raster.TileSheet{Header: raster.TileSheetHeader{
		Width: 32, Height: 16, TileWidth: 16, TileHeight: 16, Depth: 2,
		Flags: raster.FlagInterleaved | raster.FlagMasked, PaletteSize: 4,
	}}
	copy(sheet.Palette[:], []uint16{0x000, 0xf00, 0x0f0, 0x00f})
	sheet.Header.ImgDataSize = uint32(sheet.DataSize())
	h, err := pools.AllocateBlock(memory.Chip, sheet.DataSize())
	require.NoError(t, err)
	sheet.ImgData = h
	sheet.Addr = pools.BlockAddress(h)
	data := pools.Bytes(h)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return sheet
}

func TestTileSheetRoundTrip(t *testing.T) {
	pools := newPools(t)
	ram := pools.ChipRAM()
	sheet := testSheet(t, pools)

	var buf bytes.Buffer
	require.NoError(t, EncodeTileSheet(&buf, sheet, ram))
	assert.Equal(t, []byte("AGTS\x01"), buf.Bytes()[:5])

	got, err := DecodeTileSheet(&buf, pools, ram)
	require.NoError(t, err)
	assert.Equal(t, sheet.Header, got.Header)
	assert.Equal(t, sheet.Colors(), got.Colors())
	assert.NotEqual(t, sheet.Addr, got.Addr)
	assert.Equal(t, ram.Slice(sheet.Addr, sheet.DataSize()), ram.Slice(got.Addr, got.DataSize()))
}

func TestDecodeTileSheetErrors(t *testing.T) {
	pools := newPools(t)
	ram := pools.ChipRAM()
	var good bytes.Buffer
	require.NoError(t, EncodeTileSheet(&good, testSheet(t, pools), ram))
	valid := good.Bytes()

	corrupt := func(at int, b byte) []byte {
		out := bytes.Clone(valid)
		out[at] = b
		return out
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"magic", corrupt(0, 'X')},
		{"version", corrupt(4, 9)},
		{"width", corrupt(6, 33)},
		{"depth", corrupt(13, 7)},
		{"image size", corrupt(20, 0xff)},
		{"truncated", valid[:len(valid)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inUse := pools.InUse(memory.Chip)
			_, err := DecodeTileSheet(bytes.NewReader(tt.data), pools, ram)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Equal(t, inUse, pools.InUse(memory.Chip), "no block is leaked")
		})
	}
}

func TestSpriteSheetRoundTrip(t *testing.T) {
	var sheet raster.SpriteSheet
	sheet.Colors = []uint16{0x000, 0xfff, 0x888}
	sheet.AppendSprite(2, false, []uint16{1, 2, 3, 4}, []uint16{5, 6, 7, 8})
	sheet.AppendSprite(1, true, []uint16{9, 10})

	var buf bytes.Buffer
	require.NoError(t, EncodeSpriteSheet(&buf, &sheet))
	got, err := DecodeSpriteSheet(&buf)
	require.NoError(t, err)
	assert.Equal(t, &sheet, got)

	rows, err := got.Frame(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{5, 6, 7, 8}, rows)
}

func TestDecodeSpriteSheetChecksLayout(t *testing.T) {
	sheet := raster.SpriteSheet{Offsets: []uint16{0}, Data: []uint16{4, 0, 3}}
	var buf bytes.Buffer
	require.NoError(t, EncodeSpriteSheet(&buf, &sheet))
	_, err := DecodeSpriteSheet(&buf)
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, err, raster.ErrLayout)
}

func TestFilesLoader(t *testing.T) {
	pools := newPools(t)
	ram := pools.ChipRAM()
	dir := t.TempDir()

	var tiles bytes.Buffer
	require.NoError(t, EncodeTileSheet(&tiles, testSheet(t, pools), ram))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles.ts"), tiles.Bytes(), 0o644))

	var sprites bytes.Buffer
	var ss raster.SpriteSheet
	ss.AppendSprite(1, false, []uint16{1, 2})
	require.NoError(t, EncodeSpriteSheet(&sprites, &ss))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sprites.spr"), sprites.Bytes(), 0o644))

	var loader Loader = NewFiles(pools, ram)
	inUse := pools.InUse(memory.Chip)
	sheet, err := loader.ReadTileSheet(filepath.Join(dir, "tiles.ts"))
	require.NoError(t, err)
	assert.Equal(t, inUse+1, pools.InUse(memory.Chip))
	loader.FreeTileSheet(sheet)
	assert.Equal(t, inUse, pools.InUse(memory.Chip))
	assert.Equal(t, memory.InvalidHandle, sheet.ImgData)

	spr, err := loader.ReadSpriteSheet(filepath.Join(dir, "sprites.spr"))
	require.NoError(t, err)
	assert.Equal(t, 1, spr.Len())

	_, err = loader.ReadTileSheet(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
