package raster

import (
	"github.com/valerio/go-agnus/agnus/memory"
)

// Tile sheet flags.
const (
	FlagInterleaved uint8 = 1 << iota
	FlagMasked
)

// MaxPaletteSize is the largest palette a sheet can carry.
const MaxPaletteSize = 32

// TileSheetHeader describes the image block of a tile sheet.
type TileSheetHeader struct {
	Width       uint16
	Height      uint16
	TileWidth   uint16
	TileHeight  uint16
	Depth       uint8
	Flags       uint8
	PaletteSize uint8
	ImgDataSize uint32
}

func (h TileSheetHeader) Interleaved() bool {
	return h.Flags&FlagInterleaved != 0
}

// Masked reports whether the image data is followed by a cookie-cut mask.
func (h TileSheetHeader) Masked() bool {
	return h.Flags&FlagMasked != 0
}

// TileSheet is a grid of equally sized tiles stored as one surface in chip
// RAM. When masked, a mask follows the image planes: a single plane for
// planar sheets, one copy per plane row for interleaved sheets so that the
// mask shares the image's stride.
type TileSheet struct {
	Header  TileSheetHeader
	Palette [MaxPaletteSize]uint16
	ImgData memory.Handle
	Addr    uint32
}

// Surface returns the image planes of the sheet.
func (t *TileSheet) Surface() Surface {
	return Surface{
		Width:       int(t.Header.Width),
		Height:      int(t.Header.Height),
		Depth:       int(t.Header.Depth),
		Interleaved: t.Header.Interleaved(),
		Addr:        t.Addr,
	}
}

// MaskAddr returns the address of the mask, directly after the image
// planes.
func (t *TileSheet) MaskAddr() uint32 {
	return t.Addr + uint32(t.Surface().Size())
}

// DataSize returns the size of image plus mask data implied by the header.
func (t *TileSheet) DataSize() int {
	s := t.Surface()
	size := s.Size()
	if t.Header.Masked() {
		if s.Interleaved {
			size += s.Size()
		} else {
			size += s.PlaneSize()
		}
	}
	return size
}

// Columns is the number of tiles per sheet row.
func (t *TileSheet) Columns() int {
	if t.Header.TileWidth == 0 {
		return 0
	}
	return int(t.Header.Width / t.Header.TileWidth)
}

// TileOffset returns the byte offset, in plane 0 relative to Addr, of the
// tile at (col, row) of the grid.
func (t *TileSheet) TileOffset(col, row int) int {
	s := t.Surface()
	return row*int(t.Header.TileHeight)*s.Stride() + col*int(t.Header.TileWidth)/8
}

// Colors returns the palette entries the sheet defines.
func (t *TileSheet) Colors() []uint16 {
	return t.Palette[:t.Header.PaletteSize]
}
