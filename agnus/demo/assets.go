package demo

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/valerio/go-agnus/agnus/bit"
	"github.com/valerio/go-agnus/agnus/blit"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

const (
	tileSize  = 16
	ballTiles = 4

	firstGlyph = ' '
	numGlyphs  = 96
)

// setPixel writes color into every plane of s at (x, y).
func setPixel(ram *memory.ChipRAM, s raster.Surface, x, y, color int) {
	index := uint16(15 - x&15)
	for p := 0; p < s.Depth; p++ {
		addr := s.WordAddr(x, y, p)
		w := ram.Read16(addr)
		if color>>p&1 != 0 {
			w = bit.Set16(index, w)
		} else {
			w = bit.Clear16(index, w)
		}
		ram.Write16(addr, w)
	}
}

// allocSurface places s in a new chip RAM block.
func allocSurface(alloc memory.Allocator, s *raster.Surface) (memory.Handle, error) {
	h, err := alloc.AllocateBlock(memory.Chip, s.Size())
	if err != nil {
		return memory.InvalidHandle, err
	}
	s.Addr = alloc.BlockAddress(h)
	return h, nil
}

// ballColor returns the color of tile t at (x, y), 0 outside the ball.
// The shading bands rotate by one step per tile.
func ballColor(t, x, y, depth int) int {
	dx, dy := 2*x-15, 2*y-15
	if dx*dx+dy*dy > 15*15 {
		return 0
	}
	colors := 1<<depth - 1
	band := ((x+y)/3 + t) % 6
	return band%colors + 1
}

// makeBallSheet builds a masked, interleaved sheet of ballTiles frames of
// a shaded ball, one tile row.
func makeBallSheet(alloc memory.Allocator, ram *memory.ChipRAM, depth int) (*raster.TileSheet, error) {
	sheet := &raster.TileSheet{Header: raster.TileSheetHeader{
		Width:      tileSize * ballTiles,
		Height:     tileSize,
		TileWidth:  tileSize,
		TileHeight: tileSize,
		Depth:      uint8(depth),
		Flags:      raster.FlagInterleaved | raster.FlagMasked,
	}}
	sheet.Header.ImgDataSize = uint32(sheet.DataSize())

	h, err := alloc.AllocateBlock(memory.Chip, sheet.DataSize())
	if err != nil {
		return nil, fmt.Errorf("ball sheet: %w", err)
	}
	sheet.ImgData = h
	sheet.Addr = alloc.BlockAddress(h)
	ram.Fill(sheet.Addr, sheet.DataSize(), 0)

	img := sheet.Surface()
	mask := img
	mask.Addr = sheet.MaskAddr()
	full := 1<<depth - 1
	for t := 0; t < ballTiles; t++ {
		for y := 0; y < tileSize; y++ {
			for x := 0; x < tileSize; x++ {
				c := ballColor(t, x, y, depth)
				if c == 0 {
					continue
				}
				setPixel(ram, img, t*tileSize+x, y, c)
				setPixel(ram, mask, t*tileSize+x, y, full)
			}
		}
	}
	return sheet, nil
}

// makeFont renders the printable ASCII range of basicfont into a single
// plane 8x8 font surface, blit.GlyphsPerRow glyphs per row. Each 7x13
// glyph is squeezed into its 8x8 cell.
func makeFont(alloc memory.Allocator, ram *memory.ChipRAM) (raster.Surface, memory.Handle, error) {
	rows := (numGlyphs + blit.GlyphsPerRow - 1) / blit.GlyphsPerRow
	s := raster.Surface{
		Width:  blit.GlyphsPerRow * blit.GlyphSize,
		Height: rows * blit.GlyphSize,
		Depth:  1,
	}
	h, err := allocSurface(alloc, &s)
	if err != nil {
		return raster.Surface{}, memory.InvalidHandle, fmt.Errorf("font: %w", err)
	}
	ram.Fill(s.Addr, s.Size(), 0)

	face := basicfont.Face7x13
	glyph := image.NewAlpha(image.Rect(0, 0, face.Width, face.Height))
	cell := image.NewAlpha(image.Rect(0, 0, blit.GlyphSize, blit.GlyphSize))
	d := font.Drawer{Dst: glyph, Src: image.Opaque, Face: face}

	for i := 0; i < numGlyphs; i++ {
		clear(glyph.Pix)
		d.Dot = fixed.P(0, face.Ascent)
		d.DrawString(string(rune(firstGlyph + i)))
		draw.NearestNeighbor.Scale(cell, cell.Bounds(), glyph, glyph.Bounds(), draw.Src, nil)

		gx := (i % blit.GlyphsPerRow) * blit.GlyphSize
		gy := (i / blit.GlyphsPerRow) * blit.GlyphSize
		for y := 0; y < blit.GlyphSize; y++ {
			for x := 0; x < blit.GlyphSize; x++ {
				if cell.AlphaAt(x, y).A >= 0x80 {
					setPixel(ram, s, gx+x, gy+y, 1)
				}
			}
		}
	}
	return s, h, nil
}

// paintBackdrop fills the bottom of s with a checkered floor. The rest is
// color 0, where the display program's gradient shows.
func paintBackdrop(ram *memory.ChipRAM, s raster.Surface, floor int) {
	ram.Fill(s.Addr, s.Size(), 0)
	dark, light := 1<<(s.Depth-1), 1<<(s.Depth-1)|1
	for y := s.Height - floor; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := dark
			if (x/tileSize+y/tileSize)%2 == 0 {
				c = light
			}
			setPixel(ram, s, x, y, c)
		}
	}
}

// shipRows returns the two frames of a 16 line hardware sprite: a diamond
// with an outline in color 1 and a fill alternating between 2 and 3.
func shipRows(frame int) []uint16 {
	rows := make([]uint16, 0, 2*tileSize)
	for y := 0; y < tileSize; y++ {
		var a, b uint16
		for x := 0; x < tileSize; x++ {
			d := abs(2*x-15) + abs(2*y-15)
			if d >= 16 {
				continue
			}
			bit := uint16(0x8000) >> x
			switch {
			case d > 12:
				a |= bit
			case (y/2+frame)%2 == 0:
				b |= bit
			default:
				a |= bit
				b |= bit
			}
		}
		rows = append(rows, a, b)
	}
	return rows
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
