// Package raster describes bitplane memory layouts: surfaces, tile sheets
// and sprite sheets. It holds no pixels itself; every type names memory
// owned by the allocator.
package raster

import (
	"errors"
	"fmt"
)

// ErrLayout is returned for surfaces the display hardware cannot address.
var ErrLayout = errors.New("invalid surface layout")

// MaxDepth is the deepest surface supported (32 colors).
const MaxDepth = 5

// Surface is a planar bitmap in chip RAM. In an interleaved surface the rows
// of all planes alternate (row 0 plane 0, row 0 plane 1, ...); otherwise
// each plane is stored contiguously.
type Surface struct {
	Width       int
	Height      int
	Depth       int
	Interleaved bool
	Addr        uint32
}

// RowBytes is the size of a single plane row.
func (s Surface) RowBytes() int {
	return s.Width / 8
}

// Stride is the distance in bytes between two rows of the same plane.
func (s Surface) Stride() int {
	if s.Interleaved {
		return s.RowBytes() * s.Depth
	}
	return s.RowBytes()
}

// PlaneSize is the size in bytes of one full plane.
func (s Surface) PlaneSize() int {
	return s.RowBytes() * s.Height
}

// PlaneOffset is the byte offset of plane p from Addr.
func (s Surface) PlaneOffset(p int) int {
	if s.Interleaved {
		return p * s.RowBytes()
	}
	return p * s.PlaneSize()
}

// Size is the total size of the image data.
func (s Surface) Size() int {
	return s.PlaneSize() * s.Depth
}

// Offset returns the byte offset, in plane 0, of the word holding pixel
// (x, y).
func (s Surface) Offset(x, y int) int {
	return y*s.Stride() + (x>>4)*2
}

// WordAddr returns the chip RAM address of the word holding pixel (x, y)
// in plane p.
func (s Surface) WordAddr(x, y, p int) uint32 {
	return s.Addr + uint32(s.Offset(x, y)+s.PlaneOffset(p))
}

// PlaneAddr returns the address of the first word of plane p.
func (s Surface) PlaneAddr(p int) uint32 {
	return s.Addr + uint32(s.PlaneOffset(p))
}

// WordsPerRow is the width in 16 pixel words.
func (s Surface) WordsPerRow() int {
	return s.Width / 16
}

// SingleRun reports whether all planes of a rectangle can be covered by one
// blit with a single modulo.
func (s Surface) SingleRun() bool {
	return s.Interleaved || s.Depth == 1
}

func (s Surface) Validate() error {
	switch {
	case s.Width <= 0 || s.Width%16 != 0:
		return fmt.Errorf("width %d is not a positive multiple of 16: %w", s.Width, ErrLayout)
	case s.Height <= 0:
		return fmt.Errorf("height %d: %w", s.Height, ErrLayout)
	case s.Depth < 1 || s.Depth > MaxDepth:
		return fmt.Errorf("depth %d outside 1..%d: %w", s.Depth, MaxDepth, ErrLayout)
	case s.Addr&1 != 0:
		return fmt.Errorf("address %06x is odd: %w", s.Addr, ErrLayout)
	}
	return nil
}

// SameLayout reports whether two surfaces have identical geometry,
// ignoring their addresses.
func (s Surface) SameLayout(o Surface) bool {
	return s.Width == o.Width && s.Height == o.Height && s.Depth == o.Depth && s.Interleaved == o.Interleaved
}

func (s Surface) String() string {
	layout := "planar"
	if s.Interleaved {
		layout = "interleaved"
	}
	return fmt.Sprintf("%dx%dx%d %s @%06x", s.Width, s.Height, s.Depth, layout, s.Addr)
}
