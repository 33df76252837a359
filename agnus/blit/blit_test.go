package blit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

type rig struct {
	ram  *memory.ChipRAM
	soft *hw.SoftBlitter
	rec  *hw.Recorder
	comp *Compositor
}

func newRig(t *testing.T) *rig {
	t.Helper()
	ram := memory.NewChipRAM(0x40000)
	soft := hw.NewSoftBlitter(ram)
	rec := hw.NewRecorder(soft)
	return &rig{ram: ram, soft: soft, rec: rec, comp: New(rec)}
}

func pixel(ram *memory.ChipRAM, s raster.Surface, x, y int) int {
	color := 0
	for p := 0; p < s.Depth; p++ {
		if ram.Read16(s.WordAddr(x, y, p))&(0x8000>>(x&15)) != 0 {
			color |= 1 << p
		}
	}
	return color
}

func setPixel(ram *memory.ChipRAM, s raster.Surface, x, y, color int) {
	for p := 0; p < s.Depth; p++ {
		addr := s.WordAddr(x, y, p)
		w := ram.Read16(addr)
		m := uint16(0x8000) >> (x & 15)
		if color&(1<<p) != 0 {
			w |= m
		} else {
			w &^= m
		}
		ram.Write16(addr, w)
	}
}

func pattern(ram *memory.ChipRAM, s raster.Surface) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			setPixel(ram, s, x, y, (x*7+y*3)%(1<<s.Depth))
		}
	}
}

func TestRectSimpleRoundTrip(t *testing.T) {
	layouts := []struct {
		name        string
		interleaved bool
		ops         int
	}{
		{"interleaved", true, 1},
		{"planar", false, 3},
	}

	for _, tt := range layouts {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			src := raster.Surface{Width: 64, Height: 32, Depth: 3, Interleaved: tt.interleaved, Addr: 0x1000}
			dst := raster.Surface{Width: 64, Height: 32, Depth: 3, Interleaved: tt.interleaved, Addr: 0x8000}
			pattern(r.ram, src)

			r.comp.Own()
			size := r.comp.RectSimple(dst, src, 16, 8, 16, 8, 32, 16)
			r.comp.Disown()

			assert.Len(t, r.rec.Ops, tt.ops)
			assert.Equal(t, 2, size.Words)
			for y := 0; y < 32; y++ {
				for x := 0; x < 64; x++ {
					inside := x >= 16 && x < 48 && y >= 8 && y < 24
					if inside {
						require.Equal(t, pixel(r.ram, src, x, y), pixel(r.ram, dst, x, y), "pixel %d,%d", x, y)
					} else {
						require.Zero(t, pixel(r.ram, dst, x, y), "pixel %d,%d", x, y)
					}
				}
			}
		})
	}
}

func TestRectSimpleSplitsTallBlits(t *testing.T) {
	rec := hw.NewRecorder(nil)
	comp := New(rec)
	src := raster.Surface{Width: 320, Height: 1100, Depth: 5, Interleaved: true, Addr: 0x10000}
	dst := raster.Surface{Width: 320, Height: 1100, Depth: 5, Interleaved: true, Addr: 0x80000}

	comp.Own()
	size := comp.RectSimple(dst, src, 0, 0, 0, 0, 320, 1100)
	comp.Disown()

	require.Len(t, rec.Ops, 2)
	first, second := rec.Ops[0], rec.Ops[1]
	assert.Equal(t, hw.BlitSize{Lines: 1024, Words: 20}, first.Size)
	assert.Equal(t, hw.BlitSize{Lines: 1100*5 - 1024, Words: 20}, second.Size)
	assert.Equal(t, second.Size, size)

	assert.Equal(t, first.Regs.APt+1024*40, second.Regs.APt)
	assert.Equal(t, first.Regs.DPt+1024*40, second.Regs.DPt)
	assert.Equal(t, int16(0), first.Regs.AMod)
	assert.Equal(t, int16(0), first.Regs.DMod)
	assert.Equal(t, hw.NewBltCon0(0, hw.ChansAD, hw.MintermCopy), second.Regs.Con0)
}

func TestRectSimpleFollowUp(t *testing.T) {
	r := newRig(t)
	src := raster.Surface{Width: 64, Height: 32, Depth: 2, Interleaved: true, Addr: 0x1000}
	dst := raster.Surface{Width: 64, Height: 32, Depth: 2, Interleaved: true, Addr: 0x8000}
	pattern(r.ram, src)

	r.comp.Own()
	size := r.comp.RectSimple(dst, src, 0, 0, 0, 0, 16, 16)
	r.comp.RectSimpleFollowUp(dst, src, 48, 16, 48, 16, size)
	r.comp.Disown()

	require.Len(t, r.rec.Ops, 2)
	assert.Equal(t, r.rec.Ops[0].Regs.Con0, r.rec.Ops[1].Regs.Con0)
	assert.Equal(t, r.rec.Ops[0].Regs.AMod, r.rec.Ops[1].Regs.AMod)
	assert.Equal(t, size, r.rec.Ops[1].Size)

	for _, pt := range [][2]int{{0, 0}, {15, 15}, {48, 16}, {63, 31}} {
		assert.Equal(t, pixel(r.ram, src, pt[0], pt[1]), pixel(r.ram, dst, pt[0], pt[1]))
	}
	assert.Zero(t, pixel(r.ram, dst, 20, 20))
}

func TestRectShifted(t *testing.T) {
	r := newRig(t)
	src := raster.Surface{Width: 32, Height: 1, Depth: 1, Addr: 0x1000}
	dst := raster.Surface{Width: 64, Height: 1, Depth: 1, Addr: 0x2000}
	r.ram.Write16(0x1000, 0xffff)
	r.ram.Write16(0x1002, 0xaaaa)

	r.comp.Own()
	size := r.comp.RectShifted(dst, src, 4, 0, 0, 0, 16, 1)
	r.comp.Disown()

	assert.Equal(t, hw.BlitSize{Lines: 1, Words: 2}, size)
	assert.Equal(t, uint16(0x0000), r.rec.Ops[0].Regs.ALWM)
	assert.Equal(t, uint8(4), r.rec.Ops[0].Regs.Con0.ShiftA())
	assert.Equal(t, uint16(0x0fff), r.ram.Read16(0x2000))
	assert.Equal(t, uint16(0xf000), r.ram.Read16(0x2002))
}

func TestRectShiftedAlignedDoesNotWiden(t *testing.T) {
	r := newRig(t)
	src := raster.Surface{Width: 32, Height: 1, Depth: 1, Addr: 0x1000}
	dst := raster.Surface{Width: 64, Height: 1, Depth: 1, Addr: 0x2000}

	r.comp.Own()
	size := r.comp.RectShifted(dst, src, 16, 0, 0, 0, 16, 1)
	r.comp.Disown()

	assert.Equal(t, 1, size.Words)
	assert.Equal(t, uint16(0xffff), r.rec.Ops[0].Regs.ALWM)
}

// sheet builds a 32x16 masked sheet of two 16x16 tiles. Tile 0 is color 1
// with a mask covering the left half of every row.
func sheet(t *testing.T, ram *memory.ChipRAM, interleaved bool) *raster.TileSheet {
	t.Helper()
	s := &raster.TileSheet{
		Header: raster.TileSheetHeader{Width: 32, Height: 16, TileWidth: 16, TileHeight: 16, Depth: 2, Flags: raster.FlagMasked},
		Addr:   0x4000,
	}
	if interleaved {
		s.Header.Flags |= raster.FlagInterleaved
	}
	surf := s.Surface()
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			setPixel(ram, surf, x, y, 1)
		}
		planes := 1
		if interleaved {
			planes = 2
		}
		for p := 0; p < planes; p++ {
			ram.Write16(s.MaskAddr()+uint32(y*surf.Stride()+p*surf.RowBytes()), 0xff00)
		}
	}
	return s
}

func fill(ram *memory.ChipRAM, s raster.Surface, color int) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			setPixel(ram, s, x, y, color)
		}
	}
}

func TestObjectMaskedCookieCut(t *testing.T) {
	for _, interleaved := range []bool{false, true} {
		r := newRig(t)
		sh := sheet(t, r.ram, interleaved)
		dst := raster.Surface{Width: 64, Height: 32, Depth: 2, Interleaved: true, Addr: 0x8000}
		fill(r.ram, dst, 2)

		r.comp.Own()
		size := r.comp.DrawObject(dst, sh, 0, 0, 20, 4)
		r.comp.Disown()

		assert.Equal(t, 2, size.Words)
		if interleaved {
			require.Len(t, r.rec.Ops, 1)
			assert.Equal(t, 32, size.Lines)
		} else {
			require.Len(t, r.rec.Ops, 2)
			assert.Equal(t, 16, size.Lines)
			assert.Equal(t, r.rec.Ops[0].Regs.APt, r.rec.Ops[1].Regs.APt, "mask plane is shared")
		}
		op := r.rec.Ops[0].Regs
		assert.Equal(t, hw.NewBltCon0(4, hw.ChansABCD, hw.MintermCookieCut), op.Con0)
		assert.Equal(t, hw.NewBltCon1(4), op.Con1)

		for y := 0; y < 32; y++ {
			for x := 0; x < 64; x++ {
				want := 2
				if y >= 4 && y < 20 && x >= 20 && x < 28 {
					want = 1
				}
				require.Equal(t, want, pixel(r.ram, dst, x, y), "interleaved=%v pixel %d,%d", interleaved, x, y)
			}
		}
	}
}

func TestObjectMaskedPlanarDestination(t *testing.T) {
	r := newRig(t)
	sh := sheet(t, r.ram, false)
	dst := raster.Surface{Width: 64, Height: 32, Depth: 2, Addr: 0x8000}

	r.comp.Own()
	r.comp.ObjectMasked(dst, sh, 0, 0, 16, 0)
	r.comp.Disown()

	assert.Equal(t, uint16(0xff00), r.ram.Read16(dst.WordAddr(16, 5, 0)))
	assert.Equal(t, uint16(0x0000), r.ram.Read16(dst.WordAddr(16, 5, 1)))
	require.Len(t, r.rec.Ops, 2)
	assert.Equal(t, dst.Addr+2+uint32(dst.PlaneSize()), r.rec.Ops[1].Regs.DPt)
}

func TestRectOnePlane(t *testing.T) {
	r := newRig(t)
	sh := sheet(t, r.ram, false)
	dst := raster.Surface{Width: 64, Height: 32, Depth: 2, Interleaved: true, Addr: 0x8000}

	r.comp.Own()
	size := r.comp.RectOnePlane(dst, sh, 0, 0, 0, 0, 1)
	r.comp.Disown()

	assert.Equal(t, hw.BlitSize{Lines: 16, Words: 1}, size)
	assert.Equal(t, 2, pixel(r.ram, dst, 0, 0), "plane 0 of the tile lands in plane 1")
	assert.Equal(t, 2, pixel(r.ram, dst, 15, 15))
	assert.Zero(t, pixel(r.ram, dst, 16, 0))
}

func TestBlitADOr(t *testing.T) {
	r := newRig(t)
	src := raster.Surface{Width: 16, Height: 2, Depth: 1, Addr: 0x1000}
	dst := raster.Surface{Width: 32, Height: 2, Depth: 1, Addr: 0x2000}
	r.ram.Write16(0x1000, 0x00f0)
	r.ram.Write16(0x1002, 0x00f0)
	r.ram.Write16(0x2000, 0x0f00)

	r.comp.Own()
	size := r.comp.BlitAD(dst, src, 0, 0, 0, 0, hw.MintermOr, 0, 0xffff, 0xffff, 1, 2)
	r.comp.Disown()

	assert.Equal(t, hw.BlitSize{Lines: 2, Words: 1}, size)
	assert.Equal(t, uint16(0x0ff0), r.ram.Read16(0x2000))
	assert.Equal(t, uint16(0x00f0), r.ram.Read16(0x2004))
	assert.Equal(t, int16(2), r.rec.Ops[0].Regs.DMod)
}

func TestClearRect8(t *testing.T) {
	r := newRig(t)
	dst := raster.Surface{Width: 48, Height: 4, Depth: 2, Interleaved: true, Addr: 0x2000}
	fill(r.ram, dst, 3)

	r.comp.Own()
	size := r.comp.ClearRect8(dst, 8, 1, 16, 2)
	r.comp.Disown()

	assert.Equal(t, hw.BlitSize{Lines: 4, Words: 2}, size)
	op := r.rec.Ops[0].Regs
	assert.Equal(t, uint16(0x00ff), op.AFWM)
	assert.Equal(t, uint16(0xff00), op.ALWM)
	assert.False(t, op.Con0.Uses(hw.ChanA))

	for y := 0; y < 4; y++ {
		for x := 0; x < 48; x++ {
			want := 3
			if y >= 1 && y < 3 && x >= 8 && x < 24 {
				want = 0
			}
			require.Equal(t, want, pixel(r.ram, dst, x, y), "pixel %d,%d", x, y)
		}
	}
}

func font(ram *memory.ChipRAM) raster.Surface {
	f := raster.Surface{Width: GlyphsPerRow * GlyphSize, Height: 16, Depth: 1, Addr: 0x6000}
	// '!' is glyph 1, the right half of word 0: a vertical bar in its
	// first column
	for y := 0; y < 8; y++ {
		ram.Write16(f.WordAddr(8, y, 0), 0x0080)
	}
	// '"' is glyph 2, the left half of word 1
	for y := 0; y < 8; y++ {
		ram.Write16(f.WordAddr(16, y, 0), 0x8000)
	}
	return f
}

func TestGlyph8x8(t *testing.T) {
	tests := []struct {
		name  string
		ch    byte
		dstX  int
		words int
		bit   int // pixel that must be set in row 0
	}{
		{"right half to left half", '!', 16, 2, 16},
		{"right half to right half", '!', 24, 1, 24},
		{"left half to left half", '"', 32, 1, 32},
		{"left half to right half", '"', 40, 1, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			f := font(r.ram)
			dst := raster.Surface{Width: 64, Height: 8, Depth: 2, Interleaved: true, Addr: 0x8000}
			setPixel(r.ram, dst, 0, 0, 1)

			r.comp.Own()
			size := r.comp.Glyph8x8(dst, f, tt.dstX, 0, tt.ch, 1)
			r.comp.Disown()

			assert.Equal(t, hw.BlitSize{Lines: 8, Words: tt.words}, size)
			for y := 0; y < 8; y++ {
				for x := 0; x < 64; x++ {
					want := 0
					if x == tt.bit {
						want = 2
					}
					if x == 0 && y == 0 {
						want = 1
					}
					require.Equal(t, want, pixel(r.ram, dst, x, y), "pixel %d,%d", x, y)
				}
			}
		})
	}
}

func TestText(t *testing.T) {
	r := newRig(t)
	f := font(r.ram)
	dst := raster.Surface{Width: 64, Height: 8, Depth: 1, Addr: 0x8000}

	r.comp.Own()
	r.comp.Text(dst, f, 0, 0, "! \"", 0)
	r.comp.Disown()

	assert.Len(t, r.rec.Ops, 2)
	assert.Equal(t, 1, pixel(r.ram, dst, 0, 3))
	assert.Equal(t, 1, pixel(r.ram, dst, 16, 3))
	assert.Zero(t, pixel(r.ram, dst, 8, 3))
}

func TestHogAndOwnership(t *testing.T) {
	r := newRig(t)
	r.comp.Own()
	r.comp.SetHog(true)
	assert.True(t, r.comp.Hog())
	assert.True(t, r.soft.Nasty())
	r.comp.SetHog(false)
	r.comp.Disown()
	assert.False(t, r.soft.Nasty())

	src := raster.Surface{Width: 16, Height: 1, Depth: 1, Addr: 0x1000}
	assert.Panics(t, func() { r.comp.RectSimple(src, src, 0, 0, 0, 0, 16, 1) })
}
