package blit

import (
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

// tile locates tile (col, row) of a sheet: the byte offset of its top left
// word and its size in pixels.
func tile(sheet *raster.TileSheet, col, row int) (offset, w, h int) {
	return sheet.TileOffset(col, row), int(sheet.Header.TileWidth), int(sheet.Header.TileHeight)
}

func (c *Compositor) cookieCut(shift uint8, alwm uint16) *hw.Registers {
	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(shift, hw.ChansABCD, hw.MintermCookieCut)
	r.Con1 = hw.NewBltCon1(shift)
	r.AFWM, r.ALWM = 0xffff, alwm
	return r
}

// ObjectMasked draws tile (col, row) of a planar, masked sheet at (dstX,
// dstY) with D = AB + ¬AC: the single mask plane is reused for every image
// plane, the destination is both background (C) and target (D). One blit is
// issued per plane.
func (c *Compositor) ObjectMasked(dst raster.Surface, sheet *raster.TileSheet, col, row, dstX, dstY int) hw.BlitSize {
	src := sheet.Surface()
	offset, w, h := tile(sheet, col, row)
	shift, words, alwm := shiftSpan(dstX, w)
	depth := min(src.Depth, dst.Depth)

	r := c.cookieCut(shift, alwm)
	r.AMod = modulo(src.RowBytes(), words)
	r.BMod = r.AMod
	r.CMod = modulo(dst.Stride(), words)
	r.DMod = r.CMod

	maskAddr := sheet.MaskAddr() + uint32(offset)
	srcAddr := src.Addr + uint32(offset)
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))
	size := hw.BlitSize{Lines: h, Words: words}

	for p := 0; p < depth; p++ {
		c.blitter.Wait()
		r.APt = maskAddr
		r.BPt = srcAddr + uint32(src.PlaneOffset(p))
		r.CPt = dstAddr + uint32(dst.PlaneOffset(p))
		r.DPt = r.CPt
		c.blitter.Start(size)
	}
	return size
}

// ObjectMaskedInterleaved draws tile (col, row) of an interleaved, masked
// sheet. The mask is interleaved as well, one mask row per plane row, so
// against an interleaved destination of the same depth the whole object is
// a single blit of TileHeight*Depth lines.
func (c *Compositor) ObjectMaskedInterleaved(dst raster.Surface, sheet *raster.TileSheet, col, row, dstX, dstY int) hw.BlitSize {
	src := sheet.Surface()
	offset, w, h := tile(sheet, col, row)
	shift, words, alwm := shiftSpan(dstX, w)
	cv := cover(dst, src, h)

	r := c.cookieCut(shift, alwm)
	r.AMod = modulo(cv.srcRow, words)
	r.BMod = r.AMod
	r.CMod = modulo(cv.dstRow, words)
	r.DMod = r.CMod

	maskAddr := sheet.MaskAddr() + uint32(offset)
	srcAddr := src.Addr + uint32(offset)
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))
	size := hw.BlitSize{Lines: cv.lines, Words: words}

	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.APt = maskAddr + uint32(src.PlaneOffset(p))
		r.BPt = srcAddr + uint32(src.PlaneOffset(p))
		r.CPt = dstAddr + uint32(dst.PlaneOffset(p))
		r.DPt = r.CPt
		c.blitter.Start(size)
	}
	return size
}

// DrawObject picks the masked blit matching the sheet's layout.
func (c *Compositor) DrawObject(dst raster.Surface, sheet *raster.TileSheet, col, row, dstX, dstY int) hw.BlitSize {
	if sheet.Header.Interleaved() {
		return c.ObjectMaskedInterleaved(dst, sheet, col, row, dstX, dstY)
	}
	return c.ObjectMasked(dst, sheet, col, row, dstX, dstY)
}

// RectOnePlane copies plane 0 of tile (col, row) into a single destination
// plane with D = A, leaving the other planes untouched.
func (c *Compositor) RectOnePlane(dst raster.Surface, sheet *raster.TileSheet, col, row, dstX, dstY, plane int) hw.BlitSize {
	src := sheet.Surface()
	offset, w, h := tile(sheet, col, row)
	shift, words, alwm := shiftSpan(dstX, w)

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(shift, hw.ChansAD, hw.MintermCopy)
	r.Con1 = 0
	r.AFWM, r.ALWM = 0xffff, alwm
	r.AMod = modulo(src.Stride(), words)
	r.DMod = modulo(dst.Stride(), words)
	r.APt = src.Addr + uint32(offset)
	r.DPt = dst.Addr + uint32(dst.Offset(dstX, dstY)+dst.PlaneOffset(plane))

	size := hw.BlitSize{Lines: h, Words: words}
	c.blitter.Start(size)
	return size
}
