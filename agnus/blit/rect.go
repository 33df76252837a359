package blit

import (
	"github.com/valerio/go-agnus/agnus/bit"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

// RectSimple copies a word aligned w x h rectangle of every plane from src
// to dst with D = A. It is the fastest blit and is used for restoring the
// background.
func (c *Compositor) RectSimple(dst, src raster.Surface, dstX, dstY, srcX, srcY, w, h int) hw.BlitSize {
	words := (w + 15) >> 4
	cv := cover(dst, src, h)

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(0, hw.ChansAD, hw.MintermCopy)
	r.Con1 = 0
	r.AFWM, r.ALWM = 0xffff, 0xffff
	r.AMod = modulo(cv.srcRow, words)
	r.BMod, r.CMod = 0, 0
	r.DMod = modulo(cv.dstRow, words)

	srcAddr := src.Addr + uint32(src.Offset(srcX, srcY))
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))

	var size hw.BlitSize
	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.BPt, r.CPt = 0, 0
		r.APt = srcAddr + uint32(src.PlaneOffset(p))
		r.DPt = dstAddr + uint32(dst.PlaneOffset(p))
		size = c.start(cv.lines, words, cv.dstRow, cv.srcRow)
	}
	return size
}

// RectSimpleFollowUp repeats the last RectSimple between the same two
// surfaces at new coordinates. Only the pointers and the size are written:
// the rest of the register state left by RectSimple is reused. size must
// come from a RectSimple that did not need splitting.
func (c *Compositor) RectSimpleFollowUp(dst, src raster.Surface, dstX, dstY, srcX, srcY int, size hw.BlitSize) {
	cv := cover(dst, src, 1)
	r := c.blitter.Regs()
	srcAddr := src.Addr + uint32(src.Offset(srcX, srcY))
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))

	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.APt = srcAddr + uint32(src.PlaneOffset(p))
		r.DPt = dstAddr + uint32(dst.PlaneOffset(p))
		c.blitter.Start(size)
	}
}

// RectShifted copies a w x h rectangle of every plane from a word aligned
// source position to an arbitrary destination column, D = A with the
// source shifted right by dstX mod 16.
func (c *Compositor) RectShifted(dst, src raster.Surface, dstX, dstY, srcX, srcY, w, h int) hw.BlitSize {
	shift, words, alwm := shiftSpan(dstX, w)
	cv := cover(dst, src, h)

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(shift, hw.ChansAD, hw.MintermCopy)
	r.Con1 = 0
	r.AFWM, r.ALWM = 0xffff, alwm
	r.AMod = modulo(cv.srcRow, words)
	r.DMod = modulo(cv.dstRow, words)

	srcAddr := src.Addr + uint32(src.Offset(srcX, srcY))
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))

	var size hw.BlitSize
	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.APt = srcAddr + uint32(src.PlaneOffset(p))
		r.DPt = dstAddr + uint32(dst.PlaneOffset(p))
		size = c.start(cv.lines, words, cv.dstRow, cv.srcRow)
	}
	return size
}

// BlitAD combines a source rectangle with the destination using minterm,
// A being the source and B the destination itself. The caller chooses the
// shift, both masks and the size in words and lines per plane. srcX and
// dstX are rounded down to their word.
func (c *Compositor) BlitAD(dst, src raster.Surface, srcX, srcY, dstX, dstY int, minterm hw.Minterm, shift uint8, afwm, alwm uint16, words, lines int) hw.BlitSize {
	cv := cover(dst, src, lines)

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(shift, hw.ChansABD, minterm)
	r.Con1 = 0
	r.AFWM, r.ALWM = afwm, alwm
	r.AMod = modulo(cv.srcRow, words)
	r.BMod = modulo(cv.dstRow, words)
	r.DMod = modulo(cv.dstRow, words)

	srcAddr := src.Addr + uint32(src.Offset(srcX, srcY))
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY))

	var size hw.BlitSize
	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.APt = srcAddr + uint32(src.PlaneOffset(p))
		r.BPt = dstAddr + uint32(dst.PlaneOffset(p))
		r.DPt = r.BPt
		size = hw.BlitSize{Lines: cv.lines, Words: words}
		c.blitter.Start(size)
	}
	return size
}

// ClearRect8 clears a rectangle of every plane whose left and right edges
// fall on 8 pixel boundaries. A is disabled with its data register set to
// all ones, so D = ¬A·C clears exactly the pixels the first and last word
// masks let through.
func (c *Compositor) ClearRect8(dst raster.Surface, x, y, w, h int) hw.BlitSize {
	start := bit.AlignDown16(x)
	words := bit.WordsSpanned(x, w)

	afwm, alwm := uint16(0xffff), uint16(0xffff)
	if x&0x0f == 8 {
		afwm = 0x00ff
	}
	if (x+w)&0x0f == 8 {
		alwm = 0xff00
	}

	cv := cover(dst, dst, h)

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(0, hw.ChansCD, hw.MintermClear)
	r.Con1 = 0
	r.ADat = 0xffff
	r.AFWM, r.ALWM = afwm, alwm
	r.CMod = modulo(cv.dstRow, words)
	r.DMod = modulo(cv.dstRow, words)

	dstAddr := dst.Addr + uint32(dst.Offset(start, y))

	var size hw.BlitSize
	for p := 0; p < cv.planes; p++ {
		c.blitter.Wait()
		r.CPt = dstAddr + uint32(dst.PlaneOffset(p))
		r.DPt = r.CPt
		size = hw.BlitSize{Lines: cv.lines, Words: words}
		c.blitter.Start(size)
	}
	return size
}
