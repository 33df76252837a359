// Package blit translates rectangle requests over surfaces and tile sheets
// into blitter register programs: aligned copies, shifted copies, masked
// cookie-cut objects, glyphs and clears.
//
// Every operation must run between Own and Disown and returns the size
// descriptor of the last blit it started.
package blit

import (
	"github.com/valerio/go-agnus/agnus/bit"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

// Compositor programs a blitter on behalf of the display pipeline.
type Compositor struct {
	blitter hw.Blitter
	hog     bool
}

func New(b hw.Blitter) *Compositor {
	return &Compositor{blitter: b}
}

// Blitter returns the blitter being programmed.
func (c *Compositor) Blitter() hw.Blitter {
	return c.blitter
}

// Own takes exclusive use of the blitter. It blocks while another owner
// holds it.
func (c *Compositor) Own() {
	c.blitter.Own()
}

// Disown waits for the last blit and releases the blitter.
func (c *Compositor) Disown() {
	c.blitter.Wait()
	c.blitter.Disown()
}

// Wait blocks until the current blit has finished.
func (c *Compositor) Wait() {
	c.blitter.Wait()
}

// SetHog gives the blitter priority over the CPU on the chip bus.
func (c *Compositor) SetHog(on bool) {
	c.hog = on
	c.blitter.SetNasty(on)
}

// Hog reports whether blitter hog mode is on.
func (c *Compositor) Hog() bool {
	return c.hog
}

// coverage describes how a rectangle over every plane is cut into blits.
// When both surfaces store planes the same way in a single run, all planes
// go in one blit of h*depth lines. Otherwise each plane gets its own blit.
type coverage struct {
	lines  int
	planes int
	dstRow int
	srcRow int
}

func cover(dst, src raster.Surface, h int) coverage {
	depth := min(dst.Depth, src.Depth)
	if dst.SingleRun() && src.SingleRun() && dst.Depth == src.Depth {
		return coverage{lines: h * depth, planes: 1, dstRow: dst.RowBytes(), srcRow: src.RowBytes()}
	}
	return coverage{lines: h, planes: depth, dstRow: dst.Stride(), srcRow: src.Stride()}
}

// shiftSpan returns the shift, blit width and last word mask for copying a
// span of w pixels to destination column dstX. When the shifted span
// touches one more word than the source, the blit is widened by a word and
// the last source word is masked off.
func shiftSpan(dstX, w int) (shift uint8, words int, alwm uint16) {
	srcWords := (w + 15) >> 4
	dstWords := bit.WordsSpanned(dstX, w)
	if dstWords > srcWords {
		return uint8(dstX & 0x0f), dstWords, 0x0000
	}
	return uint8(dstX & 0x0f), srcWords, 0xffff
}

// start writes BLTSIZE. A blit taller than the hardware maximum is issued as
// a maximum height blit followed by the remainder, the second continuing
// 1024 lines further into both surfaces.
func (c *Compositor) start(lines, words, dstRow, srcRow int) hw.BlitSize {
	size := hw.BlitSize{Lines: lines, Words: words}
	if lines <= hw.MaxBlitLines {
		c.blitter.Start(size)
		return size
	}

	r := c.blitter.Regs()
	apt, dpt := r.APt, r.DPt
	c.blitter.Start(hw.BlitSize{Lines: hw.MaxBlitLines, Words: words})

	c.blitter.Wait()
	r.APt = apt + uint32(hw.MaxBlitLines*srcRow)
	r.DPt = dpt + uint32(hw.MaxBlitLines*dstRow)
	rest := hw.BlitSize{Lines: lines - hw.MaxBlitLines, Words: words}
	c.blitter.Start(rest)
	return rest
}

func modulo(row, words int) int16 {
	return int16(row - words*2)
}
