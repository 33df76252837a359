package blit

import (
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

const (
	// GlyphSize is the width and height of a font glyph in pixels.
	GlyphSize = 8
	// GlyphsPerRow is the number of glyphs per font row, starting at ' '.
	GlyphsPerRow = 32
)

// Glyph8x8 ORs the 8x8 glyph of ch from a single plane font into one plane
// of dst (D = A + B, B being the destination). Glyphs sit in the left or
// right half of a font word and land in either half of a destination word:
// when the halves differ A is shifted by 8, and a right half glyph going to
// a left half position starts one word early with the first word masked to
// the glyph.
func (c *Compositor) Glyph8x8(dst, font raster.Surface, dstX, dstY int, ch byte, plane int) hw.BlitSize {
	index := int(ch) - ' '
	srcY := (index / GlyphsPerRow) * GlyphSize
	srcX := (index % GlyphsPerRow) * GlyphSize

	var shift uint8
	if dstX&0x0f != srcX&0x0f {
		shift = 8
	}
	left := srcX&0x0f == 0

	words := 1
	afwm, alwm := uint16(0xff00), uint16(0xff00)
	dstAddr := dst.Addr + uint32(dst.Offset(dstX, dstY)+dst.PlaneOffset(plane))

	switch {
	case shift == 8 && !left:
		words = 2
		dstAddr -= 2
		afwm, alwm = 0x00ff, 0x0000
	case shift == 0 && !left:
		afwm, alwm = 0x00ff, 0x00ff
	}

	c.blitter.Wait()
	r := c.blitter.Regs()
	r.Con0 = hw.NewBltCon0(shift, hw.ChansABD, hw.MintermOr)
	r.Con1 = 0
	r.AFWM, r.ALWM = afwm, alwm
	r.AMod = modulo(font.Stride(), words)
	r.BMod = modulo(dst.Stride(), words)
	r.CMod = 0
	r.DMod = r.BMod
	r.APt = font.Addr + uint32(font.Offset(srcX, srcY))
	r.BPt = dstAddr
	r.CPt = 0
	r.DPt = dstAddr

	size := hw.BlitSize{Lines: GlyphSize, Words: words}
	c.blitter.Start(size)
	return size
}

// Text draws s starting at (x, y), one glyph every 8 pixels.
func (c *Compositor) Text(dst, font raster.Surface, x, y int, s string, plane int) {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			c.Glyph8x8(dst, font, x+i*GlyphSize, y, s[i], plane)
		}
	}
}
