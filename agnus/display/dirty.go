package display

import (
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

// MarkDirty marks tile (tx, ty) of a playfield for restoring in every one
// of its buffers. Tiles outside the grid are ignored.
func (e *Engine) MarkDirty(pf, tx, ty int) {
	p := e.playfields[pf]
	if tx < 0 || ty < 0 || tx >= p.cols || ty >= p.rows {
		return
	}
	idx := ty*p.cols + tx
	for _, b := range p.Buffers {
		b.Dirty.Insert(idx)
	}
}

// MarkDirtyRect marks every tile overlapping the pixel rectangle
// [x, x+w) x [y, y+h).
func (e *Engine) MarkDirtyRect(pf, x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := floorDiv(x, TileSize), floorDiv(y, TileSize)
	x1, y1 := floorDiv(x+w-1, TileSize), floorDiv(y+h-1, TileSize)
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			e.MarkDirty(pf, tx, ty)
		}
	}
}

// tileRect returns the origin of tile i and its height, which is short
// in the bottom row when the playfield height is not a multiple of
// TileSize.
func (p *Playfield) tileRect(i int) (x, y, h int) {
	x = (i % p.cols) * TileSize
	y = (i / p.cols) * TileSize
	return x, y, min(TileSize, p.Spec.Height-y)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// RestoreDirty copies every dirty tile of the playfield's back buffer from
// backdrop and clears the buffer's dirty set. The first tile sets up the
// blitter, the remaining ones only rewrite pointers. The blitter runs in
// hog mode for the duration. The compositor must be owned by the caller.
// It returns the number of tiles restored.
func (e *Engine) RestoreDirty(pf int, backdrop raster.Surface) int {
	p := e.playfields[pf]
	back := p.Back()
	if back.Dirty.Empty() {
		return 0
	}

	e.comp.SetHog(true)
	n := 0
	var size hw.BlitSize
	full := false
	back.Dirty.Iterate(func(i int) {
		x, y, h := p.tileRect(i)
		switch {
		case h < TileSize:
			// the bottom row of a playfield whose height is not a
			// multiple of the tile size
			e.comp.RectSimple(back.Surface, backdrop, x, y, x, y, TileSize, h)
		case !full:
			size = e.comp.RectSimple(back.Surface, backdrop, x, y, x, y, TileSize, TileSize)
			full = true
		default:
			e.comp.RectSimpleFollowUp(back.Surface, backdrop, x, y, x, y, size)
		}
		n++
	})
	e.comp.SetHog(false)
	back.Dirty.Clear()
	return n
}

// BlitSurfaceToBuffers copies src into every buffer of a playfield at
// (x, y). It owns the compositor itself and is meant for stage setup.
func (e *Engine) BlitSurfaceToBuffers(src raster.Surface, pf, x, y int) {
	p := e.playfields[pf]
	w := min(src.Width, p.Spec.Width-x)
	h := min(src.Height, p.Spec.Height-y)
	if w <= 0 || h <= 0 {
		return
	}

	e.comp.Own()
	for _, b := range p.Buffers {
		e.comp.RectSimple(b.Surface, src, x, y, 0, 0, w, h)
	}
	e.comp.Disown()
}

// ClearDirty clears every dirty tile of the playfield's back buffer to
// color 0, for stages drawn without a backdrop. The compositor must be
// owned by the caller.
func (e *Engine) ClearDirty(pf int) int {
	p := e.playfields[pf]
	back := p.Back()
	n := 0
	back.Dirty.Iterate(func(i int) {
		x, y, h := p.tileRect(i)
		e.comp.ClearRect8(back.Surface, x, y, TileSize, h)
		n++
	})
	back.Dirty.Clear()
	return n
}
