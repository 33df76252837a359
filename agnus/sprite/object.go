package sprite

import (
	"github.com/valerio/go-agnus/agnus/raster"
)

// Object is the state shared by BOBs and hardware sprites. Bounds is the
// position on the playfield and is only changed by ApplyTranslation:
// movement code writes Translation, and the frame pipeline applies it once
// per frame after it has used the old bounds.
type Object struct {
	// CollisionBox is relative to the top left corner of Bounds.
	CollisionBox Rect
	Bounds       Rect
	Translation  Vec
	Anim         Animation
}

// Move adds to the pending translation.
func (o *Object) Move(dx, dy int) {
	o.Translation.X += dx
	o.Translation.Y += dy
}

// Moving reports whether a translation is pending.
func (o *Object) Moving() bool {
	return !o.Translation.Zero()
}

// ApplyTranslation moves the bounds by the pending translation and clears
// it.
func (o *Object) ApplyTranslation() {
	o.Bounds = o.Bounds.Translate(o.Translation)
	o.Translation = Vec{}
}

// Hitbox returns the collision box in playfield coordinates.
func (o *Object) Hitbox() Rect {
	return o.CollisionBox.Translate(Vec{o.Bounds.X, o.Bounds.Y})
}

// Collides reports whether the hitboxes of both objects overlap.
func (o *Object) Collides(other *Object) bool {
	return o.Hitbox().Overlaps(other.Hitbox())
}

// Bob is a blitter object: its frames are tiles of a masked tile sheet,
// drawn into the back buffer of a playfield every frame.
type Bob struct {
	Object
	Sheet     *raster.TileSheet
	Playfield int
}

// NewBob returns a BOB at (x, y) showing the given tiles of sheet. Bounds
// and collision box cover a whole tile.
func NewBob(sheet *raster.TileSheet, x, y int, anim Animation) Bob {
	w, h := int(sheet.Header.TileWidth), int(sheet.Header.TileHeight)
	return Bob{
		Object: Object{
			CollisionBox: Rect{W: w, H: h},
			Bounds:       Rect{X: x, Y: y, W: w, H: h},
			Anim:         anim,
		},
		Sheet: sheet,
	}
}

// Tile returns the sheet grid position of the current frame. Frames are
// numbered row by row.
func (b *Bob) Tile() (col, row int) {
	cols := b.Sheet.Columns()
	if cols == 0 {
		return 0, 0
	}
	f := b.Anim.Frame()
	return f % cols, f / cols
}
