// Package sprite holds the animated objects of a stage: BOBs drawn by the
// blitter into the display buffers and hardware sprites fetched by the
// display itself, together with the fixed capacity pools they live in.
package sprite

import "fmt"

// Vec is a displacement in pixels.
type Vec struct {
	X, Y int
}

func (v Vec) Zero() bool {
	return v.X == 0 && v.Y == 0
}

// Rect is a pixel rectangle [X, X+W) x [Y, Y+H).
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate returns r moved by v.
func (r Rect) Translate(v Vec) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// Overlaps reports whether both rectangles share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Inside reports whether r lies completely within a w x h area at the
// origin.
func (r Rect) Inside(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= w && r.Y+r.H <= h
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
