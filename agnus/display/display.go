// Package display owns the display buffers of every playfield and the
// active display program. Engine is the display context the rest of the
// engine passes around: there is no package level state.
package display

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/bitset"
	"github.com/valerio/go-agnus/agnus/blit"
	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

// TileSize is the edge of a dirty tracking tile in pixels.
const TileSize = 16

// ErrAllocation wraps failures to allocate display memory. It is fatal.
var ErrAllocation = errors.New("display allocation failed")

// ViewportSpec is the visible part of the display.
type ViewportSpec struct {
	Width  int
	Height int
	NTSC   bool
}

// PlayfieldSpec is the layout of one playfield's buffers.
type PlayfieldSpec struct {
	Width       int
	Height      int
	Depth       int
	Buffers     int
	Interleaved bool
}

func (s PlayfieldSpec) surface() raster.Surface {
	return raster.Surface{Width: s.Width, Height: s.Height, Depth: s.Depth, Interleaved: s.Interleaved}
}

// Buffer is one display buffer and the tiles of it that need restoring.
type Buffer struct {
	Surface raster.Surface
	Index   int
	Dirty   *bitset.Set
	handle  memory.Handle
}

// Playfield is a set of one or two buffers of which one is shown.
type Playfield struct {
	Spec    PlayfieldSpec
	Buffers []*Buffer
	front   int
	back    int
	cols    int
	rows    int
}

// TileColumns and TileRows give the size of the dirty tile grid.
func (p *Playfield) TileColumns() int { return p.cols }
func (p *Playfield) TileRows() int    { return p.rows }

// DoubleBuffered reports whether swapping changes the shown buffer.
func (p *Playfield) DoubleBuffered() bool {
	return len(p.Buffers) == 2
}

func (p *Playfield) Front() *Buffer { return p.Buffers[p.front] }
func (p *Playfield) Back() *Buffer  { return p.Buffers[p.back] }

func (p *Playfield) swap() {
	if !p.DoubleBuffered() {
		return
	}
	p.front, p.back = p.back, p.front
}

// Engine is the display context: buffers, program, null sprite and frame
// counter.
type Engine struct {
	alloc memory.Allocator
	comp  *blit.Compositor

	viewport   ViewportSpec
	playfields []*Playfield
	program    *copper.Program

	nullSprite memory.Handle
	nullAddr   uint32

	frame uint64
}

// New returns an engine without buffers. InitBuffers must be called before
// anything is drawn.
func New(alloc memory.Allocator, comp *blit.Compositor) *Engine {
	return &Engine{alloc: alloc, comp: comp, nullSprite: memory.InvalidHandle}
}

// Compositor returns the compositor drawing into the buffers.
func (e *Engine) Compositor() *blit.Compositor {
	return e.comp
}

func (e *Engine) Viewport() ViewportSpec {
	return e.viewport
}

func (e *Engine) sameLayout(vp ViewportSpec, specs []PlayfieldSpec) bool {
	if e.viewport != vp || len(e.playfields) != len(specs) {
		return false
	}
	for i, pf := range e.playfields {
		if pf.Spec != specs[i] {
			return false
		}
	}
	return true
}

// InitBuffers sets up the buffers for a display mode. Buffers of an
// identical mode are kept, only their dirty sets are cleared. Otherwise the
// old buffers are released and new ones allocated from chip memory; if
// that fails everything allocated so far is released and an error wrapping
// ErrAllocation is returned.
func (e *Engine) InitBuffers(vp ViewportSpec, specs []PlayfieldSpec) error {
	if len(specs) < 1 || len(specs) > 2 {
		return fmt.Errorf("%d playfields: %w", len(specs), ErrAllocation)
	}

	if e.playfields != nil && e.sameLayout(vp, specs) {
		for _, pf := range e.playfields {
			for _, b := range pf.Buffers {
				b.Dirty.Clear()
			}
		}
		slog.Debug("Display buffers reused", "playfields", len(specs))
		return e.initProgram()
	}

	e.releaseBuffers()
	e.viewport = vp

	for i, spec := range specs {
		pf, err := e.allocPlayfield(spec)
		if err != nil {
			e.releaseBuffers()
			return fmt.Errorf("playfield %d: %w: %w", i, ErrAllocation, err)
		}
		e.playfields = append(e.playfields, pf)
	}

	if e.nullSprite == memory.InvalidHandle {
		h, err := e.alloc.AllocateBlock(memory.Chip, 8)
		if err != nil {
			e.releaseBuffers()
			return fmt.Errorf("null sprite: %w: %w", ErrAllocation, err)
		}
		e.nullSprite = h
		e.nullAddr = e.alloc.BlockAddress(h)
	}

	for i, pf := range e.playfields {
		slog.Info("Display buffers allocated",
			"playfield", i, "width", pf.Spec.Width, "height", pf.Spec.Height,
			"depth", pf.Spec.Depth, "buffers", len(pf.Buffers), "interleaved", pf.Spec.Interleaved)
	}
	return e.initProgram()
}

func (e *Engine) allocPlayfield(spec PlayfieldSpec) (*Playfield, error) {
	if spec.Buffers < 1 || spec.Buffers > 2 {
		return nil, fmt.Errorf("%d buffers", spec.Buffers)
	}
	if err := spec.surface().Validate(); err != nil {
		return nil, err
	}

	pf := &Playfield{
		Spec: spec,
		cols: (spec.Width + TileSize - 1) / TileSize,
		rows: (spec.Height + TileSize - 1) / TileSize,
	}
	for i := 0; i < spec.Buffers; i++ {
		surf := spec.surface()
		h, err := e.alloc.AllocateBlock(memory.Chip, surf.Size())
		if err != nil {
			for _, b := range pf.Buffers {
				e.alloc.FreeBlock(b.handle)
			}
			return nil, err
		}
		surf.Addr = e.alloc.BlockAddress(h)
		pf.Buffers = append(pf.Buffers, &Buffer{
			Surface: surf,
			Index:   i,
			Dirty:   bitset.New(pf.cols * pf.rows),
			handle:  h,
		})
	}
	if spec.Buffers == 2 {
		pf.front, pf.back = 1, 0
	}
	return pf, nil
}

func (e *Engine) releaseBuffers() {
	for _, pf := range e.playfields {
		for _, b := range pf.Buffers {
			e.alloc.FreeBlock(b.handle)
		}
	}
	e.playfields = nil
}

// Shutdown releases every block the engine allocated.
func (e *Engine) Shutdown() {
	e.releaseBuffers()
	if e.nullSprite != memory.InvalidHandle {
		e.alloc.FreeBlock(e.nullSprite)
		e.nullSprite = memory.InvalidHandle
		e.nullAddr = 0
	}
	slog.Debug("Display shut down")
}

// NumPlayfields returns the number of playfields set up.
func (e *Engine) NumPlayfields() int {
	return len(e.playfields)
}

func (e *Engine) Playfield(pf int) *Playfield {
	return e.playfields[pf]
}

// FrontBuffer returns the shown buffer of a playfield.
func (e *Engine) FrontBuffer(pf int) *Buffer {
	return e.playfields[pf].Front()
}

// BackBuffer returns the buffer being drawn. For a single buffered
// playfield it is the front buffer.
func (e *Engine) BackBuffer(pf int) *Buffer {
	return e.playfields[pf].Back()
}

func (e *Engine) fronts() []raster.Surface {
	out := make([]raster.Surface, len(e.playfields))
	for i, pf := range e.playfields {
		out[i] = pf.Front().Surface
	}
	return out
}

// SwapBuffers exchanges front and back of every double buffered playfield
// and patches the new front buffers into the display program.
func (e *Engine) SwapBuffers() {
	for _, pf := range e.playfields {
		pf.swap()
	}
	if e.program != nil {
		if err := copper.PatchFrontBuffers(e.program, e.fronts()); err != nil {
			panic(fmt.Sprintf("display: patching validated program: %v", err))
		}
	}
}

// Frame returns the number of frames completed.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// AdvanceFrame counts a completed frame.
func (e *Engine) AdvanceFrame() {
	e.frame++
}
