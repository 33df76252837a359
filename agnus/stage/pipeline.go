package stage

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/sprite"
)

// Stats counts the work of one frame.
type Stats struct {
	Restored int
	Drawn    int
	Clipped  int
	Sprites  int
}

// Pipeline drives the current stage one frame at a time. Buffer swapping
// and vblank waiting are left to the caller, after Frame returns.
type Pipeline struct {
	disp  *display.Engine
	ram   *memory.ChipRAM
	input *input.Manager

	current *Stage
	next    *Stage
	exit    bool

	last Stats
}

func NewPipeline(disp *display.Engine, ram *memory.ChipRAM) *Pipeline {
	return &Pipeline{disp: disp, ram: ram}
}

// SetInput makes m visible to stage update callbacks.
func (p *Pipeline) SetInput(m *input.Manager) {
	p.input = m
}

// SetCurrent schedules s to become the current stage at the start of the
// next frame.
func (p *Pipeline) SetCurrent(s *Stage) {
	p.next = s
}

func (p *Pipeline) Current() *Stage {
	return p.current
}

// Exit sets the exit flag checked by the engine loop.
func (p *Pipeline) Exit() {
	p.exit = true
}

func (p *Pipeline) Exiting() bool {
	return p.exit
}

// Stats returns the counters of the last frame.
func (p *Pipeline) Stats() Stats {
	return p.last
}

// Frame runs one frame of the current stage:
//
//  1. the stage's update callback;
//  2. every BOB whose animation changed frame or that has a pending
//     translation marks the tiles under its current bounds dirty, then
//     applies the translation;
//  3. with the compositor owned, the dirty tiles of every back buffer are
//     restored and every BOB is drawn;
//  4. every hardware sprite is animated, moved and pointed at.
//
// A stage switch requested earlier takes effect before step 1.
func (p *Pipeline) Frame(elapsed int) error {
	if p.next != nil {
		next := p.next
		p.next = nil
		if err := p.enter(next); err != nil {
			return err
		}
	}

	s := p.current
	p.last = Stats{}
	if s == nil {
		return nil
	}

	if s.Update != nil {
		f := &Frame{
			Stage:   s,
			Display: p.disp,
			Back:    p.disp.BackBuffer(0),
			Elapsed: elapsed,
			Number:  p.disp.Frame(),
			Input:   p.input,
			pipe:    p,
		}
		s.Update(f)
	}

	p.markBobs(s)
	p.draw(s)
	p.updateSprites(s)
	return nil
}

func (p *Pipeline) enter(next *Stage) error {
	if prev := p.current; prev != nil {
		if prev.OnExit != nil {
			prev.OnExit(prev)
		}
		prev.reset()
		slog.Debug("Stage exited", "stage", prev.Name)
	}
	p.current = next

	for ch := 0; ch < hw.NumSprites; ch++ {
		p.disp.SetSpriteChannel(ch, p.disp.NullSprite())
	}

	if next.OnEnter != nil {
		if err := next.OnEnter(next); err != nil {
			return fmt.Errorf("entering stage %q: %w", next.Name, err)
		}
	}
	if next.Program != nil {
		if err := p.disp.SetProgram(next.Program); err != nil {
			return fmt.Errorf("stage %q program: %w", next.Name, err)
		}
	}
	if len(next.Palette) > 0 {
		p.disp.SetPalette(next.Palette, 0)
	}

	for pf := 0; pf < p.disp.NumPlayfields(); pf++ {
		for _, b := range p.disp.Playfield(pf).Buffers {
			b.Dirty.Clear()
		}
		if bd, ok := next.backdrop(pf); ok {
			p.disp.BlitSurfaceToBuffers(bd, pf, 0, 0)
		}
	}

	slog.Info("Stage entered", "stage", next.Name,
		"bobs", next.Bobs.Len(), "sprites", next.Sprites.Len())
	return nil
}

func (p *Pipeline) markBobs(s *Stage) {
	s.Bobs.Each(func(b *sprite.Bob) {
		changed := b.Anim.Advance()
		if !changed && !b.Moving() {
			return
		}
		r := b.Bounds
		p.disp.MarkDirtyRect(b.Playfield, r.X, r.Y, r.W, r.H)
		b.ApplyTranslation()
	})
}

// draw restores the back buffers and draws the BOBs. BOBs reaching outside
// their playfield are not drawn.
func (p *Pipeline) draw(s *Stage) {
	comp := p.disp.Compositor()
	comp.Own()
	defer comp.Disown()

	for pf := 0; pf < p.disp.NumPlayfields(); pf++ {
		if bd, ok := s.backdrop(pf); ok {
			p.last.Restored += p.disp.RestoreDirty(pf, bd)
		} else {
			p.last.Restored += p.disp.ClearDirty(pf)
		}
	}

	s.Bobs.Each(func(b *sprite.Bob) {
		pf := p.disp.Playfield(b.Playfield)
		if !b.Bounds.Inside(pf.Spec.Width, pf.Spec.Height) {
			p.last.Clipped++
			return
		}
		col, row := b.Tile()
		comp.DrawObject(pf.Back().Surface, b.Sheet, col, row, b.Bounds.X, b.Bounds.Y)
		p.last.Drawn++
	})
}

func (p *Pipeline) updateSprites(s *Stage) {
	ox, oy := copper.Origin(p.disp.Viewport().Width)
	s.Sprites.Each(func(hs *sprite.HWSprite) {
		hs.Anim.Advance()
		hs.ApplyTranslation()
		hs.Update(p.ram, p.disp, ox, oy)
		p.last.Sprites++
	})
}
