package display

import (
	"fmt"

	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/raster"
)

func (e *Engine) mode() copper.Mode {
	layouts := make([]raster.Surface, len(e.playfields))
	for i, pf := range e.playfields {
		layouts[i] = pf.Front().Surface
	}
	return copper.Mode{Width: e.viewport.Width, NTSC: e.viewport.NTSC, Playfields: layouts}
}

func (e *Engine) initProgram() error {
	if e.program == nil {
		e.program = copper.Build()
	}
	if err := copper.Init(e.program, e.mode(), e.fronts(), e.nullAddr); err != nil {
		return fmt.Errorf("display program: %w", err)
	}
	return nil
}

// SetProgram replaces the active display program and initialises it for
// the current mode. Palette entries already in p are kept.
func (e *Engine) SetProgram(p *copper.Program) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.program = p
	if e.playfields == nil {
		return nil
	}
	return e.initProgram()
}

// Program returns the active display program.
func (e *Engine) Program() *copper.Program {
	return e.program
}

// SetPalette writes colors into the active program's palette at offset.
func (e *Engine) SetPalette(colors []uint16, offset int) {
	e.program.SetPalette(colors, offset)
}

// SetSpriteChannel points a sprite channel at sprite data in chip memory.
func (e *Engine) SetSpriteChannel(channel int, addr uint32) {
	e.program.SetSpriteChannel(channel, addr)
}

// NullSprite returns the address of the empty sprite unused channels
// point at.
func (e *Engine) NullSprite() uint32 {
	return e.nullAddr
}
