package copper

import (
	"errors"
	"fmt"

	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

// ErrMode is returned for display modes the patcher has no geometry for.
var ErrMode = errors.New("unsupported display mode")

// Display origin: the beam position of the top left viewport pixel.
const (
	OriginY       = 0x2c
	OriginX320    = 0x81
	OriginX288    = 0x91
	bplCon2Sprite = 0x0024 // sprites in front of both playfields
)

// Mode describes the display the program drives.
type Mode struct {
	// Width is the viewport width, 320 or 288.
	Width int
	NTSC  bool
	// Playfields lists the layout of each playfield's buffers: one entry
	// for a single playfield display, two for dual playfield.
	Playfields []raster.Surface
}

// DualPlayfield reports whether the mode uses two playfields.
func (m Mode) DualPlayfield() bool {
	return len(m.Playfields) == 2
}

// Depth returns the total number of bitplanes fetched.
func (m Mode) Depth() int {
	d := 0
	for _, pf := range m.Playfields {
		d += pf.Depth
	}
	return d
}

// Geometry returns the display window and data fetch for a viewport width.
func Geometry(width int, ntsc bool) (hw.DisplayWindow, hw.DataFetch, error) {
	var win hw.DisplayWindow
	var fetch hw.DataFetch
	switch width {
	case 320:
		win.Start, win.Stop = 0x2c81, 0x2cc1
		fetch.Start, fetch.Stop = 0x0038, 0x00d0
	case 288:
		win.Start, win.Stop = 0x2c91, 0x2cb1
		fetch.Start, fetch.Stop = 0x0040, 0x00c8
	default:
		return win, fetch, fmt.Errorf("viewport width %d: %w", width, ErrMode)
	}
	if ntsc {
		win.Stop = 0xf400 | win.Stop&0x00ff
	}
	return win, fetch, nil
}

// Origin returns the beam position of the top left viewport pixel, the
// reference for hardware sprite coordinates.
func Origin(width int) (x, y int) {
	if width == 288 {
		return OriginX288, OriginY
	}
	return OriginX320, OriginY
}

// modulo is the number of bytes the display skips at the end of each
// fetched line: the part of a buffer row wider than the viewport, plus
// the other planes' rows of an interleaved buffer.
func modulo(s raster.Surface, viewportWidth int) uint16 {
	return uint16(s.Stride() - viewportWidth/8)
}

// Init writes the mode into the program: window and fetch geometry, every
// sprite channel pointed at the null sprite, bitplane control and modulos.
// The current front buffers are then patched in.
func Init(p *Program, mode Mode, fronts []raster.Surface, nullSprite uint32) error {
	if n := len(mode.Playfields); n < 1 || n > 2 {
		return fmt.Errorf("%d playfields: %w", n, ErrMode)
	}
	if mode.Depth() > hw.MaxPlanes {
		return fmt.Errorf("%d bitplanes: %w", mode.Depth(), ErrMode)
	}
	for _, pf := range mode.Playfields {
		if pf.Width < mode.Width {
			return fmt.Errorf("playfield width %d narrower than viewport %d: %w", pf.Width, mode.Width, ErrMode)
		}
	}
	win, fetch, err := Geometry(mode.Width, mode.NTSC)
	if err != nil {
		return err
	}

	p.set(p.Info.FMode, 0)
	p.set(p.Info.DiwStrt, win.Start)
	p.set(p.Info.DiwStop, win.Stop)
	p.set(p.Info.DdfStrt, fetch.Start)
	p.set(p.Info.DdfStop, fetch.Stop)

	for i := 0; i < hw.NumSprites; i++ {
		p.SetSpriteChannel(i, nullSprite)
	}

	p.set(p.Info.BplCon0, uint16(hw.NewBplCon0(mode.Depth(), mode.DualPlayfield())))
	p.set(p.Info.BplCon1, 0)
	p.set(p.Info.BplCon2, bplCon2Sprite)

	mod1 := modulo(mode.Playfields[0], mode.Width)
	mod2 := mod1
	if mode.DualPlayfield() {
		mod2 = modulo(mode.Playfields[1], mode.Width)
	}
	p.set(p.Info.Bpl1Mod, mod1)
	p.set(p.Info.Bpl2Mod, mod2)

	return PatchFrontBuffers(p, fronts)
}

// PatchFrontBuffers writes the bitplane pointers of the front buffers. With
// one playfield its planes map in order; with two, playfield 1 feeds the
// odd bitplanes (BPL1, 3, 5) and playfield 2 the even ones (BPL2, 4, 6).
// Unused pointers are left untouched.
func PatchFrontBuffers(p *Program, fronts []raster.Surface) error {
	switch len(fronts) {
	case 1:
		s := fronts[0]
		if s.Depth > hw.MaxPlanes {
			return fmt.Errorf("%d planes: %w", s.Depth, ErrMode)
		}
		for j := 0; j < s.Depth; j++ {
			p.setPointer(p.Info.Bpl1PtH+j*4, s.PlaneAddr(j))
		}
	case 2:
		for k, s := range fronts {
			if s.Depth > hw.MaxPlanes/2 {
				return fmt.Errorf("playfield %d has %d planes: %w", k+1, s.Depth, ErrMode)
			}
			for j := 0; j < s.Depth; j++ {
				p.setPointer(p.Info.Bpl1PtH+(2*j+k)*4, s.PlaneAddr(j))
			}
		}
	default:
		return fmt.Errorf("%d front buffers: %w", len(fronts), ErrMode)
	}
	return nil
}
