// Package video models the display side of the chipset: it runs a display
// program once per frame, fetches bitplane and sprite data from chip RAM
// the way the display DMA does and composes the display window into an
// RGBA frame buffer.
package video

import (
	"errors"
	"fmt"

	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/memory"
)

// Beam lines per frame.
const (
	PALLines  = 313
	NTSCLines = 263
)

// ErrWindow is returned when a program leaves the display window empty.
var ErrWindow = errors.New("empty display window")

const (
	spriteColorBase = 16
	pf2ColorBase    = 8
	// widest low resolution fetch, DDFSTRT $18 to DDFSTOP $D8
	maxFetchWords = 25
)

type spriteDMA struct {
	ptr uint32
	ctl hw.SpriteControl
	// armed while the channel waits for or shows its current sprite
	armed bool
	// data words of the current line, valid when shown is set
	a, b  uint16
	shown bool
	// the last line was shown, the next control words are read on the
	// following line
	pending bool
}

// Display scans out frames. Register state persists across frames, as it
// does on hardware; the program rewrites it at the start of each one.
type Display struct {
	ram  *memory.ChipRAM
	regs hw.Custom
	ntsc bool

	fb       *FrameBuffer
	priority *SpritePriorityBuffer
	planes   [hw.MaxPlanes][]uint16
	sprites  [hw.NumSprites]spriteDMA
	loaded   [hw.NumSprites]uint32
}

func New(ram *memory.ChipRAM, ntsc bool) *Display {
	return &Display{
		ram:      ram,
		ntsc:     ntsc,
		fb:       NewFrameBuffer(0, 0),
		priority: NewSpritePriorityBuffer(0),
	}
}

// Registers exposes the custom register file.
func (d *Display) Registers() *hw.Custom {
	return &d.regs
}

// FrameBuffer returns the last frame rendered.
func (d *Display) FrameBuffer() *FrameBuffer {
	return d.fb
}

func (d *Display) lines() int {
	if d.ntsc {
		return NTSCLines
	}
	return PALLines
}

// Render runs one frame of the display program and returns the display
// window as RGBA pixels. The returned buffer is reused by the next call.
//
// The copper is evaluated at the start of each line: a WAIT for a position
// inside a line is satisfied from the following line on.
func (d *Display) Render(program []uint16) (*FrameBuffer, error) {
	ins, err := copper.Decode(program)
	if err != nil {
		return nil, fmt.Errorf("scan-out: %w", err)
	}

	for i := range d.loaded {
		d.loaded[i] = ^uint32(0)
	}

	pc := 0
	var win hw.DisplayWindow
	top, height := 0, 0
	for line := 0; line < d.lines(); line++ {
		pc = d.runCopper(ins, pc, line)

		if line == 0 {
			win = hw.DisplayWindow{Start: d.regs.Read(hw.DIWSTRT), Stop: d.regs.Read(hw.DIWSTOP)}
			top = win.VStart()
			height = min(win.Height(), d.lines()-top)
			if win.Width() <= 0 || height <= 0 {
				return nil, fmt.Errorf("window %04x-%04x: %w", win.Start, win.Stop, ErrWindow)
			}
			d.fb.resize(win.Width(), height)
			d.priority.resize(win.Width())
		}

		d.reloadSprites()
		d.fetchSprites(line)
		if line >= top && line < top+height {
			d.renderLine(line-top, win)
		}
	}
	return d.fb, nil
}

// runCopper executes instructions from pc until it reaches a WAIT the beam
// has not yet passed at the start of line, or the end of the program.
func (d *Display) runCopper(ins []copper.Instruction, pc, line int) int {
	for pc < len(ins) {
		in := ins[pc]
		switch in.Kind {
		case copper.KindMove:
			d.regs.Write(in.Reg, in.Value)
		case copper.KindWait:
			if !beamPassed(in, line) {
				return pc
			}
		case copper.KindSkip:
			if beamPassed(in, line) {
				pc++
			}
		case copper.KindEnd:
			return pc
		}
		pc++
	}
	return pc
}

// beamPassed compares the low 8 bits of the line, as the copper does. The
// top bit of the vertical position cannot be masked.
func beamPassed(in copper.Instruction, line int) bool {
	mask := in.VMask | 0x80
	v := uint8(line) & mask
	want := in.VPos & mask
	if v != want {
		return v > want
	}
	return in.HPos&in.HMask == 0
}

// reloadSprites restarts the DMA of every channel whose pointer the
// program changed.
func (d *Display) reloadSprites() {
	for ch := range d.sprites {
		ptr := d.regs.Pointer(hw.SprPtH(ch))
		if ptr == d.loaded[ch] {
			continue
		}
		d.loaded[ch] = ptr
		d.loadControl(ch, ptr)
	}
}

func (d *Display) loadControl(ch int, ptr uint32) {
	s := &d.sprites[ch]
	s.ctl = hw.DecodeSpriteControl(d.ram.Read16(ptr), d.ram.Read16(ptr+2))
	s.ptr = ptr + 4
	s.armed = s.ctl.VStop > s.ctl.VStart
	s.shown = false
	s.pending = false
}

// fetchSprites reads the data words of every sprite on this line. On the
// line after the last line of a sprite the channel reads the next pair of
// control words, which either start another sprite further down or end the
// channel.
func (d *Display) fetchSprites(line int) {
	for ch := range d.sprites {
		s := &d.sprites[ch]
		s.shown = false
		if s.pending {
			next := hw.DecodeSpriteControl(d.ram.Read16(s.ptr), d.ram.Read16(s.ptr+2))
			s.ctl = next
			s.ptr += 4
			s.armed = next.VStop > next.VStart && next.VStart >= line
			s.pending = false
		}
		if !s.armed || line < s.ctl.VStart || line >= s.ctl.VStop {
			continue
		}
		s.a, s.b = d.ram.Read16(s.ptr), d.ram.Read16(s.ptr+2)
		s.ptr += 4
		s.shown = true
		if line == s.ctl.VStop-1 {
			s.armed = false
			s.pending = true
		}
	}
}

func spritePixel(a, b uint16, i int) uint8 {
	sh := 15 - i
	return uint8(a>>sh&1) | uint8(b>>sh&1)<<1
}

// claimSprites fills the priority buffer for the current line. An odd
// channel with its attach bit set combines with the even channel below it
// into a 15 color sprite at the even channel's position.
func (d *Display) claimSprites(win hw.DisplayWindow) {
	d.priority.Clear()
	for ch := 0; ch < hw.NumSprites; ch++ {
		s := &d.sprites[ch]
		if !s.shown {
			continue
		}
		attached := false
		var odd *spriteDMA
		if ch%2 == 0 {
			if o := &d.sprites[ch+1]; o.shown && o.ctl.Attached {
				attached, odd = true, o
			}
		} else if s.ctl.Attached && d.sprites[ch-1].shown {
			continue
		}

		x0 := s.ctl.HStart - win.HStart()
		for i := 0; i < 16; i++ {
			var color uint8
			if attached {
				idx := spritePixel(s.a, s.b, i) | spritePixel(odd.a, odd.b, i)<<2
				if idx == 0 {
					continue
				}
				color = spriteColorBase + idx
			} else {
				idx := spritePixel(s.a, s.b, i)
				if idx == 0 {
					continue
				}
				color = spriteColorBase + uint8(ch/2)*4 + idx
			}
			d.priority.TryClaimPixel(x0+i, ch, color)
		}
	}
}

// fetchPlanes reads one line of every enabled bitplane and advances the
// bitplane pointers past it and the modulo.
func (d *Display) fetchPlanes(depth, words int) {
	mod1 := int64(int16(d.regs.Read(hw.BPL1MOD)))
	mod2 := int64(int16(d.regs.Read(hw.BPL2MOD)))
	for p := 0; p < depth; p++ {
		if cap(d.planes[p]) < words {
			d.planes[p] = make([]uint16, words)
		}
		row := d.planes[p][:words]
		hi := hw.BplPtH(p)
		ptr := d.regs.Pointer(hi)
		for i := range row {
			row[i] = d.ram.Read16(ptr + uint32(2*i))
		}
		d.planes[p] = row

		mod := mod1
		if p%2 == 1 {
			mod = mod2
		}
		next := uint32(int64(ptr) + int64(2*words) + mod)
		d.regs.Write(hi, uint16(next>>16))
		d.regs.Write(hi+2, uint16(next))
	}
}

func (d *Display) planeBit(p, x, delay int) uint8 {
	sx := x - delay
	if sx < 0 {
		return 0
	}
	row := d.planes[p]
	w := sx >> 4
	if w >= len(row) {
		return 0
	}
	return uint8(row[w]>>(15-sx&15)) & 1
}

func (d *Display) renderLine(y int, win hw.DisplayWindow) {
	con0 := hw.BplCon0(d.regs.Read(hw.BPLCON0))
	con1 := d.regs.Read(hw.BPLCON1)
	con2 := d.regs.Read(hw.BPLCON2)
	fetch := hw.DataFetch{Start: d.regs.Read(hw.DDFSTRT), Stop: d.regs.Read(hw.DDFSTOP)}

	depth := min(con0.Depth(), hw.MaxPlanes)
	dual := con0.DualPlayfield()
	d.fetchPlanes(depth, min(fetch.Words(), maxFetchWords))
	d.claimSprites(win)

	delay1, delay2 := int(con1&0xf), int(con1>>4&0xf)
	pf1Pri, pf2Pri := int(con2&7), int(con2>>3&7)
	pf2Front := con2&hw.BplCon2PF2Pri != 0

	for x := 0; x < d.fb.Width(); x++ {
		var pf1, pf2 uint8
		for p := 0; p < depth; p++ {
			if p%2 == 0 {
				if dual {
					pf1 |= d.planeBit(p, x, delay1) << (p / 2)
				} else {
					pf1 |= d.planeBit(p, x, delay1) << p
				}
			} else {
				if dual {
					pf2 |= d.planeBit(p, x, delay2) << (p / 2)
				} else {
					pf1 |= d.planeBit(p, x, delay2) << p
				}
			}
		}

		// front playfield pixel and the sprite priority code it has
		color, pri, opaque := uint8(0), pf1Pri, false
		switch {
		case !dual:
			color, opaque = pf1, pf1 != 0
		case pf2Front && pf2 != 0, pf1 == 0 && pf2 != 0:
			color, pri, opaque = pf2ColorBase+pf2, pf2Pri, true
		case pf1 != 0:
			color, opaque = pf1, true
		}

		if ch, sc := d.priority.GetOwner(x); ch >= 0 && (!opaque || ch/2 < pri) {
			color = sc
		}
		d.fb.SetPixel(x, y, RGBA(d.regs.Read(hw.Color(int(color)))))
	}
}
