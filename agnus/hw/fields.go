package hw

import (
	"fmt"

	"github.com/valerio/go-agnus/agnus/bit"
)

// Channel is a blitter DMA channel enable bit in BLTCON0.
type Channel uint16

const (
	ChanD Channel = 0x0100
	ChanC Channel = 0x0200
	ChanB Channel = 0x0400
	ChanA Channel = 0x0800

	ChansAD   = ChanA | ChanD
	ChansACD  = ChanA | ChanC | ChanD
	ChansABD  = ChanA | ChanB | ChanD
	ChansCD   = ChanC | ChanD
	ChansABCD = ChanA | ChanB | ChanC | ChanD
)

// Minterm is the blitter logic function: bit n is the output for the
// input combination n = A<<2 | B<<1 | C.
type Minterm uint8

const (
	// MintermCopy is D = A.
	MintermCopy Minterm = 0xF0
	// MintermCookieCut is D = AB + ¬AC, A being the mask.
	MintermCookieCut Minterm = 0xCA
	// MintermOr is D = A + B.
	MintermOr Minterm = 0xFC
	// MintermClear is D = ¬AC, clearing every bit set in A.
	MintermClear Minterm = 0x0A
)

// Eval applies the logic function to one word of each source.
func (m Minterm) Eval(a, b, c uint16) uint16 {
	var d uint16
	for i := 0; i < 8; i++ {
		if m&(1<<i) == 0 {
			continue
		}
		ta, tb, tc := a, b, c
		if i&4 == 0 {
			ta = ^a
		}
		if i&2 == 0 {
			tb = ^b
		}
		if i&1 == 0 {
			tc = ^c
		}
		d |= ta & tb & tc
	}
	return d
}

// BltCon0 layout: ASH3-0 (15-12), USEA/B/C/D (11-8), LF7-0 (7-0).
type BltCon0 uint16

func NewBltCon0(shiftA uint8, channels Channel, minterm Minterm) BltCon0 {
	v := bit.PutField16(0, uint16(shiftA), 15, 12)
	return BltCon0(v | uint16(channels)&0x0f00 | uint16(minterm))
}

func (c BltCon0) ShiftA() uint8 {
	return uint8(bit.Field16(uint16(c), 15, 12))
}

func (c BltCon0) Uses(ch Channel) bool {
	return uint16(c)&uint16(ch) == uint16(ch)
}

func (c BltCon0) Channels() Channel {
	return Channel(uint16(c) & 0x0f00)
}

func (c BltCon0) Minterm() Minterm {
	return Minterm(c)
}

func (c BltCon0) String() string {
	return fmt.Sprintf("BLTCON0{ash=%d ch=%03x lf=%02x}", c.ShiftA(), uint16(c.Channels())>>8, uint8(c.Minterm()))
}

// BltCon1 layout in area mode: BSH3-0 (15-12), the rest zero.
type BltCon1 uint16

func NewBltCon1(shiftB uint8) BltCon1 {
	return BltCon1(bit.PutField16(0, uint16(shiftB), 15, 12))
}

func (c BltCon1) ShiftB() uint8 {
	return uint8(bit.Field16(uint16(c), 15, 12))
}

const (
	// MaxBlitLines is the tallest blit a single BLTSIZE write can describe.
	MaxBlitLines = 1024
	// MaxBlitWords is the widest blit in words.
	MaxBlitWords = 64
)

// BlitSize is the blit descriptor: height in lines and width in words.
type BlitSize struct {
	Lines int
	Words int
}

// Packed returns the BLTSIZE register value, where 0 encodes the maximum
// in either field.
func (s BlitSize) Packed() uint16 {
	return uint16(s.Lines&0x3ff)<<6 | uint16(s.Words&0x3f)
}

// UnpackBlitSize decodes a BLTSIZE register value.
func UnpackBlitSize(v uint16) BlitSize {
	s := BlitSize{Lines: int(v >> 6), Words: int(v & 0x3f)}
	if s.Lines == 0 {
		s.Lines = MaxBlitLines
	}
	if s.Words == 0 {
		s.Words = MaxBlitWords
	}
	return s
}

func (s BlitSize) Empty() bool {
	return s.Lines <= 0 || s.Words <= 0
}

func (s BlitSize) String() string {
	return fmt.Sprintf("%dx%d", s.Words, s.Lines)
}

// BplCon0 layout: BPU2-0 (14-12), DBLPF (10), COLOR (9).
type BplCon0 uint16

const (
	bplColor     = 0x0200
	bplDualPFBit = 10
)

func NewBplCon0(depth int, dualPlayfield bool) BplCon0 {
	v := bit.PutField16(bplColor, uint16(depth), 14, 12)
	if dualPlayfield {
		v = bit.Set16(bplDualPFBit, v)
	}
	return BplCon0(v)
}

func (c BplCon0) Depth() int {
	return int(bit.Field16(uint16(c), 14, 12))
}

func (c BplCon0) DualPlayfield() bool {
	return bit.IsSet16(bplDualPFBit, uint16(c))
}

// BplCon2PF2Pri puts playfield 2 in front of playfield 1.
const BplCon2PF2Pri uint16 = 0x0040

// DisplayWindow is the DIWSTRT/DIWSTOP pair. The stop position carries
// implied high bits: bit 8 of the horizontal stop is always set and bit 8
// of the vertical stop is the inverse of its bit 7.
type DisplayWindow struct {
	Start uint16
	Stop  uint16
}

func (w DisplayWindow) HStart() int {
	return int(bit.Low(w.Start))
}

func (w DisplayWindow) VStart() int {
	return int(bit.High(w.Start))
}

func (w DisplayWindow) HStop() int {
	return 0x100 | int(bit.Low(w.Stop))
}

func (w DisplayWindow) VStop() int {
	v := uint16(bit.High(w.Stop))
	if !bit.IsSet16(7, v) {
		v = bit.Set16(8, v)
	}
	return int(v)
}

// Width returns the window width in low resolution pixels.
func (w DisplayWindow) Width() int {
	return w.HStop() - w.HStart()
}

// Height returns the window height in lines.
func (w DisplayWindow) Height() int {
	return w.VStop() - w.VStart()
}

// DataFetch is the DDFSTRT/DDFSTOP pair.
type DataFetch struct {
	Start uint16
	Stop  uint16
}

// Words returns the number of words fetched per line per plane in low
// resolution.
func (f DataFetch) Words() int {
	return int(f.Stop-f.Start)/8 + 1
}

// SpriteControl is the position of a hardware sprite in display
// coordinates, encoded in the two control words at the head of the
// sprite's data.
type SpriteControl struct {
	HStart   int
	VStart   int
	VStop    int
	Attached bool
}

// ControlWords returns the POS and CTL words.
func (s SpriteControl) ControlWords() (pos, ctl uint16) {
	pos = uint16(s.VStart&0xff)<<8 | uint16(s.HStart>>1)&0xff
	ctl = uint16(s.VStop&0xff)<<8 |
		uint16((s.VStart>>8)&1)<<2 |
		uint16((s.VStop>>8)&1)<<1 |
		uint16(s.HStart&1)
	if s.Attached {
		ctl = bit.Set16(spriteAttachBit, ctl)
	}
	return pos, ctl
}

// attach bit of the odd channel's CTL word
const spriteAttachBit = 7

// DecodeSpriteControl is the inverse of ControlWords.
func DecodeSpriteControl(pos, ctl uint16) SpriteControl {
	return SpriteControl{
		HStart:   int(pos&0xff)<<1 | int(ctl&1),
		VStart:   int(pos>>8) | int((ctl>>2)&1)<<8,
		VStop:    int(ctl>>8) | int((ctl>>1)&1)<<8,
		Attached: bit.IsSet16(spriteAttachBit, ctl),
	}
}
