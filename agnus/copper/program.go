package copper

import (
	"fmt"

	"github.com/valerio/go-agnus/agnus/bit"
	"github.com/valerio/go-agnus/agnus/hw"
)

// ListInfo holds the word index of the MOVE instruction of every register
// the patcher rewrites. The value word is the one right after.
type ListInfo struct {
	FMode   int
	DiwStrt int
	DiwStop int
	DdfStrt int
	DdfStop int
	BplCon0 int
	BplCon1 int
	BplCon2 int
	Bpl1Mod int
	Bpl2Mod int
	// first of hw.MaxPlanes hi/lo pointer pairs
	Bpl1PtH int
	// first of hw.NumSprites hi/lo pointer pairs
	Spr0PtH int
	// first of hw.NumColors palette moves
	Color00 int
}

// Program is a display program: instruction words plus the index table of
// the words the patcher rewrites. Its layout is fixed once built; patching
// only changes values.
type Program struct {
	Words []uint16
	Info  ListInfo
}

// Build returns the standard program. extra instructions, such as per-line
// color changes, are placed after the fixed part and before the end.
func Build(extra ...Instruction) *Program {
	var b Builder
	var info ListInfo

	info.FMode = b.Add(Move(hw.FMODE, 0))
	info.DiwStrt = b.Add(Move(hw.DIWSTRT, 0))
	info.DiwStop = b.Add(Move(hw.DIWSTOP, 0))
	info.DdfStrt = b.Add(Move(hw.DDFSTRT, 0))
	info.DdfStop = b.Add(Move(hw.DDFSTOP, 0))
	info.BplCon0 = b.Add(Move(hw.BPLCON0, 0))
	info.BplCon1 = b.Add(Move(hw.BPLCON1, 0))
	info.BplCon2 = b.Add(Move(hw.BPLCON2, 0))
	info.Bpl1Mod = b.Add(Move(hw.BPL1MOD, 0))
	info.Bpl2Mod = b.Add(Move(hw.BPL2MOD, 0))

	info.Bpl1PtH = len(b.Words())
	for i := 0; i < hw.MaxPlanes; i++ {
		b.Add(Move(hw.BplPtH(i), 0))
		b.Add(Move(hw.BplPtH(i)+2, 0))
	}
	info.Spr0PtH = len(b.Words())
	for i := 0; i < hw.NumSprites; i++ {
		b.Add(Move(hw.SprPtH(i), 0))
		b.Add(Move(hw.SprPtH(i)+2, 0))
	}
	info.Color00 = len(b.Words())
	for i := 0; i < hw.NumColors; i++ {
		b.Add(Move(hw.Color(i), 0))
	}

	for _, in := range extra {
		b.Add(in)
	}
	b.Add(End())

	return &Program{Words: b.Words(), Info: info}
}

// Value returns the value word of the MOVE at index idx.
func (p *Program) Value(idx int) uint16 {
	return p.Words[idx+1]
}

func (p *Program) set(idx int, value uint16) {
	p.Words[idx+1] = value
}

func (p *Program) setPointer(idx int, addr uint32) {
	p.set(idx, bit.HighWord(addr))
	p.set(idx+2, bit.LowWord(addr))
}

// Pointer reads back the hi/lo pointer pair whose high MOVE sits at idx.
func (p *Program) Pointer(idx int) uint32 {
	return bit.CombineWords(p.Value(idx), p.Value(idx+2))
}

// BitplanePointer returns the address currently patched into bitplane i.
func (p *Program) BitplanePointer(i int) uint32 {
	return p.Pointer(p.Info.Bpl1PtH + i*4)
}

// SpritePointer returns the address currently patched into sprite channel i.
func (p *Program) SpritePointer(i int) uint32 {
	return p.Pointer(p.Info.Spr0PtH + i*4)
}

// Color returns palette entry i.
func (p *Program) Color(i int) uint16 {
	return p.Value(p.Info.Color00 + i*2)
}

// SetPalette writes colors into the palette starting at offset. Entries
// past the last palette register are dropped.
func (p *Program) SetPalette(colors []uint16, offset int) {
	for i, c := range colors {
		idx := offset + i
		if idx < 0 || idx >= hw.NumColors {
			continue
		}
		p.set(p.Info.Color00+idx*2, c&0x0fff)
	}
}

// SetSpriteChannel points sprite channel i at the sprite data at addr.
func (p *Program) SetSpriteChannel(i int, addr uint32) {
	if i < 0 || i >= hw.NumSprites {
		panic(fmt.Sprintf("copper: sprite channel %d out of range", i))
	}
	p.setPointer(p.Info.Spr0PtH+i*4, addr)
}

// Validate checks that every index of the table names a MOVE to the
// expected register.
func (p *Program) Validate() error {
	check := func(idx int, reg hw.Register) error {
		if idx < 0 || idx+1 >= len(p.Words) || hw.Register(p.Words[idx]) != reg {
			return fmt.Errorf("index %d is not a MOVE to %s: %w", idx, reg, ErrDecode)
		}
		return nil
	}
	fixed := []struct {
		idx int
		reg hw.Register
	}{
		{p.Info.DiwStrt, hw.DIWSTRT}, {p.Info.DiwStop, hw.DIWSTOP},
		{p.Info.DdfStrt, hw.DDFSTRT}, {p.Info.DdfStop, hw.DDFSTOP},
		{p.Info.BplCon0, hw.BPLCON0}, {p.Info.Bpl1Mod, hw.BPL1MOD},
		{p.Info.Bpl1PtH, hw.BPL1PTH}, {p.Info.Spr0PtH, hw.SPR0PTH},
		{p.Info.Color00, hw.COLOR00},
	}
	for _, f := range fixed {
		if err := check(f.idx, f.reg); err != nil {
			return err
		}
	}
	_, err := Decode(p.Words)
	return err
}
