package hw

import (
	"fmt"
	"sync"

	"github.com/valerio/go-agnus/agnus/memory"
)

// Registers is the blitter's programmable state. Writing BLTSIZE (Start)
// executes the program described by the other fields.
type Registers struct {
	Con0 BltCon0
	Con1 BltCon1
	AFWM uint16
	ALWM uint16

	AMod int16
	BMod int16
	CMod int16
	DMod int16

	APt uint32
	BPt uint32
	CPt uint32
	DPt uint32

	// Data registers, used in place of a disabled channel's DMA fetch.
	ADat uint16
	BDat uint16
	CDat uint16
}

// Blitter is the capability the compositor programs. Own and Disown bracket
// every register write sequence; Start without ownership is a programming
// error.
type Blitter interface {
	Own()
	Disown()
	Wait()
	Regs() *Registers
	Start(size BlitSize)
	SetNasty(on bool)
}

// ownership is the lock shared by every Blitter implementation.
type ownership struct {
	mu    sync.Mutex
	owned bool
}

func (o *ownership) own() {
	o.mu.Lock()
	o.owned = true
}

func (o *ownership) disown() {
	if !o.owned {
		panic("hw: disown of a blitter that is not owned")
	}
	o.owned = false
	o.mu.Unlock()
}

func (o *ownership) mustOwn() {
	if !o.owned {
		panic("hw: blit started without owning the blitter")
	}
}

// SoftBlitter executes blits synchronously against chip RAM. It follows the
// ECS area mode data path: A is masked by AFWM/ALWM on the first and last
// word of each line, A and B are barrel shifted right with the previous
// word of the same channel feeding the vacated bits, the minterm combines
// A, B and C, and modulos are added to every enabled pointer at the end of
// each line. Blits of any height are accepted.
type SoftBlitter struct {
	ownership
	ram   *memory.ChipRAM
	regs  Registers
	nasty bool
	blits int
	words int
}

func NewSoftBlitter(ram *memory.ChipRAM) *SoftBlitter {
	return &SoftBlitter{ram: ram}
}

func (b *SoftBlitter) Own()    { b.own() }
func (b *SoftBlitter) Disown() { b.disown() }

// Wait returns immediately, blits complete inside Start.
func (b *SoftBlitter) Wait() {}

func (b *SoftBlitter) Regs() *Registers {
	return &b.regs
}

func (b *SoftBlitter) SetNasty(on bool) {
	b.nasty = on
}

// Nasty reports whether blitter hog mode is on.
func (b *SoftBlitter) Nasty() bool {
	return b.nasty
}

// Stats returns the number of blits and words processed so far.
func (b *SoftBlitter) Stats() (blits, words int) {
	return b.blits, b.words
}

func (b *SoftBlitter) Start(size BlitSize) {
	b.mustOwn()
	if size.Empty() {
		panic(fmt.Sprintf("hw: empty blit %s", size))
	}
	if size.Words > MaxBlitWords {
		panic(fmt.Sprintf("hw: blit %s wider than %d words", size, MaxBlitWords))
	}

	r := &b.regs
	useA, useB := r.Con0.Uses(ChanA), r.Con0.Uses(ChanB)
	useC, useD := r.Con0.Uses(ChanC), r.Con0.Uses(ChanD)
	ash, bsh := r.Con0.ShiftA(), r.Con1.ShiftB()
	lf := r.Con0.Minterm()

	apt, bpt := r.APt&^1, r.BPt&^1
	cpt, dpt := r.CPt&^1, r.DPt&^1
	var aPrev, bPrev uint16

	for y := 0; y < size.Lines; y++ {
		for x := 0; x < size.Words; x++ {
			if useA {
				r.ADat = b.ram.Read16(apt)
				apt += 2
			}
			if useB {
				r.BDat = b.ram.Read16(bpt)
				bpt += 2
			}
			if useC {
				r.CDat = b.ram.Read16(cpt)
				cpt += 2
			}

			a := r.ADat
			if x == 0 {
				a &= r.AFWM
			}
			if x == size.Words-1 {
				a &= r.ALWM
			}
			as := uint16((uint32(aPrev)<<16 | uint32(a)) >> ash)
			bs := uint16((uint32(bPrev)<<16 | uint32(r.BDat)) >> bsh)
			aPrev, bPrev = a, r.BDat

			d := lf.Eval(as, bs, r.CDat)
			if useD {
				b.ram.Write16(dpt, d)
				dpt += 2
			}
		}
		if useA {
			apt = uint32(int64(apt) + int64(r.AMod))
		}
		if useB {
			bpt = uint32(int64(bpt) + int64(r.BMod))
		}
		if useC {
			cpt = uint32(int64(cpt) + int64(r.CMod))
		}
		if useD {
			dpt = uint32(int64(dpt) + int64(r.DMod))
		}
	}

	r.APt, r.BPt, r.CPt, r.DPt = apt, bpt, cpt, dpt
	b.blits++
	b.words += size.Lines * size.Words
}
