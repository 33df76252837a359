// Package copper builds and patches display programs: flat lists of copper
// instruction words that set the display registers once per frame.
package copper

import (
	"errors"
	"fmt"

	"github.com/valerio/go-agnus/agnus/bit"
	"github.com/valerio/go-agnus/agnus/hw"
)

// ErrDecode is returned for words that do not form a valid program.
var ErrDecode = errors.New("invalid copper list")

// Kind tells the three instruction forms apart.
type Kind uint8

const (
	KindMove Kind = iota
	KindWait
	KindSkip
	KindEnd
)

// Instruction is one decoded copper instruction.
type Instruction struct {
	Kind  Kind
	Reg   hw.Register
	Value uint16
	// wait/skip beam position and comparison masks
	VPos, HPos   uint8
	VMask, HMask uint8
}

// Move writes value to reg.
func Move(reg hw.Register, value uint16) Instruction {
	return Instruction{Kind: KindMove, Reg: reg, Value: value}
}

// Wait stalls until the beam reaches (vpos, hpos).
func Wait(vpos, hpos uint8) Instruction {
	return Instruction{Kind: KindWait, VPos: vpos, HPos: hpos &^ 1, VMask: 0x7f, HMask: 0xfe}
}

// End is the conventional end of list: a wait that never completes.
func End() Instruction {
	return Instruction{Kind: KindEnd}
}

// Words encodes the instruction.
func (in Instruction) Words() (uint16, uint16) {
	switch in.Kind {
	case KindMove:
		return uint16(in.Reg) & 0x01fe, in.Value
	case KindWait, KindSkip:
		first := uint16(in.VPos)<<8 | uint16(in.HPos&0xfe) | 1
		second := 0x8000 | uint16(in.VMask&0x7f)<<8 | uint16(in.HMask&0xfe)
		if in.Kind == KindSkip {
			second = bit.Set16(0, second)
		}
		return first, second
	default:
		return 0xffff, 0xfffe
	}
}

func (in Instruction) String() string {
	switch in.Kind {
	case KindMove:
		return fmt.Sprintf("MOVE %s, $%04x", in.Reg, in.Value)
	case KindWait:
		return fmt.Sprintf("WAIT v=$%02x h=$%02x", in.VPos, in.HPos)
	case KindSkip:
		return fmt.Sprintf("SKIP v=$%02x h=$%02x", in.VPos, in.HPos)
	default:
		return "END"
	}
}

// Decode parses a list of instruction words up to and including the end
// marker. Words after the end marker are ignored.
func Decode(words []uint16) ([]Instruction, error) {
	if len(words)%2 != 0 {
		return nil, fmt.Errorf("%d words, not a whole number of instructions: %w", len(words), ErrDecode)
	}
	var out []Instruction
	for i := 0; i < len(words); i += 2 {
		first, second := words[i], words[i+1]
		switch {
		case first == 0xffff && second == 0xfffe:
			return append(out, End()), nil
		case first&1 == 0:
			out = append(out, Move(hw.Register(first&0x01fe), second))
		default:
			in := Instruction{
				Kind:  KindWait,
				VPos:  uint8(first >> 8),
				HPos:  uint8(first & 0xfe),
				VMask: uint8(second>>8) & 0x7f,
				HMask: uint8(second & 0xfe),
			}
			if second&1 != 0 {
				in.Kind = KindSkip
			}
			out = append(out, in)
		}
	}
	return nil, fmt.Errorf("no end marker in %d words: %w", len(words), ErrDecode)
}

// Builder appends instructions to a word list.
type Builder struct {
	words []uint16
}

// Add appends in and returns the word index of its first word.
func (b *Builder) Add(in Instruction) int {
	idx := len(b.words)
	first, second := in.Words()
	b.words = append(b.words, first, second)
	return idx
}

func (b *Builder) Words() []uint16 {
	return b.words
}
