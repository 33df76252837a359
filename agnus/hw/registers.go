// Package hw models the custom chip registers the engine programs: register
// offsets, the bit-field layouts of the control words and a software blitter
// that executes register programs against chip RAM.
package hw

import "fmt"

// Register is a custom chip register offset from the chip base (0xDFF000).
type Register uint16

// blitter registers
const (
	BLTCON0 Register = 0x040
	BLTCON1 Register = 0x042
	BLTAFWM Register = 0x044
	BLTALWM Register = 0x046
	BLTCPTH Register = 0x048
	BLTCPTL Register = 0x04A
	BLTBPTH Register = 0x04C
	BLTBPTL Register = 0x04E
	BLTAPTH Register = 0x050
	BLTAPTL Register = 0x052
	BLTDPTH Register = 0x054
	BLTDPTL Register = 0x056
	BLTSIZE Register = 0x058
	BLTCMOD Register = 0x060
	BLTBMOD Register = 0x062
	BLTAMOD Register = 0x064
	BLTDMOD Register = 0x066
	BLTCDAT Register = 0x070
	BLTBDAT Register = 0x072
	BLTADAT Register = 0x074
)

// copper and display registers
const (
	COP1LCH Register = 0x080
	COP1LCL Register = 0x082
	COPJMP1 Register = 0x088
	DIWSTRT Register = 0x08E
	DIWSTOP Register = 0x090
	DDFSTRT Register = 0x092
	DDFSTOP Register = 0x094
	DMACON  Register = 0x096

	// Bitplane pointers, hi/lo pairs for planes 1-6.
	BPL1PTH Register = 0x0E0
	BPL1PTL Register = 0x0E2

	BPLCON0 Register = 0x100
	BPLCON1 Register = 0x102
	BPLCON2 Register = 0x104
	BPLCON3 Register = 0x106
	BPL1MOD Register = 0x108
	BPL2MOD Register = 0x10A

	// Sprite pointers, hi/lo pairs for channels 0-7.
	SPR0PTH Register = 0x120
	SPR0PTL Register = 0x122

	COLOR00 Register = 0x180
	FMODE   Register = 0x1FC
)

const (
	// MaxPlanes is the number of bitplane pointer pairs the display fetches.
	MaxPlanes = 6
	// NumSprites is the number of hardware sprite channels.
	NumSprites = 8
	// NumColors is the number of palette registers.
	NumColors = 32
)

// BplPtH returns the high pointer register of bitplane i (0 based).
func BplPtH(i int) Register {
	return BPL1PTH + Register(i*4)
}

// SprPtH returns the high pointer register of sprite channel i.
func SprPtH(i int) Register {
	return SPR0PTH + Register(i*4)
}

// Color returns the palette register of color index i.
func Color(i int) Register {
	return COLOR00 + Register(i*2)
}

var names = map[Register]string{
	BLTCON0: "BLTCON0", BLTCON1: "BLTCON1", BLTAFWM: "BLTAFWM", BLTALWM: "BLTALWM",
	BLTCPTH: "BLTCPTH", BLTCPTL: "BLTCPTL", BLTBPTH: "BLTBPTH", BLTBPTL: "BLTBPTL",
	BLTAPTH: "BLTAPTH", BLTAPTL: "BLTAPTL", BLTDPTH: "BLTDPTH", BLTDPTL: "BLTDPTL",
	BLTSIZE: "BLTSIZE", BLTCMOD: "BLTCMOD", BLTBMOD: "BLTBMOD", BLTAMOD: "BLTAMOD",
	BLTDMOD: "BLTDMOD", BLTCDAT: "BLTCDAT", BLTBDAT: "BLTBDAT", BLTADAT: "BLTADAT",
	COP1LCH: "COP1LCH", COP1LCL: "COP1LCL", COPJMP1: "COPJMP1",
	DIWSTRT: "DIWSTRT", DIWSTOP: "DIWSTOP", DDFSTRT: "DDFSTRT", DDFSTOP: "DDFSTOP",
	DMACON: "DMACON", BPLCON0: "BPLCON0", BPLCON1: "BPLCON1", BPLCON2: "BPLCON2",
	BPLCON3: "BPLCON3", BPL1MOD: "BPL1MOD", BPL2MOD: "BPL2MOD", FMODE: "FMODE",
}

func init() {
	for i := 0; i < MaxPlanes; i++ {
		names[BplPtH(i)] = fmt.Sprintf("BPL%dPTH", i+1)
		names[BplPtH(i)+2] = fmt.Sprintf("BPL%dPTL", i+1)
	}
	for i := 0; i < NumSprites; i++ {
		names[SprPtH(i)] = fmt.Sprintf("SPR%dPTH", i)
		names[SprPtH(i)+2] = fmt.Sprintf("SPR%dPTL", i)
	}
	for i := 0; i < NumColors; i++ {
		names[Color(i)] = fmt.Sprintf("COLOR%02d", i)
	}
}

// String returns the register mnemonic, or its hex offset if unnamed.
func (r Register) String() string {
	if n, ok := names[r]; ok {
		return n
	}
	return fmt.Sprintf("$%03X", uint16(r))
}

// Known reports whether r is a register the engine knows about.
func (r Register) Known() bool {
	_, ok := names[r]
	return ok
}

// Custom is a register file holding the last value written to every custom
// register. The display scan-out reads its state from here.
type Custom struct {
	regs [0x100]uint16
}

func (c *Custom) Write(r Register, value uint16) {
	c.regs[(r>>1)&0xff] = value
}

func (c *Custom) Read(r Register) uint16 {
	return c.regs[(r>>1)&0xff]
}

// Pointer reads a hi/lo register pair as a chip RAM address.
func (c *Custom) Pointer(hi Register) uint32 {
	return uint32(c.Read(hi))<<16 | uint32(c.Read(hi+2))
}

// Reset zeroes every register.
func (c *Custom) Reset() {
	c.regs = [0x100]uint16{}
}
