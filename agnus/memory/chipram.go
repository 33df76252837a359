package memory

import (
	"github.com/valerio/go-agnus/agnus/bit"
)

// ChipRAMSize is the size of the modelled chip RAM (1MB, ECS Agnus).
const ChipRAMSize = 1 << 20

// ChipBase is the first chip RAM address handed out by the chip pool.
// The space below it is kept free so that address 0 never names a block.
const ChipBase = 0x1000

// ChipRAM is the memory shared by the CPU and the custom chips. Words are
// stored big-endian. Accesses outside the array read 0 and are ignored on
// write, the same way the custom chips see open bus.
type ChipRAM struct {
	data []byte
}

// NewChipRAM returns a zeroed chip RAM of the given size in bytes.
func NewChipRAM(size int) *ChipRAM {
	return &ChipRAM{data: make([]byte, size)}
}

// Size returns the size in bytes.
func (c *ChipRAM) Size() int {
	return len(c.data)
}

func (c *ChipRAM) Read8(addr uint32) uint8 {
	if int64(addr) >= int64(len(c.data)) {
		return 0
	}
	return c.data[addr]
}

func (c *ChipRAM) Write8(addr uint32, value uint8) {
	if int64(addr) >= int64(len(c.data)) {
		return
	}
	c.data[addr] = value
}

// Read16 reads the big-endian word at addr.
func (c *ChipRAM) Read16(addr uint32) uint16 {
	return bit.Combine(c.Read8(addr), c.Read8(addr+1))
}

// Write16 writes value as a big-endian word at addr.
func (c *ChipRAM) Write16(addr uint32, value uint16) {
	c.Write8(addr, bit.High(value))
	c.Write8(addr+1, bit.Low(value))
}

// Slice returns n bytes of chip RAM starting at addr, clipped to the array.
func (c *ChipRAM) Slice(addr uint32, n int) []byte {
	if int64(addr) >= int64(len(c.data)) || n <= 0 {
		return nil
	}
	end := int(addr) + n
	if end > len(c.data) {
		end = len(c.data)
	}
	return c.data[addr:end]
}

// Fill sets n bytes starting at addr to value.
func (c *ChipRAM) Fill(addr uint32, n int, value uint8) {
	s := c.Slice(addr, n)
	for i := range s {
		s[i] = value
	}
}
