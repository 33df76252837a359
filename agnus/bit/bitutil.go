package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CombineWords combines two 16 bit words into a 32 bit value, high word first.
func CombineWords(high, low uint16) uint32 {
	return (uint32(high) << 16) | uint32(low)
}

// HighWord returns the most significant 16 bits of a 32 bit value.
// Chip RAM pointers are written to the hardware as a hi/lo register pair.
func HighWord(value uint32) uint16 {
	return uint16(value >> 16)
}

// LowWord returns the least significant 16 bits of a 32 bit value.
func LowWord(value uint32) uint16 {
	return uint16(value)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet16 will check if the bit at the specified index is set to 1 or not.
func IsSet16(index, value uint16) bool {
	return ((value >> index) & 1) == 1
}

// Set16 will return the passed word with the bit at the specified index set to 1.
func Set16(index, value uint16) uint16 {
	return value | (1 << index)
}

// Clear16 will return the passed word with the bit at the specified index set to 0.
func Clear16(index, value uint16) uint16 {
	return value &^ (1 << index)
}

// Field16 extracts bits from highBit to lowBit (inclusive).
// Example: Field16(0xF0C3, 15, 12) -> 0xF
func Field16(value uint16, highBit, lowBit uint8) uint16 {
	width := highBit - lowBit + 1
	mask := uint16((uint32(1) << width) - 1)
	return (value >> lowBit) & mask
}

// PutField16 returns value with bits highBit..lowBit replaced by field.
// Bits of field that do not fit are dropped.
func PutField16(value, field uint16, highBit, lowBit uint8) uint16 {
	width := highBit - lowBit + 1
	mask := uint16((uint32(1)<<width)-1) << lowBit
	return (value &^ mask) | ((field << lowBit) & mask)
}

// AlignDown16 rounds a pixel coordinate down to the start of its 16 pixel word.
func AlignDown16(x int) int {
	return x &^ 0x0f
}

// WordsSpanned returns how many 16 pixel words are touched by the pixel span
// [x, x+width).
func WordsSpanned(x, width int) int {
	if width <= 0 {
		return 0
	}
	return ((x + width - 1) >> 4) - (x >> 4) + 1
}
