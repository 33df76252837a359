package video

// SpritePriorityBuffer tracks which sprite channel owns each pixel of the
// line being scanned out.
//
// Channels are ranked by number: channel 0 is in front of channel 1 and
// so on, so an attached pair shows through only where no lower channel
// draws. Each channel claims the pixels it covers with a non transparent
// color; a claim only succeeds against unowned pixels and pixels owned by
// a higher channel.
//
//	Pixels:     0  1  2  3  4  5  6  7  8  9 10 11
//	Channel 2:        [--------C--------]
//	Channel 0:                 [--------A--------]
//	Result:           [--C--][--------A--------]
//
// Colors are stored next to the owner so the line can be composed against
// the playfields afterwards without reading sprite data again.
type SpritePriorityBuffer struct {
	// owner is the channel owning each pixel, -1 if none.
	owner []int8
	// color is the palette index the owner draws at each pixel.
	color []uint8
}

// NewSpritePriorityBuffer returns a buffer for lines of width pixels.
func NewSpritePriorityBuffer(width int) *SpritePriorityBuffer {
	s := &SpritePriorityBuffer{}
	s.resize(width)
	return s
}

func (s *SpritePriorityBuffer) resize(width int) {
	if cap(s.owner) < width {
		s.owner = make([]int8, width)
		s.color = make([]uint8, width)
	}
	s.owner = s.owner[:width]
	s.color = s.color[:width]
	s.Clear()
}

// Clear resets the buffer for a new line.
func (s *SpritePriorityBuffer) Clear() {
	for i := range s.owner {
		s.owner[i] = -1
	}
}

// TryClaimPixel attempts to claim pixel x for a channel drawing color.
// It reports whether the channel now owns the pixel.
func (s *SpritePriorityBuffer) TryClaimPixel(x, channel int, color uint8) bool {
	if x < 0 || x >= len(s.owner) {
		return false
	}
	if cur := s.owner[x]; cur != -1 && int(cur) <= channel {
		return false
	}
	s.owner[x] = int8(channel)
	s.color[x] = color
	return true
}

// GetOwner returns the channel owning pixel x and its color, or -1.
func (s *SpritePriorityBuffer) GetOwner(x int) (channel int, color uint8) {
	if x < 0 || x >= len(s.owner) {
		return -1, 0
	}
	return int(s.owner[x]), s.color[x]
}
