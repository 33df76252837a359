package raster

import (
	"fmt"
)

// SpriteWordsPerRow is the number of data words per sprite line.
const SpriteWordsPerRow = 2

// SpriteInfo describes one sprite of a sheet.
type SpriteInfo struct {
	Height   int
	Attached bool
	Frames   int
}

// SpriteSheet holds hardware sprite frames in CPU memory. At each entry of
// Offsets (a word index into Data) the sprite starts with three words:
// height, attached flag and frame count. Each frame follows as
// POS, CTL, Height*2 data words and two zero end words: the layout the
// display's sprite DMA reads.
type SpriteSheet struct {
	Colors  []uint16
	Offsets []uint16
	Data    []uint16
}

// Len returns the number of sprites in the sheet.
func (s *SpriteSheet) Len() int {
	return len(s.Offsets)
}

// FrameWords returns the number of words of one frame of a sprite of the
// given height, including control and end words.
func FrameWords(height int) int {
	return 2 + height*SpriteWordsPerRow + 2
}

// Info returns the description of sprite i.
func (s *SpriteSheet) Info(i int) (SpriteInfo, error) {
	if i < 0 || i >= len(s.Offsets) {
		return SpriteInfo{}, fmt.Errorf("sprite %d of %d: %w", i, len(s.Offsets), ErrLayout)
	}
	off := int(s.Offsets[i])
	if off+3 > len(s.Data) {
		return SpriteInfo{}, fmt.Errorf("sprite %d header at word %d past data end %d: %w", i, off, len(s.Data), ErrLayout)
	}
	info := SpriteInfo{
		Height:   int(s.Data[off]),
		Attached: s.Data[off+1] != 0,
		Frames:   int(s.Data[off+2]),
	}
	if end := off + 3 + info.Frames*FrameWords(info.Height); end > len(s.Data) {
		return SpriteInfo{}, fmt.Errorf("sprite %d frames end at word %d past data end %d: %w", i, end, len(s.Data), ErrLayout)
	}
	return info, nil
}

// Frame returns the data rows (two words per line, control words excluded)
// of frame f of sprite i.
func (s *SpriteSheet) Frame(i, f int) ([]uint16, error) {
	info, err := s.Info(i)
	if err != nil {
		return nil, err
	}
	if f < 0 || f >= info.Frames {
		return nil, fmt.Errorf("frame %d of %d: %w", f, info.Frames, ErrLayout)
	}
	start := int(s.Offsets[i]) + 3 + f*FrameWords(info.Height) + 2
	return s.Data[start : start+info.Height*SpriteWordsPerRow], nil
}

// AppendSprite adds a sprite whose frames are given as data rows, two
// words per line, and returns its index. Control words are left zero.
func (s *SpriteSheet) AppendSprite(height int, attached bool, frames ...[]uint16) int {
	s.Offsets = append(s.Offsets, uint16(len(s.Data)))
	var flag uint16
	if attached {
		flag = 1
	}
	s.Data = append(s.Data, uint16(height), flag, uint16(len(frames)))
	for _, rows := range frames {
		s.Data = append(s.Data, 0, 0)
		for j := 0; j < height*SpriteWordsPerRow; j++ {
			var w uint16
			if j < len(rows) {
				w = rows[j]
			}
			s.Data = append(s.Data, w)
		}
		s.Data = append(s.Data, 0, 0)
	}
	return len(s.Offsets) - 1
}
