package sprite

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

// Width of a hardware sprite in pixels.
const Width = 16

// Data is the chip RAM copy of one sprite of a sprite sheet, laid out the
// way sprite DMA reads it: per frame two control words, two data words per
// line and two end words. An attached sprite has a second, odd channel
// half for every frame.
type Data struct {
	Handle   memory.Handle
	Height   int
	Attached bool
	// Frames holds the address of each frame's first control word.
	Frames []uint32
	// Odd holds the frame addresses of the odd channel of an attached
	// sprite.
	Odd []uint32
}

// MakeSpriteData copies sprite i of sheet into a freshly allocated chip
// RAM block. An attached sprite takes its odd half from sprite i+1 of the
// sheet, which must have the same height and frame count.
func MakeSpriteData(alloc memory.Allocator, ram *memory.ChipRAM, sheet *raster.SpriteSheet, i int) (*Data, error) {
	info, err := sheet.Info(i)
	if err != nil {
		return nil, err
	}
	halves := 1
	if info.Attached {
		odd, err := sheet.Info(i + 1)
		if err != nil {
			return nil, fmt.Errorf("attached sprite %d has no odd half: %w", i, err)
		}
		if odd.Height != info.Height || odd.Frames != info.Frames {
			return nil, fmt.Errorf("attached sprite %d halves differ (%d/%d lines, %d/%d frames): %w",
				i, info.Height, odd.Height, info.Frames, odd.Frames, raster.ErrLayout)
		}
		halves = 2
	}

	frameBytes := raster.FrameWords(info.Height) * 2
	h, err := alloc.AllocateBlock(memory.Chip, halves*info.Frames*frameBytes)
	if err != nil {
		return nil, fmt.Errorf("sprite %d data: %w", i, err)
	}
	base := alloc.BlockAddress(h)

	d := &Data{Handle: h, Height: info.Height, Attached: info.Attached}
	for half := 0; half < halves; half++ {
		for f := 0; f < info.Frames; f++ {
			addr := base + uint32((half*info.Frames+f)*frameBytes)
			rows, err := sheet.Frame(i+half, f)
			if err != nil {
				alloc.FreeBlock(h)
				return nil, err
			}
			writeFrame(ram, addr, rows)
			if half == 0 {
				d.Frames = append(d.Frames, addr)
			} else {
				d.Odd = append(d.Odd, addr)
			}
		}
	}
	slog.Debug("Sprite data created", "sprite", i, "height", info.Height,
		"frames", info.Frames, "attached", info.Attached, "addr", fmt.Sprintf("%06x", base))
	return d, nil
}

func writeFrame(ram *memory.ChipRAM, addr uint32, rows []uint16) {
	ram.Write16(addr, 0)
	ram.Write16(addr+2, 0)
	a := addr + 4
	for _, w := range rows {
		ram.Write16(a, w)
		a += 2
	}
	ram.Write16(a, 0)
	ram.Write16(a+2, 0)
}

// Free releases the chip RAM of the sprite.
func (d *Data) Free(alloc memory.Allocator) {
	alloc.FreeBlock(d.Handle)
	d.Handle = memory.InvalidHandle
	d.Frames, d.Odd = nil, nil
}

// RowsFromTile extracts tile (col, row) of a 16 pixel wide tile sheet as
// sprite data rows: for every line the word of plane firstPlane followed
// by the word of plane firstPlane+1. Planes 0 and 1 make a plain sprite,
// planes 2 and 3 the odd half of an attached one.
func RowsFromTile(ram *memory.ChipRAM, sheet *raster.TileSheet, col, row, firstPlane int) ([]uint16, error) {
	if sheet.Header.TileWidth != Width {
		return nil, fmt.Errorf("tile width %d is not %d: %w", sheet.Header.TileWidth, Width, raster.ErrLayout)
	}
	s := sheet.Surface()
	if firstPlane < 0 || firstPlane+2 > s.Depth {
		return nil, fmt.Errorf("planes %d-%d of a depth %d sheet: %w", firstPlane, firstPlane+1, s.Depth, raster.ErrLayout)
	}

	h := int(sheet.Header.TileHeight)
	off := uint32(sheet.TileOffset(col, row))
	rows := make([]uint16, 0, h*raster.SpriteWordsPerRow)
	for y := 0; y < h; y++ {
		line := s.Addr + off + uint32(y*s.Stride())
		rows = append(rows,
			ram.Read16(line+uint32(s.PlaneOffset(firstPlane))),
			ram.Read16(line+uint32(s.PlaneOffset(firstPlane+1))))
	}
	return rows, nil
}

// ChannelPointers is where a sprite publishes the data its channel
// fetches. The display engine implements it.
type ChannelPointers interface {
	SetSpriteChannel(channel int, addr uint32)
}

// HWSprite is a sprite fetched by the display hardware. Its animation
// frames index the frames of Data. An attached sprite occupies Channel and
// Channel+1.
type HWSprite struct {
	Object
	Data    *Data
	Channel int
}

// NewHWSprite returns a sprite at (x, y) in playfield coordinates. Every
// frame of anim must exist in data.
func NewHWSprite(data *Data, channel, x, y int, anim Animation) (HWSprite, error) {
	last := channel
	if data.Attached {
		last++
	}
	if channel < 0 || last >= hw.NumSprites {
		return HWSprite{}, fmt.Errorf("sprite channel %d (attached %t) out of range", channel, data.Attached)
	}
	if data.Attached && channel%2 != 0 {
		return HWSprite{}, fmt.Errorf("attached sprite on odd channel %d", channel)
	}
	for _, f := range anim.Frames {
		if f < 0 || f >= len(data.Frames) {
			return HWSprite{}, fmt.Errorf("animation frame %d of %d: %w", f, len(data.Frames), raster.ErrLayout)
		}
	}
	return HWSprite{
		Object: Object{
			CollisionBox: Rect{W: Width, H: data.Height},
			Bounds:       Rect{X: x, Y: y, W: Width, H: data.Height},
			Anim:         anim,
		},
		Data:    data,
		Channel: channel,
	}, nil
}

func (s *HWSprite) Attached() bool {
	return s.Data.Attached
}

// FrameAddr returns the address of the frame shown.
func (s *HWSprite) FrameAddr() uint32 {
	return s.Data.Frames[s.Anim.Frame()]
}

// Control returns the position of the sprite in display coordinates,
// the playfield origin being at (originX, originY).
func (s *HWSprite) Control(originX, originY int) hw.SpriteControl {
	v := s.Bounds.Y + originY
	return hw.SpriteControl{
		HStart: s.Bounds.X + originX,
		VStart: v,
		VStop:  v + s.Data.Height,
	}
}

// Update writes the control words of the current frame and points the
// sprite's channels at it.
func (s *HWSprite) Update(ram *memory.ChipRAM, ch ChannelPointers, originX, originY int) {
	ctl := s.Control(originX, originY)
	addr := s.FrameAddr()
	writeControl(ram, addr, ctl)
	ch.SetSpriteChannel(s.Channel, addr)

	if s.Data.Attached {
		odd := s.Data.Odd[s.Anim.Frame()]
		ctl.Attached = true
		writeControl(ram, odd, ctl)
		ch.SetSpriteChannel(s.Channel+1, odd)
	}
}

func writeControl(ram *memory.ChipRAM, addr uint32, ctl hw.SpriteControl) {
	pos, c := ctl.ControlWords()
	ram.Write16(addr, pos)
	ram.Write16(addr+2, c)
}
