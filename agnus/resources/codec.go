package resources

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

type tileHeader struct {
	Width       uint16
	Height      uint16
	TileWidth   uint16
	TileHeight  uint16
	Depth       uint8
	Flags       uint8
	PaletteSize uint8
	Reserved    uint8
	ImgDataSize uint32
}

type spriteHeader struct {
	NumColors  uint8
	Reserved   uint8
	NumSprites uint16
	NumWords   uint32
}

func readPreamble(r io.Reader, want [4]byte) error {
	var pre struct {
		Magic   [4]byte
		Version uint8
	}
	if err := binary.Read(r, binary.BigEndian, &pre); err != nil {
		return fmt.Errorf("preamble: %w: %w", ErrFormat, err)
	}
	if pre.Magic != want {
		return fmt.Errorf("magic %q, want %q: %w", pre.Magic[:], want[:], ErrFormat)
	}
	if pre.Version != version {
		return fmt.Errorf("version %d: %w", pre.Version, ErrFormat)
	}
	return nil
}

func writePreamble(w io.Writer, magic [4]byte) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	_, err := w.Write([]byte{version})
	return err
}

func validTileHeader(h tileHeader) error {
	switch {
	case h.Width == 0 || h.Height == 0 || h.Width%16 != 0:
		return fmt.Errorf("sheet size %dx%d: %w", h.Width, h.Height, ErrFormat)
	case h.TileWidth == 0 || h.TileHeight == 0 || h.Width%h.TileWidth != 0 || h.Height%h.TileHeight != 0:
		return fmt.Errorf("tile size %dx%d: %w", h.TileWidth, h.TileHeight, ErrFormat)
	case h.Depth < 1 || h.Depth > 6:
		return fmt.Errorf("depth %d: %w", h.Depth, ErrFormat)
	case h.PaletteSize > raster.MaxPaletteSize:
		return fmt.Errorf("%d colors: %w", h.PaletteSize, ErrFormat)
	}
	return nil
}

// DecodeTileSheet reads a tile sheet and copies its image data into a
// newly allocated chip memory block.
func DecodeTileSheet(r io.Reader, alloc memory.Allocator, ram *memory.ChipRAM) (*raster.TileSheet, error) {
	br := bufio.NewReader(r)
	if err := readPreamble(br, tileMagic); err != nil {
		return nil, err
	}
	var h tileHeader
	if err := binary.Read(br, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("header: %w: %w", ErrFormat, err)
	}
	if err := validTileHeader(h); err != nil {
		return nil, err
	}

	sheet := &raster.TileSheet{Header: raster.TileSheetHeader{
		Width:       h.Width,
		Height:      h.Height,
		TileWidth:   h.TileWidth,
		TileHeight:  h.TileHeight,
		Depth:       h.Depth,
		Flags:       h.Flags,
		PaletteSize: h.PaletteSize,
		ImgDataSize: h.ImgDataSize,
	}}
	if int(h.ImgDataSize) != sheet.DataSize() {
		return nil, fmt.Errorf("image data of %d bytes, layout needs %d: %w", h.ImgDataSize, sheet.DataSize(), ErrFormat)
	}
	if err := binary.Read(br, binary.BigEndian, sheet.Palette[:h.PaletteSize]); err != nil {
		return nil, fmt.Errorf("palette: %w: %w", ErrFormat, err)
	}

	handle, err := alloc.AllocateBlock(memory.Chip, int(h.ImgDataSize))
	if err != nil {
		return nil, fmt.Errorf("allocating image data: %w", err)
	}
	addr := alloc.BlockAddress(handle)
	if _, err := io.ReadFull(br, ram.Slice(addr, int(h.ImgDataSize))); err != nil {
		alloc.FreeBlock(handle)
		return nil, fmt.Errorf("image data: %w: %w", ErrFormat, err)
	}
	sheet.ImgData = handle
	sheet.Addr = addr
	return sheet, nil
}

// EncodeTileSheet writes sheet, reading its image data from chip RAM.
func EncodeTileSheet(w io.Writer, sheet *raster.TileSheet, ram *memory.ChipRAM) error {
	hdr := sheet.Header
	h := tileHeader{
		Width:       hdr.Width,
		Height:      hdr.Height,
		TileWidth:   hdr.TileWidth,
		TileHeight:  hdr.TileHeight,
		Depth:       hdr.Depth,
		Flags:       hdr.Flags,
		PaletteSize: hdr.PaletteSize,
		ImgDataSize: uint32(sheet.DataSize()),
	}
	if err := validTileHeader(h); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := writePreamble(bw, tileMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, h); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, sheet.Colors()); err != nil {
		return err
	}
	if _, err := bw.Write(ram.Slice(sheet.Addr, sheet.DataSize())); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeSpriteSheet reads a sprite sheet into CPU memory. The layout of
// every sprite is checked before it is returned.
func DecodeSpriteSheet(r io.Reader) (*raster.SpriteSheet, error) {
	br := bufio.NewReader(r)
	if err := readPreamble(br, spriteMagic); err != nil {
		return nil, err
	}
	var h spriteHeader
	if err := binary.Read(br, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("header: %w: %w", ErrFormat, err)
	}
	if h.NumColors > raster.MaxPaletteSize {
		return nil, fmt.Errorf("%d colors: %w", h.NumColors, ErrFormat)
	}
	// 64K words is far beyond the 8 channels' worth of data
	if h.NumWords > 0xffff {
		return nil, fmt.Errorf("%d data words: %w", h.NumWords, ErrFormat)
	}

	sheet := &raster.SpriteSheet{
		Colors:  make([]uint16, h.NumColors),
		Offsets: make([]uint16, h.NumSprites),
		Data:    make([]uint16, h.NumWords),
	}
	for _, part := range [][]uint16{sheet.Colors, sheet.Offsets, sheet.Data} {
		if err := binary.Read(br, binary.BigEndian, part); err != nil {
			return nil, fmt.Errorf("sprite data: %w: %w", ErrFormat, err)
		}
	}
	for i := range sheet.Offsets {
		if _, err := sheet.Info(i); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
	}
	return sheet, nil
}

func EncodeSpriteSheet(w io.Writer, sheet *raster.SpriteSheet) error {
	if len(sheet.Colors) > raster.MaxPaletteSize {
		return fmt.Errorf("%d colors: %w", len(sheet.Colors), ErrFormat)
	}
	bw := bufio.NewWriter(w)
	if err := writePreamble(bw, spriteMagic); err != nil {
		return err
	}
	h := spriteHeader{
		NumColors:  uint8(len(sheet.Colors)),
		NumSprites: uint16(len(sheet.Offsets)),
		NumWords:   uint32(len(sheet.Data)),
	}
	if err := binary.Write(bw, binary.BigEndian, h); err != nil {
		return err
	}
	for _, part := range [][]uint16{sheet.Colors, sheet.Offsets, sheet.Data} {
		if err := binary.Write(bw, binary.BigEndian, part); err != nil {
			return err
		}
	}
	return bw.Flush()
}
