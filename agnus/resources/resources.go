// Package resources reads and writes the binary sheet formats. All
// multi-byte values are big-endian.
//
// Tile sheet:
//
//	"AGTS" version:u8
//	width:u16 height:u16 tileWidth:u16 tileHeight:u16
//	depth:u8 flags:u8 paletteSize:u8 reserved:u8 imgDataSize:u32
//	palette:[paletteSize]u16 imgData:[imgDataSize]u8
//
// Sprite sheet:
//
//	"AGSS" version:u8
//	numColors:u8 numSprites:u16 numWords:u32
//	colors:[numColors]u16 offsets:[numSprites]u16 data:[numWords]u16
package resources

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
)

// ErrFormat is wrapped by every decoding failure.
var ErrFormat = errors.New("bad sheet format")

const version = 1

var (
	tileMagic   = [4]byte{'A', 'G', 'T', 'S'}
	spriteMagic = [4]byte{'A', 'G', 'S', 'S'}
)

// Loader is the resource collaborator stages load their assets through.
type Loader interface {
	ReadTileSheet(path string) (*raster.TileSheet, error)
	ReadSpriteSheet(path string) (*raster.SpriteSheet, error)
	FreeTileSheet(sheet *raster.TileSheet)
}

// Files loads sheets from the file system into chip memory.
type Files struct {
	alloc memory.Allocator
	ram   *memory.ChipRAM
}

func NewFiles(alloc memory.Allocator, ram *memory.ChipRAM) *Files {
	return &Files{alloc: alloc, ram: ram}
}

func (f *Files) ReadTileSheet(path string) (*raster.TileSheet, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading tile sheet: %w", err)
	}
	defer fp.Close()

	sheet, err := DecodeTileSheet(fp, f.alloc, f.ram)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Read tile sheet", "path", path,
		"size", fmt.Sprintf("%dx%d", sheet.Header.Width, sheet.Header.Height),
		"depth", sheet.Header.Depth, "masked", sheet.Header.Masked())
	return sheet, nil
}

func (f *Files) ReadSpriteSheet(path string) (*raster.SpriteSheet, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading sprite sheet: %w", err)
	}
	defer fp.Close()

	sheet, err := DecodeSpriteSheet(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Read sprite sheet", "path", path, "sprites", sheet.Len())
	return sheet, nil
}

// FreeTileSheet releases the chip memory of a sheet read by this loader.
func (f *Files) FreeTileSheet(sheet *raster.TileSheet) {
	if sheet == nil || sheet.ImgData == memory.InvalidHandle {
		return
	}
	f.alloc.FreeBlock(sheet.ImgData)
	sheet.ImgData = memory.InvalidHandle
	sheet.Addr = 0
}
