package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-agnus/agnus/video"
)

// UpperHalfBlock is drawn with the top pixel as foreground and the bottom
// pixel as background, packing two display lines into one terminal row.
const UpperHalfBlock = '▀'

// PixelColor converts an RGBA pixel to a true color terminal color.
func PixelColor(px uint32) tcell.Color {
	r, g, b, _ := video.Components(px)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// HalfBlockCell returns the rune and style of the cell showing top over
// bottom.
func HalfBlockCell(top, bottom uint32) (rune, tcell.Style) {
	style := tcell.StyleDefault.Foreground(PixelColor(top)).Background(PixelColor(bottom))
	return UpperHalfBlock, style
}

// Step returns the sampling step that fits size source pixels into cells
// terminal cells, never less than 1.
func Step(size, cells int) int {
	if cells <= 0 {
		return size
	}
	return max(1, (size+cells-1)/cells)
}
