// Package debug holds diagnostics: PNG snapshots of the scan-out, copper
// listings and blit traces.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/valerio/go-agnus/agnus/video"
)

// SnapshotOptions control how a frame is written out.
type SnapshotOptions struct {
	// Scale is the integer upscale factor; values below 1 mean 1.
	Scale int
	// Caption, when set, is drawn in the top left corner.
	Caption string
	// Timestamp appends the wall clock time to the file name.
	Timestamp bool
}

// FrameImage converts a frame buffer to an image.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	w, h := frame.Width(), frame.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range frame.ToSlice() {
		r, g, b, a := video.Components(px)
		idx := i * video.RGBABytesPerPixel
		img.Pix[idx] = r
		img.Pix[idx+1] = g
		img.Pix[idx+2] = b
		img.Pix[idx+3] = a
	}
	return img
}

// RenderSnapshot returns the frame scaled and captioned as requested.
func RenderSnapshot(frame *video.FrameBuffer, opts SnapshotOptions) *image.RGBA {
	img := FrameImage(frame)
	if opts.Scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*opts.Scale, b.Dy()*opts.Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}
	if opts.Caption != "" {
		face := basicfont.Face7x13
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P(2, face.Ascent+2),
		}
		shadow := d.MeasureString(opts.Caption).Ceil()
		draw.Draw(img, image.Rect(0, 0, shadow+4, face.Height+4), image.NewUniform(color.Black), image.Point{}, draw.Src)
		d.DrawString(opts.Caption)
	}
	return img
}

// SaveFramePNGToDir saves a frame as PNG to directory, or the working
// directory when it is empty, and returns the path written.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string, opts SnapshotOptions) (string, error) {
	if frame == nil || frame.Width() == 0 {
		return "", fmt.Errorf("no frame to save")
	}
	img := RenderSnapshot(frame, opts)

	filename := baseName + ".png"
	if opts.Timestamp {
		filename = fmt.Sprintf("%s_%s.png", baseName, time.Now().Format("20060102_150405"))
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	b := img.Bounds()
	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "format", "PNG")
	return filePath, nil
}

// TakeSnapshot handles the snapshot key for backends.
func TakeSnapshot(frame *video.FrameBuffer, scale int) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}
	opts := SnapshotOptions{Scale: scale, Timestamp: true}
	if _, err := SaveFramePNGToDir(frame, "agnus_snapshot", "", opts); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}
