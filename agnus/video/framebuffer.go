package video

// RGBA pixel format: 8 bits per component, red in the top byte.
const (
	RGBABytesPerPixel = 4
	RGBARShift        = 24
	RGBAGShift        = 16
	RGBABShift        = 8
	RGBAColorMask     = 0xFF
	FullAlpha         = 0xFF
)

// BlackColor is opaque black.
const BlackColor uint32 = FullAlpha

// RGBA expands a 12 bit 0x0RGB palette entry into an RGBA pixel.
func RGBA(c uint16) uint32 {
	r := uint32(c>>8&0xf) * 0x11
	g := uint32(c>>4&0xf) * 0x11
	b := uint32(c&0xf) * 0x11
	return r<<RGBARShift | g<<RGBAGShift | b<<RGBABShift | FullAlpha
}

// Components splits an RGBA pixel.
func Components(px uint32) (r, g, b, a uint8) {
	return uint8(px >> RGBARShift), uint8(px >> RGBAGShift), uint8(px >> RGBABShift), uint8(px)
}

// FrameBuffer is one scanned out frame, covering the display window.
type FrameBuffer struct {
	width  int
	height int
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb *FrameBuffer) Width() int  { return fb.width }
func (fb *FrameBuffer) Height() int { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color uint32) {
	fb.buffer[y*fb.width+x] = color
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color uint32) {
	for i := range fb.buffer {
		fb.buffer[i] = color
	}
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// resize changes the size, keeping the backing array when it is big
// enough. Pixels are not preserved.
func (fb *FrameBuffer) resize(width, height int) {
	n := width * height
	if cap(fb.buffer) < n {
		fb.buffer = make([]uint32, n)
	}
	fb.buffer = fb.buffer[:n]
	fb.width, fb.height = width, height
}
