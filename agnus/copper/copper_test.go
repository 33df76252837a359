package copper

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/raster"
)

func TestBuildLayout(t *testing.T) {
	p := Build()
	require.NoError(t, p.Validate())

	words := len(p.Words)
	assert.Equal(t, uint16(0xffff), p.Words[words-2])
	assert.Equal(t, uint16(0xfffe), p.Words[words-1])
	assert.Equal(t, 10*2+hw.MaxPlanes*4+hw.NumSprites*4+hw.NumColors*2+2, words)

	assert.Equal(t, uint16(hw.BplPtH(3)+2), p.Words[p.Info.Bpl1PtH+3*4+2])
	assert.Equal(t, uint16(hw.SprPtH(7)), p.Words[p.Info.Spr0PtH+7*4])
	assert.Equal(t, uint16(hw.Color(31)), p.Words[p.Info.Color00+31*2])
}

func TestBuildWithExtraInstructions(t *testing.T) {
	p := Build(Wait(0x50, 0x07), Move(hw.COLOR00, 0x0f00))
	ins, err := Decode(p.Words)
	require.NoError(t, err)

	n := len(ins)
	assert.Equal(t, KindEnd, ins[n-1].Kind)
	assert.Equal(t, Move(hw.COLOR00, 0x0f00), ins[n-2])
	assert.Equal(t, Wait(0x50, 0x06), ins[n-3])
	assert.Equal(t, "WAIT v=$50 h=$06", ins[n-3].String())
}

func TestDecode(t *testing.T) {
	ins, err := Decode([]uint16{0x0180, 0x0fff, 0x2c07, 0xfffe, 0x2c07, 0xffff, 0xffff, 0xfffe, 0x1234, 0x5678})
	require.NoError(t, err)
	require.Len(t, ins, 4)
	assert.Equal(t, "MOVE COLOR00, $0fff", ins[0].String())
	assert.Equal(t, KindWait, ins[1].Kind)
	assert.Equal(t, uint8(0x2c), ins[1].VPos)
	assert.Equal(t, KindSkip, ins[2].Kind)
	assert.Equal(t, KindEnd, ins[3].Kind)

	_, err = Decode([]uint16{0x0180, 0x0000})
	assert.ErrorIs(t, err, ErrDecode)
	_, err = Decode([]uint16{0x0180})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		width    int
		ntsc     bool
		start    uint16
		stop     uint16
		ddfStart uint16
		ddfStop  uint16
		originX  int
	}{
		{320, false, 0x2c81, 0x2cc1, 0x0038, 0x00d0, 0x81},
		{320, true, 0x2c81, 0xf4c1, 0x0038, 0x00d0, 0x81},
		{288, false, 0x2c91, 0x2cb1, 0x0040, 0x00c8, 0x91},
		{288, true, 0x2c91, 0xf4b1, 0x0040, 0x00c8, 0x91},
	}

	for _, tt := range tests {
		win, fetch, err := Geometry(tt.width, tt.ntsc)
		require.NoError(t, err)
		assert.Equal(t, tt.start, win.Start)
		assert.Equal(t, tt.stop, win.Stop)
		assert.Equal(t, tt.ddfStart, fetch.Start)
		assert.Equal(t, tt.ddfStop, fetch.Stop)
		x, y := Origin(tt.width)
		assert.Equal(t, tt.originX, x)
		assert.Equal(t, OriginY, y)
	}

	_, _, err := Geometry(352, false)
	assert.ErrorIs(t, err, ErrMode)
}

func TestInitSinglePlayfield(t *testing.T) {
	pf := raster.Surface{Width: 320, Height: 256, Depth: 3, Interleaved: true, Addr: 0x10000}
	p := Build()

	err := Init(p, Mode{Width: 320, Playfields: []raster.Surface{pf}}, []raster.Surface{pf}, 0x2000)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x2c81), p.Value(p.Info.DiwStrt))
	assert.Equal(t, uint16(0x2cc1), p.Value(p.Info.DiwStop))
	assert.Equal(t, uint16(0x3200), p.Value(p.Info.BplCon0))
	assert.Equal(t, uint16(80), p.Value(p.Info.Bpl1Mod))
	assert.Equal(t, uint16(80), p.Value(p.Info.Bpl2Mod))
	for i := 0; i < hw.NumSprites; i++ {
		assert.Equal(t, uint32(0x2000), p.SpritePointer(i))
	}
	assert.Equal(t, uint32(0x10000), p.BitplanePointer(0))
	assert.Equal(t, uint32(0x10000+40), p.BitplanePointer(1))
	assert.Equal(t, uint32(0x10000+80), p.BitplanePointer(2))
	assert.Zero(t, p.BitplanePointer(3))
}

func TestInitDualPlayfield(t *testing.T) {
	pf1 := raster.Surface{Width: 320, Height: 256, Depth: 3, Addr: 0x10000}
	pf2 := raster.Surface{Width: 320, Height: 256, Depth: 2, Interleaved: true, Addr: 0x40000}
	p := Build()

	mode := Mode{Width: 320, NTSC: true, Playfields: []raster.Surface{pf1, pf2}}
	require.NoError(t, Init(p, mode, []raster.Surface{pf1, pf2}, 0x2000))

	assert.Equal(t, uint16(0xf4c1), p.Value(p.Info.DiwStop))
	bplcon0 := hw.BplCon0(p.Value(p.Info.BplCon0))
	assert.True(t, bplcon0.DualPlayfield())
	assert.Equal(t, 5, bplcon0.Depth())
	assert.Equal(t, uint16(0), p.Value(p.Info.Bpl1Mod))
	assert.Equal(t, uint16(40), p.Value(p.Info.Bpl2Mod))

	assert.Equal(t, pf1.PlaneAddr(0), p.BitplanePointer(0))
	assert.Equal(t, pf2.PlaneAddr(0), p.BitplanePointer(1))
	assert.Equal(t, pf1.PlaneAddr(1), p.BitplanePointer(2))
	assert.Equal(t, pf2.PlaneAddr(1), p.BitplanePointer(3))
	assert.Equal(t, pf1.PlaneAddr(2), p.BitplanePointer(4))
}

func TestInitRejectsBadModes(t *testing.T) {
	pf := raster.Surface{Width: 320, Height: 256, Depth: 4}
	p := Build()

	assert.ErrorIs(t, Init(p, Mode{Width: 256, Playfields: []raster.Surface{pf}}, []raster.Surface{pf}, 0), ErrMode)
	assert.ErrorIs(t, Init(p, Mode{Width: 320}, nil, 0), ErrMode)
	assert.ErrorIs(t, Init(p, Mode{Width: 320, Playfields: []raster.Surface{pf, pf}}, []raster.Surface{pf, pf}, 0), ErrMode)
}

func TestPatchFrontBuffersOnlyTouchesPointers(t *testing.T) {
	a := raster.Surface{Width: 320, Height: 256, Depth: 2, Interleaved: true, Addr: 0x10000}
	b := a
	b.Addr = 0x20000
	p := Build()
	require.NoError(t, Init(p, Mode{Width: 320, Playfields: []raster.Surface{a}}, []raster.Surface{a}, 0x2000))
	before := append([]uint16(nil), p.Words...)

	require.NoError(t, PatchFrontBuffers(p, []raster.Surface{b}))
	require.NoError(t, PatchFrontBuffers(p, []raster.Surface{a}))
	assert.Equal(t, before, p.Words)

	require.NoError(t, PatchFrontBuffers(p, []raster.Surface{b}))
	assert.Equal(t, uint32(0x20000+40), p.BitplanePointer(1))
	assert.Equal(t, len(before), len(p.Words))
}

func TestSetPalette(t *testing.T) {
	p := Build()
	p.SetPalette([]uint16{0x0f00, 0x00f0, 0xf00f}, 30)
	assert.Equal(t, uint16(0x0f00), p.Color(30))
	assert.Equal(t, uint16(0x00f0), p.Color(31))
	assert.Zero(t, p.Color(0))

	p.SetPalette([]uint16{0xffff}, 0)
	assert.Equal(t, uint16(0x0fff), p.Color(0))

	assert.Panics(t, func() { p.SetSpriteChannel(8, 0) })
}

func TestDump(t *testing.T) {
	p := Build()
	var buf bytes.Buffer
	require.NoError(t, p.Dump(&buf, "mainCopper"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "var mainCopper = []uint16{\n"))
	assert.Contains(t, out, "0x0180, 0x0000, // ")
	assert.Contains(t, out, "MOVE COLOR00, $0000")
	assert.Contains(t, out, "0xffff, 0xfffe, // ")
	assert.Contains(t, out, "mainCopperBpl1PtHIndex = 20")
	assert.Contains(t, out, "mainCopperSizeWords = 142")
}
