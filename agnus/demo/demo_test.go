package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/blit"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/stage"
	"github.com/valerio/go-agnus/agnus/video"
)

type rig struct {
	pools *memory.Pools
	ram   *memory.ChipRAM
	disp  *display.Engine
	pipe  *stage.Pipeline
	input *input.Manager
	demo  *Demo
}

func newRig(t *testing.T) *rig {
	t.Helper()
	pools, err := memory.New(memory.DefaultConfig())
	require.NoError(t, err)
	ram := pools.ChipRAM()
	disp := display.New(pools, blit.New(hw.NewSoftBlitter(ram)))
	require.NoError(t, disp.InitBuffers(
		display.ViewportSpec{Width: 320, Height: 256},
		[]display.PlayfieldSpec{{Width: 320, Height: 256, Depth: 4, Buffers: 2, Interleaved: true}},
	))
	r := &rig{
		pools: pools,
		ram:   ram,
		disp:  disp,
		pipe:  stage.NewPipeline(disp, ram),
		input: input.NewManager(),
	}
	r.pipe.SetInput(r.input)
	r.demo = New(pools, ram, disp)
	r.pipe.SetCurrent(r.demo.Stage())
	return r
}

func (r *rig) frame(t *testing.T) {
	t.Helper()
	require.NoError(t, r.pipe.Frame(1))
	r.disp.SwapBuffers()
	r.disp.AdvanceFrame()
	r.input.EndFrame()
}

func TestEnterCreatesAssets(t *testing.T) {
	r := newRig(t)
	before := r.pools.InUse(memory.Chip)
	r.frame(t)

	assert.Equal(t, before+4, r.pools.InUse(memory.Chip), "balls, font, backdrop and ship")
	assert.Len(t, r.demo.Balls(), numBalls)
	require.NotNil(t, r.demo.Player())
	assert.Same(t, r.demo.Stage().Program, r.disp.Program())
	assert.Equal(t, numBalls, r.pipe.Stats().Drawn)
	assert.Equal(t, 1, r.pipe.Stats().Sprites)

	// title glyphs landed in the backdrop
	bd := r.demo.Stage().Backdrops[0]
	set := 0
	for y := 8; y < 16; y++ {
		for x := 0; x < bd.Width; x += 16 {
			if r.ram.Read16(bd.WordAddr(x, y, 0)) != 0 {
				set++
			}
		}
	}
	assert.Positive(t, set)
}

func TestScanOut(t *testing.T) {
	r := newRig(t)
	r.frame(t)

	fb, err := video.New(r.ram, false).Render(r.disp.Program().Words)
	require.NoError(t, err)
	assert.Equal(t, video.RGBA(0x000), fb.GetPixel(0, 0))
	assert.Equal(t, video.RGBA(0x00c), fb.GetPixel(0, 100), "gradient band 12")
	assert.Equal(t, video.RGBA(Palette[8]), fb.GetPixel(0, 255), "dark floor square")
	assert.Equal(t, video.RGBA(Palette[9]), fb.GetPixel(16, 255), "light floor square")
}

func TestBallsStayInsideThePlayfield(t *testing.T) {
	r := newRig(t)
	for i := 0; i < 400; i++ {
		r.frame(t)
		require.Zero(t, r.pipe.Stats().Clipped, "frame %d", i)
	}
	for _, b := range r.demo.Balls() {
		assert.True(t, b.Bounds.Inside(320, 256-floorHeight), "ball at %s", b.Bounds)
	}
}

func TestFireReversesBalls(t *testing.T) {
	r := newRig(t)
	r.frame(t)

	before := make(map[int]int)
	for i, b := range r.demo.Balls() {
		before[i] = r.demo.velocity[b].X
	}
	r.input.Trigger(action.PlayerFire, event.Press)
	require.NoError(t, r.pipe.Frame(1))

	for i, b := range r.demo.Balls() {
		assert.Equal(t, -before[i], r.demo.velocity[b].X, "ball %d", i)
	}
}

func TestPlayerFollowsInput(t *testing.T) {
	r := newRig(t)
	r.frame(t)
	p := r.demo.Player()
	x0 := p.Bounds.X

	r.input.Trigger(action.PlayerRight, event.Press)
	r.frame(t)
	assert.Equal(t, x0+playerSpeed, p.Bounds.X)

	r.input.Trigger(action.PlayerRight, event.Release)
	r.input.Trigger(action.PlayerLeft, event.Hold)
	for i := 0; i < 320; i++ {
		r.frame(t)
	}
	assert.Zero(t, p.Bounds.X, "clamped at the left edge")

	r.input.Trigger(action.PlayerLeft, event.Release)
	r.input.Trigger(action.PlayerUp, event.Hold)
	for i := 0; i < 256; i++ {
		r.frame(t)
	}
	assert.Zero(t, p.Bounds.Y)
}

func TestFreeReleasesAssets(t *testing.T) {
	r := newRig(t)
	before := r.pools.InUse(memory.Chip)
	r.frame(t)

	r.demo.Free()
	assert.Equal(t, before, r.pools.InUse(memory.Chip))
	r.demo.Free()
	assert.Equal(t, before, r.pools.InUse(memory.Chip))
	assert.Nil(t, r.demo.Player())
}

func TestFontGlyphs(t *testing.T) {
	pools, err := memory.New(memory.DefaultConfig())
	require.NoError(t, err)
	ram := pools.ChipRAM()

	font, _, err := makeFont(pools, ram)
	require.NoError(t, err)
	assert.Equal(t, 256, font.Width)
	assert.Equal(t, 24, font.Height)

	glyphBits := func(ch byte) int {
		i := int(ch - firstGlyph)
		gx, gy := (i%blit.GlyphsPerRow)*blit.GlyphSize, (i/blit.GlyphsPerRow)*blit.GlyphSize
		n := 0
		for y := gy; y < gy+blit.GlyphSize; y++ {
			b := ram.Read8(font.Addr + uint32(font.Offset(gx, y)))
			for ; b != 0; b &= b - 1 {
				n++
			}
		}
		return n
	}
	assert.Zero(t, glyphBits(' '))
	assert.Positive(t, glyphBits('A'))
	assert.Positive(t, glyphBits('z'))
}

func TestShipRows(t *testing.T) {
	rows := shipRows(0)
	require.Len(t, rows, 2*tileSize)
	assert.NotEqual(t, rows, shipRows(1))
	assert.Zero(t, rows[0]|rows[1], "the diamond does not reach the top line")
}
