package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/backend/terminal/render"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/video"
)

func newSim(t *testing.T) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(sim)
	require.NoError(t, b.Init(backend.BackendConfig{
		Title:     "test",
		Callbacks: backend.BackendCallbacks{Status: func() string { return "frame 7" }},
	}))
	sim.SetSize(100, 30)
	t.Cleanup(func() { _ = b.Cleanup() })
	return b, sim
}

func frame() *video.FrameBuffer {
	fb := video.NewFrameBuffer(8, 4)
	fb.Fill(video.BlackColor)
	fb.SetPixel(0, 0, video.RGBA(0x0f00))
	fb.SetPixel(0, 1, video.RGBA(0x000f))
	return fb
}

func find(events []backend.InputEvent, act action.Action) (backend.InputEvent, bool) {
	for _, e := range events {
		if e.Action == act {
			return e, true
		}
	}
	return backend.InputEvent{}, false
}

func TestRendersHalfBlocks(t *testing.T) {
	b, sim := newSim(t)
	_, err := b.Update(frame())
	require.NoError(t, err)

	ch, _, style, _ := sim.GetContent(0, 1)
	assert.Equal(t, '▀', ch)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0xff), bg)

	var title []rune
	for x := 1; x < 16; x++ {
		r, _, _, _ := sim.GetContent(x, 0)
		title = append(title, r)
	}
	assert.Equal(t, " test frame 7 ", string(title[:14]))

	ch, _, _, _ = sim.GetContent(9, 1)
	assert.Equal(t, '│', ch, "log pane divider next to the frame")
}

func TestLogPaneLeavesTitleRow(t *testing.T) {
	b, sim := newSim(t)
	b.logBuffer.Add(render.LogEntry{Time: time.Now(), Level: slog.LevelInfo, Message: "a long log line that would cover the title"})
	_, err := b.Update(frame())
	require.NoError(t, err)

	var title []rune
	for x := 1; x < 15; x++ {
		r, _, _, _ := sim.GetContent(x, 0)
		title = append(title, r)
	}
	assert.Equal(t, " test frame 7 ", string(title))
}

func TestPlayerKeysPressThenHold(t *testing.T) {
	b, sim := newSim(t)

	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events, err := b.Update(frame())
	require.NoError(t, err)
	e, ok := find(events, action.PlayerLeft)
	require.True(t, ok)
	assert.Equal(t, event.Press, e.Type)

	sim.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	events, err = b.Update(frame())
	require.NoError(t, err)
	e, ok = find(events, action.PlayerLeft)
	require.True(t, ok)
	assert.Equal(t, event.Hold, e.Type, "a maps to the same control")
}

func TestEngineKeysAreQueued(t *testing.T) {
	b, sim := newSim(t)

	sim.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	events, err := b.Update(frame())
	require.NoError(t, err)

	_, ok := find(events, action.EnginePauseToggle)
	assert.True(t, ok)
	e, ok := find(events, action.EngineQuit)
	require.True(t, ok)
	assert.Equal(t, event.Press, e.Type)
}

func TestDebugToggleChangesLogLevel(t *testing.T) {
	b, _ := newSim(t)
	b.HandleAction(action.EngineDebugToggle)
	assert.True(t, b.config.ShowDebug)
	b.HandleAction(action.EngineDebugToggle)
	assert.False(t, b.config.ShowDebug)
}

func TestImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
}
