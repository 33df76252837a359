package render

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/video"
)

func TestLogBufferWraps(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Nil(t, lb.GetRecent(0))
	for i, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Time: time.Unix(int64(i), 0), Message: msg})
	}

	recent := lb.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "b", recent[2].Message)
	assert.Len(t, lb.GetRecent(2), 2)

	lb.Clear()
	assert.Nil(t, lb.GetRecent(0))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(NewLogBufferHandler(lb, level))

	logger.Debug("hidden")
	logger.With("stage", "demo").WithGroup("bob").Info("moved", "x", 3)
	require.Len(t, lb.GetRecent(0), 1)
	assert.Equal(t, "moved stage=demo bob.x=3", lb.GetRecent(0)[0].Message)

	level.Set(slog.LevelDebug)
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestFormatLogEntry(t *testing.T) {
	e := LogEntry{Time: time.Date(2024, 1, 1, 12, 30, 5, 0, time.Local), Level: slog.LevelWarn, Message: "late"}
	assert.Equal(t, "12:30:05 [WRN] late", FormatLogEntry(e))
}

func TestHalfBlockCell(t *testing.T) {
	ch, style := HalfBlockCell(video.RGBA(0x0f00), video.RGBA(0x000f))
	assert.Equal(t, UpperHalfBlock, ch)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0xff), bg)
}

func TestStep(t *testing.T) {
	assert.Equal(t, 1, Step(320, 400))
	assert.Equal(t, 2, Step(320, 160))
	assert.Equal(t, 3, Step(320, 150))
	assert.Equal(t, 320, Step(320, 0))
}
