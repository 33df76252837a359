package debug

import (
	"io"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/hw"
)

// TraceBlits wraps b so that every blit it starts is logged to w, one
// text record per blit.
func TraceBlits(b hw.Blitter, w io.Writer) *hw.Tracer {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return hw.NewTracer(b, logger)
}
