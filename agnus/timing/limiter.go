// Package timing paces the engine loop at the display's frame rate.
package timing

import (
	"fmt"
	"time"
)

// Limiter controls frame rate timing for the engine loop.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// Video timing of the two display standards, in color clocks.
const (
	PALColorClock  = 3546895
	NTSCColorClock = 3579545

	PALClocksPerLine  = 227
	NTSCClocksPerLine = 227.5
	PALLines          = 313
	NTSCLines         = 262.5
)

// TargetFPS calculates the exact frame rate of the display standard.
func TargetFPS(ntsc bool) float64 {
	if ntsc {
		return NTSCColorClock / (NTSCClocksPerLine * NTSCLines)
	}
	return PALColorClock / float64(PALClocksPerLine*PALLines)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration(ntsc bool) time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS(ntsc))
}

// Limiter kinds accepted by New.
const (
	KindAdaptive = "adaptive"
	KindTicker   = "ticker"
	KindNone     = "none"
)

// New returns a limiter of the given kind for the display standard.
func New(kind string, ntsc bool) (Limiter, error) {
	switch kind {
	case KindAdaptive, "":
		return NewAdaptiveLimiter(FrameDuration(ntsc)), nil
	case KindTicker:
		return NewTickerLimiter(FrameDuration(ntsc)), nil
	case KindNone:
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown limiter %q", kind)
}
