package sprite

// LoopMode selects what happens when an animation reaches its last frame.
type LoopMode uint8

const (
	// LoopNone keeps the current frame.
	LoopNone LoopMode = iota
	// Loop wraps from the last frame back to the first.
	Loop
	// LoopPingPong reverses direction at the first and last frame.
	LoopPingPong
)

func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case Loop:
		return "loop"
	case LoopPingPong:
		return "pingpong"
	}
	return "unknown"
}

// Animation steps through a list of frame indexes, one step every Speed
// ticks.
type Animation struct {
	Frames  []int
	Current int
	Tick    int
	Speed   int
	Mode    LoopMode

	// backwards is set while a ping-pong animation runs towards frame 0.
	backwards bool
}

// NewAnimation returns an animation positioned on its first frame.
func NewAnimation(frames []int, speed int, mode LoopMode) Animation {
	return Animation{Frames: frames, Speed: speed, Mode: mode}
}

// Frame returns the frame index shown, 0 for an animation without frames.
func (a *Animation) Frame() int {
	if len(a.Frames) == 0 {
		return 0
	}
	return a.Frames[a.Current]
}

// Backwards reports the direction of a ping-pong animation.
func (a *Animation) Backwards() bool {
	return a.backwards
}

// Reset returns to the first frame, running forwards.
func (a *Animation) Reset() {
	a.Current = 0
	a.Tick = 0
	a.backwards = false
}

// Advance counts one tick. When the tick count reaches Speed it is reset
// and the animation steps to its next frame. It reports whether the shown
// frame changed.
func (a *Animation) Advance() bool {
	a.Tick++
	if a.Tick < a.Speed {
		return false
	}
	a.Tick = 0
	return a.step()
}

func (a *Animation) step() bool {
	n := len(a.Frames)
	if n <= 1 {
		return false
	}

	prev := a.Current
	switch a.Mode {
	case LoopNone:
	case Loop:
		a.Current = (a.Current + 1) % n
	case LoopPingPong:
		if a.backwards {
			a.Current--
		} else {
			a.Current++
		}
		if a.Current == n-1 || a.Current == 0 {
			a.backwards = !a.backwards
		}
	}
	return a.Current != prev
}
