package backend

import (
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/video"
)

// InputEvent is an action reported by a backend for one frame.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Backend represents an output platform (rendering + input).
// Backends are responsible for:
// - Presenting the scanned out frame on their specific output
// - Translating platform-specific input events to actions
// - Handling backend-specific features (snapshots, log panes)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update presents the frame and returns the input events that
	// arrived since the previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Driver is implemented by backends that must own the main loop, such as
// windowing toolkits. Run calls step once per frame until step returns an
// error or the window is closed; ErrQuit from step ends Run cleanly.
type Driver interface {
	Run(step func() error) error
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title     string
	Scale     int
	NTSC      bool
	ShowDebug bool             // Backends may ignore unsupported features
	Callbacks BackendCallbacks // Callbacks for backend communication
}

// BackendCallbacks allows backends to communicate with the engine
type BackendCallbacks struct {
	// Backend requests shutdown (e.g., window close)
	OnQuit func()

	// Optional status line, such as frame number and blit counts
	Status func() string
}

// Dispatch forwards backend events to the input manager.
func Dispatch(m *input.Manager, events []InputEvent) {
	for _, evt := range events {
		m.Trigger(evt.Action, evt.Type)
	}
}
