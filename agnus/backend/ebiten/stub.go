//go:build !ebiten

package ebiten

import (
	"errors"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/video"
)

// ErrUnavailable is returned by every call of the stub backend.
var ErrUnavailable = errors.New("ebiten backend not available - build with -tags ebiten to enable")

// Backend stub for builds without the window toolkit
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

// Init returns an error indicating the window backend is not available
func (b *Backend) Init(config backend.BackendConfig) error {
	return ErrUnavailable
}

func (b *Backend) Run(step func() error) error {
	return ErrUnavailable
}

func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

// Cleanup does nothing
func (b *Backend) Cleanup() error {
	return nil
}
