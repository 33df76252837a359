// Package stage runs the per frame update of the current stage: its
// update callback, BOB dirty tracking, the restore and draw pass into the
// back buffers and the hardware sprite update.
package stage

import (
	"fmt"

	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/raster"
	"github.com/valerio/go-agnus/agnus/sprite"
)

// Default pool capacities of a stage.
const (
	DefaultMaxBobs    = 32
	DefaultMaxSprites = 8
)

// Stage is one screen of a game: the objects it shows, how its background
// is restored and what happens each frame.
type Stage struct {
	Name string

	// Backdrops are the restore sources of each playfield. A playfield
	// without one, or with a zero surface, has its dirty tiles cleared.
	Backdrops []raster.Surface

	// Program replaces the display program while the stage is current.
	Program *copper.Program
	Palette []uint16

	Bobs    *sprite.Pool[sprite.Bob]
	Sprites *sprite.Pool[sprite.HWSprite]

	// OnEnter runs when the stage becomes current, before its backdrops
	// are copied into the display buffers.
	OnEnter func(s *Stage) error
	// OnExit runs when a different stage becomes current.
	OnExit func(s *Stage)
	// Update runs first thing every frame.
	Update func(f *Frame)
}

// New returns a stage with pools of the default capacities.
func New(name string) *Stage {
	return &Stage{
		Name:    name,
		Bobs:    sprite.NewPool[sprite.Bob](DefaultMaxBobs),
		Sprites: sprite.NewPool[sprite.HWSprite](DefaultMaxSprites),
	}
}

// AddBob puts a BOB into the stage.
func (s *Stage) AddBob(b sprite.Bob) (*sprite.Bob, error) {
	if b.Sheet == nil || !b.Sheet.Header.Masked() {
		return nil, fmt.Errorf("bob needs a masked tile sheet: %w", raster.ErrLayout)
	}
	p, _, err := s.Bobs.Add(b)
	return p, err
}

// AddSprite puts a hardware sprite into the stage.
func (s *Stage) AddSprite(hs sprite.HWSprite) (*sprite.HWSprite, error) {
	p, _, err := s.Sprites.Add(hs)
	return p, err
}

func (s *Stage) backdrop(pf int) (raster.Surface, bool) {
	if pf >= len(s.Backdrops) || s.Backdrops[pf].Depth == 0 {
		return raster.Surface{}, false
	}
	return s.Backdrops[pf], true
}

// reset releases every object of the stage.
func (s *Stage) reset() {
	s.Bobs.Reset()
	s.Sprites.Reset()
}

// Frame is what a stage's update callback sees of the current frame.
type Frame struct {
	Stage   *Stage
	Display *display.Engine
	// Back is the back buffer of playfield 0.
	Back *display.Buffer
	// Elapsed is the number of frames since the previous update.
	Elapsed int
	// Number is the index of this frame since the engine started.
	Number uint64
	// Input is nil when the pipeline runs without an input manager.
	Input *input.Manager

	pipe *Pipeline
}

// Switch makes next the current stage from the next frame on.
func (f *Frame) Switch(next *Stage) {
	f.pipe.SetCurrent(next)
}

// Exit asks the engine loop to stop after this frame.
func (f *Frame) Exit() {
	f.pipe.Exit()
}
