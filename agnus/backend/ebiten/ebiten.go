//go:build ebiten

package ebiten

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/debug"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/timing"
	"github.com/valerio/go-agnus/agnus/video"
)

// keyMapping maps window keys to actions
var keyMapping = map[ebiten.Key]action.Action{
	ebiten.KeyArrowUp:    action.PlayerUp,
	ebiten.KeyArrowDown:  action.PlayerDown,
	ebiten.KeyArrowLeft:  action.PlayerLeft,
	ebiten.KeyArrowRight: action.PlayerRight,
	ebiten.KeyW:          action.PlayerUp,
	ebiten.KeyS:          action.PlayerDown,
	ebiten.KeyA:          action.PlayerLeft,
	ebiten.KeyD:          action.PlayerRight,
	ebiten.KeyZ:          action.PlayerFire,
	ebiten.KeyControl:    action.PlayerFire,
	ebiten.KeySpace:      action.EnginePauseToggle,
	ebiten.KeyP:          action.EnginePauseToggle,
	ebiten.KeyO:          action.EngineStepFrame,
	ebiten.KeyF9:         action.EngineSnapshot,
	ebiten.KeyF10:        action.EngineDebugToggle,
	ebiten.KeyF11:        action.EngineDumpCopper,
	ebiten.KeyEscape:     action.EngineQuit,
	ebiten.KeyQ:          action.EngineQuit,
}

// Backend presents frames in a window. The window toolkit owns the main
// loop, so the engine drives it through Run.
type Backend struct {
	config backend.BackendConfig
	frame  *ebiten.Image
	pixels *image.RGBA
	last   *video.FrameBuffer
	events []backend.InputEvent
	step   func() error
	err    error
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	if config.Scale < 1 {
		config.Scale = 2
	}
	b.config = config
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(timing.TargetFPS(config.NTSC) + 0.5))
	slog.Info("Window backend initialized", "scale", config.Scale, "tps", ebiten.TPS())
	return nil
}

// Run starts the window loop, calling step once per tick.
func (b *Backend) Run(step func() error) error {
	b.step = step
	err := ebiten.RunGame(game{b})
	if errors.Is(err, backend.ErrQuit) || errors.Is(err, ebiten.Termination) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.err
}

// Update presents frame, returning the input collected since the last call.
// It is called from within step.
func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	w, h := frame.Width(), frame.Height()
	if b.frame == nil || b.pixels.Bounds().Dx() != w || b.pixels.Bounds().Dy() != h {
		b.frame = ebiten.NewImage(w, h)
		b.pixels = image.NewRGBA(image.Rect(0, 0, w, h))
		ebiten.SetWindowSize(w*b.config.Scale, h*b.config.Scale)
	}
	for i, px := range frame.ToSlice() {
		r, g, bl, a := video.Components(px)
		j := i * video.RGBABytesPerPixel
		b.pixels.Pix[j], b.pixels.Pix[j+1], b.pixels.Pix[j+2], b.pixels.Pix[j+3] = r, g, bl, a
	}
	b.frame.WritePixels(b.pixels.Pix)
	b.last = frame

	events := b.events
	b.events = nil
	return events, nil
}

func (b *Backend) Cleanup() error {
	return nil
}

func (b *Backend) pollInput() {
	for key, act := range keyMapping {
		switch {
		case inpututil.IsKeyJustPressed(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Press})
			if act == action.EngineSnapshot {
				debug.TakeSnapshot(b.last, b.config.Scale)
			}
		case inpututil.IsKeyJustReleased(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Release})
		case act.IsPlayer() && ebiten.IsKeyPressed(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}
}

// game adapts the backend to ebiten.Game, whose Update has a different
// signature from the engine facing one.
type game struct{ *Backend }

func (g game) Update() error {
	g.pollInput()
	if g.step == nil {
		return nil
	}
	if err := g.step(); err != nil {
		if !errors.Is(err, backend.ErrQuit) {
			g.err = fmt.Errorf("engine step: %w", err)
		}
		return ebiten.Termination
	}
	return nil
}

func (g game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if g.frame == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := g.frame.Bounds().Dx(), g.frame.Bounds().Dy()
	scale := min(float64(sw)/float64(fw), float64(sh)/float64(fh))
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-float64(fw)*scale)/2, (float64(sh)-float64(fh)*scale)/2)
	screen.DrawImage(g.frame, op)
}

func (g game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
