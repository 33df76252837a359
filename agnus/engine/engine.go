// Package engine runs the frame loop: the stage pipeline draws into the
// back buffers, the buffers swap, the display program is scanned out and
// presented by a backend, and the loop waits for the next vertical blank.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/blit"
	"github.com/valerio/go-agnus/agnus/config"
	"github.com/valerio/go-agnus/agnus/debug"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/events"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/stage"
	"github.com/valerio/go-agnus/agnus/timing"
	"github.com/valerio/go-agnus/agnus/video"
)

// DefaultCopperDump is where the dump copper action writes the program.
const DefaultCopperDump = "agnus_copper.go"

// Options configures an engine.
type Options struct {
	Config  config.Config
	Backend backend.Backend

	Title string
	Scale int

	// VBlank overrides the vertical blank source. When nil the engine
	// paces itself with the limiter named by the configuration.
	VBlank events.Source
	// TraceBlits receives one log record per blit when set.
	TraceBlits io.Writer
	// CopperDump is the output path of the dump copper action.
	CopperDump string
}

// Engine owns every long lived part of a session.
type Engine struct {
	cfg   config.Config
	opts  Options
	pools *memory.Pools

	blitter hw.Blitter
	tracer  *hw.Tracer
	disp    *display.Engine
	pipe    *stage.Pipeline
	video   *video.Display
	input   *input.Manager
	backend backend.Backend
	vblank  events.Source

	paused    bool
	stepOnce  bool
	quit      bool
	lastBlank uint64
	frames    uint64
}

// New builds an engine from validated configuration. Display buffers are
// allocated here; an allocation failure releases what was acquired and
// is returned wrapping display.ErrAllocation.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Backend == nil {
		return nil, errors.New("engine: no backend")
	}
	if opts.CopperDump == "" {
		opts.CopperDump = DefaultCopperDump
	}

	pools, err := memory.New(cfg.MemoryConfig())
	if err != nil {
		return nil, fmt.Errorf("memory pools: %w", err)
	}
	ram := pools.ChipRAM()

	e := &Engine{
		cfg:     cfg,
		opts:    opts,
		pools:   pools,
		input:   input.NewManager(),
		backend: opts.Backend,
		vblank:  opts.VBlank,
	}

	e.blitter = hw.NewSoftBlitter(ram)
	if opts.TraceBlits != nil {
		e.tracer = debug.TraceBlits(e.blitter, opts.TraceBlits)
		e.blitter = e.tracer
	}
	e.disp = display.New(pools, blit.New(e.blitter))

	vp, specs := cfg.Display()
	if err := e.disp.InitBuffers(vp, specs); err != nil {
		e.disp.Shutdown()
		return nil, err
	}

	e.pipe = stage.NewPipeline(e.disp, ram)
	e.pipe.SetInput(e.input)
	e.video = video.New(ram, vp.NTSC)

	if e.vblank == nil {
		l, err := timing.New(cfg.Timing.Limiter, vp.NTSC)
		if err != nil {
			e.disp.Shutdown()
			return nil, err
		}
		e.vblank = events.NewVBlank(l)
	}

	e.setupInputHandlers()

	slog.Info("Engine initialized",
		"width", vp.Width, "height", vp.Height, "ntsc", vp.NTSC,
		"playfields", len(specs), "fps", timing.TargetFPS(vp.NTSC))
	return e, nil
}

func (e *Engine) setupInputHandlers() {
	e.input.On(action.EngineQuit, event.Press, e.Exit)
	e.input.On(action.EnginePauseToggle, event.Press, func() {
		e.paused = !e.paused
		slog.Info("Pause toggled", "paused", e.paused, "frame", e.disp.Frame())
	})
	e.input.On(action.EngineStepFrame, event.Press, func() {
		if e.paused {
			e.stepOnce = true
		}
	})
	e.input.On(action.EngineDumpCopper, event.Press, func() {
		if err := e.DumpCopper(e.opts.CopperDump); err != nil {
			slog.Error("Failed to dump display program", "error", err)
		}
	})
}

// SetStage makes s the current stage from the next frame on.
func (e *Engine) SetStage(s *stage.Stage) {
	e.pipe.SetCurrent(s)
}

func (e *Engine) Pools() *memory.Pools      { return e.pools }
func (e *Engine) ChipRAM() *memory.ChipRAM  { return e.pools.ChipRAM() }
func (e *Engine) Display() *display.Engine  { return e.disp }
func (e *Engine) Pipeline() *stage.Pipeline { return e.pipe }
func (e *Engine) Input() *input.Manager     { return e.input }

// Frames returns the number of frames presented.
func (e *Engine) Frames() uint64 {
	return e.frames
}

func (e *Engine) Paused() bool {
	return e.paused
}

// Blits returns the number of blits traced, or 0 without tracing.
func (e *Engine) Blits() int {
	if e.tracer == nil {
		return 0
	}
	return e.tracer.Count()
}

// Exit stops the loop after the current frame.
func (e *Engine) Exit() {
	e.quit = true
}

func (e *Engine) status() string {
	s := e.pipe.Stats()
	status := fmt.Sprintf("frame %d bobs %d restored %d", e.disp.Frame(), s.Drawn, s.Restored)
	if e.paused {
		status += " [paused]"
	}
	return status
}

func (e *Engine) backendConfig() backend.BackendConfig {
	return backend.BackendConfig{
		Title: e.opts.Title,
		Scale: e.opts.Scale,
		NTSC:  e.cfg.Viewport.NTSC,
		Callbacks: backend.BackendCallbacks{
			OnQuit: e.Exit,
			Status: e.status,
		},
	}
}

// Run drives the loop until the stage exits, an exit is requested or ctx
// is done. Backends implementing backend.Driver own the loop and call
// back into the engine once per frame.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.backend.Init(e.backendConfig()); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer e.cleanupBackend()

	stop := e.startVBlank(ctx)
	defer stop()

	step := func() error { return e.Step(ctx) }

	var err error
	if d, ok := e.backend.(backend.Driver); ok {
		err = d.Run(step)
	} else {
		for err == nil {
			err = step()
		}
	}

	switch {
	case errors.Is(err, backend.ErrQuit), errors.Is(err, context.Canceled):
		slog.Info("Engine stopped", "frames", e.frames)
		return nil
	default:
		return err
	}
}

// RunFrames initialises the backend and runs up to n frames.
func (e *Engine) RunFrames(ctx context.Context, n int) error {
	if err := e.backend.Init(e.backendConfig()); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer e.cleanupBackend()
	stop := e.startVBlank(ctx)
	defer stop()

	for i := 0; i < n; i++ {
		if err := e.Step(ctx); err != nil {
			if errors.Is(err, backend.ErrQuit) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (e *Engine) cleanupBackend() {
	if err := e.backend.Cleanup(); err != nil {
		slog.Error("Backend cleanup failed", "error", err)
	}
}

// startVBlank starts the interrupt goroutine of a paced source. The
// engine runs a paced source once; a stopped VBlank does not restart.
func (e *Engine) startVBlank(ctx context.Context) (stop func()) {
	vb, ok := e.vblank.(*events.VBlank)
	if !ok {
		return func() {}
	}
	vb.Start(ctx)
	return vb.Stop
}

// Step runs one frame. It returns backend.ErrQuit once the loop should
// stop.
func (e *Engine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	count := e.vblank.Count()
	elapsed := int(count - e.lastBlank)
	e.lastBlank = count
	if elapsed < 1 {
		elapsed = 1
	}

	if !e.paused || e.stepOnce {
		e.stepOnce = false
		if err := e.pipe.Frame(elapsed); err != nil {
			return err
		}
		e.disp.SwapBuffers()
		e.disp.AdvanceFrame()
	}

	fb, err := e.video.Render(e.disp.Program().Words)
	if err != nil {
		return err
	}
	evts, err := e.backend.Update(fb)
	if err != nil {
		return fmt.Errorf("backend update: %w", err)
	}
	e.frames++

	// presses arriving now are seen by the next frame's update
	e.input.EndFrame()
	backend.Dispatch(e.input, evts)

	if e.quit || e.pipe.Exiting() {
		return backend.ErrQuit
	}

	return e.vblank.Wait(ctx)
}

// DumpCopper writes the current display program as Go source.
func (e *Engine) DumpCopper(path string) error {
	if err := debug.DumpCopperFile(path, "copperlists", "Frame", e.disp.Program()); err != nil {
		return err
	}
	slog.Info("Display program dumped", "path", path, "frame", e.disp.Frame())
	return nil
}

// Shutdown releases the display buffers.
func (e *Engine) Shutdown() {
	e.disp.Shutdown()
	if vb, ok := e.vblank.(*events.VBlank); ok {
		vb.Stop()
	}
}
