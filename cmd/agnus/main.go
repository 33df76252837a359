package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/backend/ebiten"
	"github.com/valerio/go-agnus/agnus/backend/headless"
	"github.com/valerio/go-agnus/agnus/backend/terminal"
	"github.com/valerio/go-agnus/agnus/config"
	"github.com/valerio/go-agnus/agnus/demo"
	"github.com/valerio/go-agnus/agnus/engine"
	"github.com/valerio/go-agnus/agnus/events"
)

func main() {
	app := cli.NewApp()
	app.Name = "agnus"
	app.Description = "A frame synchronous blitter and copper compositing engine"
	app.Usage = "agnus [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML configuration file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Output backend: terminal or ebiten (ebiten needs -tags ebiten)",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without output, for a fixed number of frames",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.BoolFlag{
			Name:  "ntsc",
			Usage: "Use NTSC timing and a 200 line viewport",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixel scale of snapshots and windows",
			Value: 2,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "dump-copper",
			Usage: "Write the display program as Go source to this path on exit",
		},
		cli.StringFlag{
			Name:  "trace-blits",
			Usage: "Log every blit to this file ('-' for stderr)",
		},
	}
	app.Action = runEngine

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running engine", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies the flags
// that override it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if c.Bool("ntsc") {
		cfg.Viewport.NTSC = true
		if cfg.Viewport.Height > 200 {
			cfg.Viewport.Height = 200
		}
		for i := range cfg.Playfields {
			cfg.Playfields[i].Height = min(cfg.Playfields[i].Height, cfg.Viewport.Height)
		}
	}
	if l := c.String("limiter"); l != "" {
		cfg.Timing.Limiter = l
	}
	return cfg, cfg.Validate()
}

func traceWriter(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create blit trace: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func createBackend(c *cli.Context) (backend.Backend, events.Source, error) {
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), demo.Name)
		if err != nil {
			return nil, nil, err
		}
		snapshots.Scale = c.Int("scale")

		// Set up debug logging for headless mode
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))
		return headless.New(frames, snapshots), &events.Immediate{}, nil
	}

	switch name := c.String("backend"); name {
	case "terminal":
		return terminal.New(), nil, nil
	case "ebiten":
		return ebiten.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runEngine(c *cli.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	b, vblank, err := createBackend(c)
	if err != nil {
		return err
	}

	trace, closeTrace, err := traceWriter(c.String("trace-blits"))
	if err != nil {
		return err
	}
	defer closeTrace()

	e, err := engine.New(engine.Options{
		Config:     cfg,
		Backend:    b,
		Title:      "agnus",
		Scale:      c.Int("scale"),
		VBlank:     vblank,
		TraceBlits: trace,
	})
	if err != nil {
		return err
	}
	defer e.Shutdown()

	d := demo.New(e.Pools(), e.ChipRAM(), e.Display())
	defer d.Free()
	e.SetStage(d.Stage())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := e.Run(ctx); err != nil {
		return err
	}

	if path := c.String("dump-copper"); path != "" {
		if err := e.DumpCopper(path); err != nil {
			return err
		}
	}
	if trace != nil {
		slog.Info("Blit trace written", "blits", e.Blits())
	}
	return nil
}
