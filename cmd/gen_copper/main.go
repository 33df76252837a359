// Command gen_copper writes the display program of standard display
// layouts as Go source, for inspection and for use as fixtures.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/valerio/go-agnus/agnus/blit"
	"github.com/valerio/go-agnus/agnus/config"
	"github.com/valerio/go-agnus/agnus/debug"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/memory"
)

type layout struct {
	Name string
	cfg  config.Config
}

func standardLayouts() []layout {
	pal := config.Default()

	ntsc := config.Default()
	ntsc.Viewport = config.Viewport{Width: 320, Height: 200, NTSC: true}
	ntsc.Playfields[0].Height = 200

	narrow := config.Default()
	narrow.Viewport.Width = 288
	narrow.Playfields[0].Width = 288

	dual := config.Default()
	dual.Playfields = []config.Playfield{
		{Width: 320, Height: 256, Depth: 3, Buffers: 2, Interleaved: true},
		{Width: 320, Height: 256, Depth: 3, Buffers: 1, Interleaved: true},
	}

	wide := config.Default()
	wide.Playfields[0] = config.Playfield{Width: 640, Height: 256, Depth: 5, Buffers: 1}

	return []layout{
		{"Pal320", pal},
		{"Ntsc320", ntsc},
		{"Pal288", narrow},
		{"DualPlayfield", dual},
		{"WidePlanar", wide},
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "gen_copper"
	app.Usage = "gen_copper [options]"
	app.Description = "Writes the display program of each standard layout as Go source"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "out",
			Usage: "Output directory",
			Value: filepath.Join("agnus", "copper", "testdata"),
		},
		cli.StringFlag{
			Name:  "pkg",
			Usage: "Package name of the generated files",
			Value: "copperlists",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Also generate the layout of this configuration file, as Custom",
		},
	}
	app.Action = generate

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error generating copper lists", "error", err)
		os.Exit(1)
	}
}

func generate(c *cli.Context) error {
	layouts := standardLayouts()
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		layouts = append(layouts, layout{"Custom", cfg})
	}

	out := c.String("out")
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, l := range layouts {
		path := filepath.Join(out, strings.ToLower(l.Name)+".go")
		if err := writeLayout(path, c.String("pkg"), l); err != nil {
			return fmt.Errorf("layout %s: %w", l.Name, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

// writeLayout sets up a display for the layout, so that the program holds
// real buffer addresses, and dumps its program.
func writeLayout(path, pkg string, l layout) error {
	if err := l.cfg.Validate(); err != nil {
		return err
	}
	pools, err := memory.New(l.cfg.MemoryConfig())
	if err != nil {
		return err
	}
	disp := display.New(pools, blit.New(hw.NewSoftBlitter(pools.ChipRAM())))
	defer disp.Shutdown()

	vp, specs := l.cfg.Display()
	if err := disp.InitBuffers(vp, specs); err != nil {
		return err
	}
	return debug.DumpCopperFile(path, pkg, l.Name, disp.Program())
}
