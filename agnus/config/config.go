// Package config loads the engine configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/timing"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Viewport struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	NTSC   bool `yaml:"ntsc"`
}

type Playfield struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Depth       int  `yaml:"depth"`
	Buffers     int  `yaml:"buffers"`
	Interleaved bool `yaml:"interleaved"`
}

type Memory struct {
	GeneralPoolSize  int `yaml:"general_pool_size"`
	GeneralMaxBlocks int `yaml:"general_max_blocks"`
	ChipPoolSize     int `yaml:"chip_pool_size"`
	ChipMaxBlocks    int `yaml:"chip_max_blocks"`
}

type Timing struct {
	Limiter string `yaml:"limiter"`
}

type Config struct {
	Viewport   Viewport    `yaml:"viewport"`
	Playfields []Playfield `yaml:"playfields"`
	Memory     Memory      `yaml:"memory"`
	Timing     Timing      `yaml:"timing"`
}

// Default is a PAL 320x256 display with one double buffered, interleaved
// playfield of depth 4.
func Default() Config {
	mem := memory.DefaultConfig()
	return Config{
		Viewport: Viewport{Width: 320, Height: 256},
		Playfields: []Playfield{
			{Width: 320, Height: 256, Depth: 4, Buffers: 2, Interleaved: true},
		},
		Memory: Memory{
			GeneralPoolSize:  mem.GeneralPoolSize,
			GeneralMaxBlocks: mem.GeneralMaxBlocks,
			ChipPoolSize:     mem.ChipPoolSize,
			ChipMaxBlocks:    mem.ChipMaxBlocks,
		},
		Timing: Timing{Limiter: timing.KindAdaptive},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the display layout against what the hardware can show.
func (c Config) Validate() error {
	vp := c.Viewport
	if vp.Width != 320 && vp.Width != 288 {
		return invalid("viewport width %d, want 320 or 288", vp.Width)
	}
	maxHeight := 256
	if vp.NTSC {
		maxHeight = 200
	}
	if vp.Height <= 0 || vp.Height > maxHeight {
		return invalid("viewport height %d, want 1-%d", vp.Height, maxHeight)
	}

	n := len(c.Playfields)
	if n < 1 || n > 2 {
		return invalid("%d playfields, want 1 or 2", n)
	}
	maxDepth := 5
	if n == 2 {
		maxDepth = 3
	}
	for i, pf := range c.Playfields {
		switch {
		case pf.Width%16 != 0 || pf.Width < vp.Width:
			return invalid("playfield %d: width %d must be a multiple of 16 and at least %d", i, pf.Width, vp.Width)
		case pf.Height < vp.Height:
			return invalid("playfield %d: height %d is less than the viewport", i, pf.Height)
		case pf.Depth < 1 || pf.Depth > maxDepth:
			return invalid("playfield %d: depth %d, want 1-%d", i, pf.Depth, maxDepth)
		case pf.Buffers != 1 && pf.Buffers != 2:
			return invalid("playfield %d: %d buffers, want 1 or 2", i, pf.Buffers)
		}
	}

	m := c.Memory
	if m.GeneralPoolSize <= 0 || m.ChipPoolSize <= 0 || m.GeneralMaxBlocks <= 0 || m.ChipMaxBlocks <= 0 {
		return invalid("memory pools must have a positive size and block count")
	}
	if m.ChipPoolSize > memory.ChipRAMSize-memory.ChipBase {
		return invalid("chip pool of %d bytes exceeds chip RAM", m.ChipPoolSize)
	}

	switch c.Timing.Limiter {
	case timing.KindAdaptive, timing.KindTicker, timing.KindNone:
	default:
		return invalid("unknown limiter %q", c.Timing.Limiter)
	}
	return nil
}

// Display returns the buffer layout for display.Engine.InitBuffers.
func (c Config) Display() (display.ViewportSpec, []display.PlayfieldSpec) {
	vp := display.ViewportSpec{Width: c.Viewport.Width, Height: c.Viewport.Height, NTSC: c.Viewport.NTSC}
	pfs := make([]display.PlayfieldSpec, len(c.Playfields))
	for i, pf := range c.Playfields {
		pfs[i] = display.PlayfieldSpec(pf)
	}
	return vp, pfs
}

// MemoryConfig returns the pool sizes for memory.New.
func (c Config) MemoryConfig() memory.Config {
	return memory.Config(c.Memory)
}
