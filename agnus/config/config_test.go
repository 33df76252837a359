package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
viewport:
  width: 288
  height: 200
  ntsc: true
playfields:
  - {width: 320, height: 200, depth: 3, buffers: 2, interleaved: true}
  - {width: 320, height: 200, depth: 2, buffers: 1}
timing:
  limiter: ticker
`))
	require.NoError(t, err)
	assert.Equal(t, Viewport{Width: 288, Height: 200, NTSC: true}, cfg.Viewport)
	assert.Len(t, cfg.Playfields, 2)
	assert.Equal(t, "ticker", cfg.Timing.Limiter)
	assert.Equal(t, Default().Memory, cfg.Memory, "unset sections keep their defaults")

	vp, pfs := cfg.Display()
	assert.True(t, vp.NTSC)
	assert.Equal(t, 288, vp.Width)
	assert.Equal(t, 3, pfs[0].Depth)
	assert.False(t, pfs[1].Interleaved)
	assert.Equal(t, Default().Memory.ChipMaxBlocks, cfg.MemoryConfig().ChipMaxBlocks)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("viewport:\n  widht: 320\n"))
	assert.ErrorContains(t, err, "widht")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"viewport width", func(c *Config) { c.Viewport.Width = 256 }},
		{"pal height", func(c *Config) { c.Viewport.Height = 257 }},
		{"ntsc height", func(c *Config) { c.Viewport.NTSC = true }},
		{"no playfields", func(c *Config) { c.Playfields = nil }},
		{"three playfields", func(c *Config) { c.Playfields = append(c.Playfields, c.Playfields[0], c.Playfields[0]) }},
		{"unaligned width", func(c *Config) { c.Playfields[0].Width = 328 }},
		{"narrow playfield", func(c *Config) { c.Playfields[0].Width = 304 }},
		{"short playfield", func(c *Config) { c.Playfields[0].Height = 200 }},
		{"depth", func(c *Config) { c.Playfields[0].Depth = 6 }},
		{"dual playfield depth", func(c *Config) { c.Playfields = append(c.Playfields, c.Playfields[0]) }},
		{"buffers", func(c *Config) { c.Playfields[0].Buffers = 3 }},
		{"memory", func(c *Config) { c.Memory.ChipMaxBlocks = 0 }},
		{"chip pool", func(c *Config) { c.Memory.ChipPoolSize = 2 << 20 }},
		{"limiter", func(c *Config) { c.Timing.Limiter = "vsync" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 288

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	path := filepath.Join(t.TempDir(), "agnus.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
