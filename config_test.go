package matrixview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, DefaultMaxMessageBytes, DefaultConfig().MaxMessageBytes)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrixview.yaml")
	data := []byte(`
url: https://probe.internal/api/events
headers:
  Authorization: Bearer abc
width: 1600
show_values: true
max_snapshots: 50
max_message_bytes: 1048576
viewport:
  max_zoom: 20
  zoom_to_cell: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://probe.internal/api/events", cfg.URL)
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"])
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, 800, cfg.Height, "missing fields keep defaults")
	assert.True(t, cfg.ShowValues)
	assert.Equal(t, 50, cfg.MaxSnapshots)
	assert.Equal(t, 1<<20, cfg.MaxMessageBytes)
	assert.Equal(t, 20.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, defaultZoomStep, cfg.Viewport.ZoomStep)
	assert.True(t, cfg.Viewport.ZoomToCell)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.URL = "ftp://host/events" }},
		{"empty url", func(c *Config) { c.URL = "" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"list too wide", func(c *Config) { c.ListWidth = c.Width }},
		{"negative snapshots", func(c *Config) { c.MaxSnapshots = -1 }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
		{"negative message size", func(c *Config) { c.MaxMessageBytes = -1 }},
		{"max zoom below one", func(c *Config) { c.Viewport.MaxZoom = 0.5 }},
		{"zero zoom step", func(c *Config) { c.Viewport.ZoomStep = 0 }},
		{"zero pan scale", func(c *Config) { c.Viewport.PanScale = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigViewportMapping(t *testing.T) {
	cfg := DefaultConfig()
	vc := cfg.ViewportConfig()
	assert.Equal(t, float32(defaultZoomDuration), vc.ZoomDuration)
	assert.Equal(t, defaultMaxZoom, vc.MaxZoom)

	cfg.Viewport.ZoomDuration = 0
	assert.Less(t, cfg.ViewportConfig().ZoomDuration, float32(0), "zero duration zooms immediately")

	cfg.ShowValues = true
	cfg.CacheSize = 3
	ro := cfg.RendererOptions()
	assert.True(t, ro.ShowValues)
	assert.Equal(t, 3, ro.CacheSize)
}
