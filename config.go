package matrixview

import (
	"fmt"
	"net/url"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ViewportSettings is the file form of ViewportConfig.
type ViewportSettings struct {
	MaxZoom      float64 `yaml:"max_zoom"`
	ZoomStep     float64 `yaml:"zoom_step"`
	ZoomDuration float64 `yaml:"zoom_duration"` // seconds, 0 or negative = immediate
	PanScale     float64 `yaml:"pan_scale"`
	ZoomToCell   bool    `yaml:"zoom_to_cell"`
}

// Config configures a viewer run.
type Config struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`

	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	ListWidth int    `yaml:"list_width"`

	ShowValues   bool `yaml:"show_values"`
	MaxSnapshots int  `yaml:"max_snapshots"` // 0 = unbounded
	CacheSize    int  `yaml:"cache_size"`

	// MaxMessageBytes caps a single SSE event.
	MaxMessageBytes int `yaml:"max_message_bytes"`

	Viewport ViewportSettings `yaml:"viewport"`

	LogLevel      string `yaml:"log_level"`
	Debug         bool   `yaml:"debug"`
	Script        string `yaml:"script"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a field.
func DefaultConfig() Config {
	return Config{
		URL:             "http://localhost:8081/api/events",
		Title:           "matrixview",
		Width:           1280,
		Height:          800,
		ListWidth:       240,
		CacheSize:       defaultFrameCache,
		MaxMessageBytes: DefaultMaxMessageBytes,
		LogLevel:        "info",
		ScreenshotDir:   "screenshots",
		Viewport: ViewportSettings{
			MaxZoom:      defaultMaxZoom,
			ZoomStep:     defaultZoomStep,
			ZoomDuration: defaultZoomDuration,
			PanScale:     1,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: url %q: %w", ErrInvalidConfig, c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url %q: scheme must be http or https", ErrInvalidConfig, c.URL)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.ListWidth < 0 || c.ListWidth >= c.Width {
		return fmt.Errorf("%w: list width %d for window width %d", ErrInvalidConfig, c.ListWidth, c.Width)
	}
	if c.MaxSnapshots < 0 {
		return fmt.Errorf("%w: max snapshots %d", ErrInvalidConfig, c.MaxSnapshots)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache size %d", ErrInvalidConfig, c.CacheSize)
	}
	if c.MaxMessageBytes < 0 {
		return fmt.Errorf("%w: max message bytes %d", ErrInvalidConfig, c.MaxMessageBytes)
	}
	if c.Viewport.MaxZoom < 1 {
		return fmt.Errorf("%w: max zoom %v below 1", ErrInvalidConfig, c.Viewport.MaxZoom)
	}
	if c.Viewport.ZoomStep <= 0 {
		return fmt.Errorf("%w: zoom step %v", ErrInvalidConfig, c.Viewport.ZoomStep)
	}
	if c.Viewport.PanScale <= 0 {
		return fmt.Errorf("%w: pan scale %v", ErrInvalidConfig, c.Viewport.PanScale)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ViewportConfig maps the file settings onto a ViewportConfig.
func (c Config) ViewportConfig() ViewportConfig {
	d := float32(c.Viewport.ZoomDuration)
	if c.Viewport.ZoomDuration <= 0 {
		d = -1
	}
	return ViewportConfig{
		MaxZoom:      c.Viewport.MaxZoom,
		ZoomStep:     c.Viewport.ZoomStep,
		ZoomDuration: d,
		PanScale:     c.Viewport.PanScale,
		ZoomToCell:   c.Viewport.ZoomToCell,
	}
}

// RendererOptions maps the config onto RendererOptions.
func (c Config) RendererOptions() RendererOptions {
	return RendererOptions{
		ShowValues: c.ShowValues,
		CacheSize:  c.CacheSize,
	}
}
