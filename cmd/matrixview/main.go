// Command matrixview subscribes to a server-sent event stream of labeled
// matrices and shows them as zoomable color grids.
package main

import (
	"os"

	"github.com/phanxgames/matrixview"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	flagCfg    = matrixview.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "matrixview [url]",
	Short: "live viewer for streamed numeric matrices",
	Long: `matrixview subscribes to a server-sent event stream where every event
carries {"label": ..., "matrix": [[...]]} and shows the selected matrix as a
grid of colored cells.

Wheel or pinch zooms around the cursor, right or middle drag pans, double
click zooms in. R resets the view, V toggles cell values.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVar(&flagCfg.URL, "url", flagCfg.URL, "event stream URL")
	f.IntVar(&flagCfg.Width, "width", flagCfg.Width, "window width")
	f.IntVar(&flagCfg.Height, "height", flagCfg.Height, "window height")
	f.BoolVar(&flagCfg.ShowValues, "show-values", flagCfg.ShowValues, "draw cell values")
	f.Float64Var(&flagCfg.Viewport.MaxZoom, "max-zoom", flagCfg.Viewport.MaxZoom, "maximum zoom factor")
	f.Float64Var(&flagCfg.Viewport.ZoomStep, "zoom-step", flagCfg.Viewport.ZoomStep, "log2 zoom per wheel notch")
	f.Float64Var(&flagCfg.Viewport.ZoomDuration, "zoom-duration", flagCfg.Viewport.ZoomDuration, "zoom easing in seconds, 0 for none")
	f.BoolVar(&flagCfg.Viewport.ZoomToCell, "zoom-to-cell", flagCfg.Viewport.ZoomToCell, "allow zooming in until one cell fills the view")
	f.IntVar(&flagCfg.MaxSnapshots, "max-snapshots", flagCfg.MaxSnapshots, "keep at most this many snapshots, 0 for all")
	f.IntVar(&flagCfg.MaxMessageBytes, "max-message-bytes", flagCfg.MaxMessageBytes, "largest SSE event accepted, in bytes")
	f.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "log level")
	f.BoolVar(&flagCfg.Debug, "debug", flagCfg.Debug, "log frame stats")
	f.StringVar(&flagCfg.Script, "script", flagCfg.Script, "JSON input script to replay")
	f.StringVar(&flagCfg.ScreenshotDir, "screenshot-dir", flagCfg.ScreenshotDir, "directory for script screenshots")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := flagCfg
	if configPath != "" {
		fileCfg, err := matrixview.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = overlay(fileCfg, cmd)
	}
	if len(args) == 1 {
		cfg.URL = args[0]
	}
	if cfg.Debug && !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	return matrixview.Run(cfg)
}

// overlay applies the flags given on the command line on top of a config
// loaded from file.
func overlay(cfg matrixview.Config, cmd *cobra.Command) matrixview.Config {
	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.URL = flagCfg.URL
	}
	if changed("width") {
		cfg.Width = flagCfg.Width
	}
	if changed("height") {
		cfg.Height = flagCfg.Height
	}
	if changed("show-values") {
		cfg.ShowValues = flagCfg.ShowValues
	}
	if changed("max-zoom") {
		cfg.Viewport.MaxZoom = flagCfg.Viewport.MaxZoom
	}
	if changed("zoom-step") {
		cfg.Viewport.ZoomStep = flagCfg.Viewport.ZoomStep
	}
	if changed("zoom-duration") {
		cfg.Viewport.ZoomDuration = flagCfg.Viewport.ZoomDuration
	}
	if changed("zoom-to-cell") {
		cfg.Viewport.ZoomToCell = flagCfg.Viewport.ZoomToCell
	}
	if changed("max-snapshots") {
		cfg.MaxSnapshots = flagCfg.MaxSnapshots
	}
	if changed("max-message-bytes") {
		cfg.MaxMessageBytes = flagCfg.MaxMessageBytes
	}
	if changed("log-level") {
		cfg.LogLevel = flagCfg.LogLevel
	}
	if changed("debug") {
		cfg.Debug = flagCfg.Debug
	}
	if changed("script") {
		cfg.Script = flagCfg.Script
	}
	if changed("screenshot-dir") {
		cfg.ScreenshotDir = flagCfg.ScreenshotDir
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("matrixview: %s", err)
		os.Exit(1)
	}
}
