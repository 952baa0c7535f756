// Package config loads the server configuration from an optional YAML file
// and HISTOPATH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/histopath-mcp/internal/logging"
)

// SessionConfig holds the defaults a new annotation session starts from.
type SessionConfig struct {
	// CalibrationScale is micrometres per pixel.
	CalibrationScale float64 `mapstructure:"calibration_scale"`
	// ClusterThresholdUM is the linkage distance for clustering.
	ClusterThresholdUM float64 `mapstructure:"cluster_threshold_um"`
	// EraserRadius is in view pixels.
	EraserRadius  float64 `mapstructure:"eraser_radius"`
	MarkerSize    int     `mapstructure:"marker_size"`
	WindowWidth   int     `mapstructure:"window_width"`
	WindowHeight  int     `mapstructure:"window_height"`
	ZoomStep      float64 `mapstructure:"zoom_step"`
	ShowScaleBar  bool    `mapstructure:"show_scale_bar"`
	PositiveColor string  `mapstructure:"positive_color"`
	OtherColor    string  `mapstructure:"other_color"`
	NegativeColor string  `mapstructure:"negative_color"`
}

// DetectorConfig configures automatic counting.
type DetectorConfig struct {
	// Seed for the mock detector; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9090". Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// RecentConfig configures the recent-files list.
type RecentConfig struct {
	// Path of the JSON list. "~" expands to the home directory. Empty keeps
	// the list in memory.
	Path string `mapstructure:"path"`
}

// Config is the full server configuration.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Session  SessionConfig     `mapstructure:"session"`
	Detector DetectorConfig    `mapstructure:"detector"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Recent   RecentConfig      `mapstructure:"recent"`
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if !positive(c.Session.CalibrationScale) {
		errs = append(errs, fmt.Errorf("session.calibration_scale must be positive, got %v", c.Session.CalibrationScale))
	}
	if c.Session.ClusterThresholdUM < 0 || math.IsNaN(c.Session.ClusterThresholdUM) {
		errs = append(errs, fmt.Errorf("session.cluster_threshold_um must not be negative, got %v", c.Session.ClusterThresholdUM))
	}
	if !positive(c.Session.EraserRadius) {
		errs = append(errs, fmt.Errorf("session.eraser_radius must be positive, got %v", c.Session.EraserRadius))
	}
	if c.Session.MarkerSize < 1 {
		errs = append(errs, fmt.Errorf("session.marker_size must be at least 1, got %d", c.Session.MarkerSize))
	}
	if c.Session.WindowWidth < 1 || c.Session.WindowHeight < 1 {
		errs = append(errs, fmt.Errorf("session window must be at least 1x1, got %dx%d", c.Session.WindowWidth, c.Session.WindowHeight))
	}
	if !(c.Session.ZoomStep > 1) || math.IsInf(c.Session.ZoomStep, 0) {
		errs = append(errs, fmt.Errorf("session.zoom_step must be greater than 1, got %v", c.Session.ZoomStep))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Metrics.Addr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return errors.Join(errs...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
