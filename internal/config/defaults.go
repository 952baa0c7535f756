package config

import "github.com/spf13/viper"

const (
	DefaultCalibrationScale   = 0.25
	DefaultClusterThresholdUM = 50.0
	DefaultEraserRadius       = 20.0
	DefaultMarkerSize         = 8
	DefaultWindowWidth        = 1280
	DefaultWindowHeight       = 800
	DefaultZoomStep           = 1.25

	DefaultPositiveColor = "#ff4d4d"
	DefaultOtherColor    = "#4dff4d"
	DefaultNegativeColor = "#4d4dff"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stderr"

	DefaultMetricsPath = "/metrics"
	DefaultRecentPath  = "~/.histopath/recent_projects.json"
)

// Default returns a fully defaulted configuration without touching the file
// system or environment. Its recent-files list is kept in memory.
func Default() *Config {
	cfg := &Config{Session: SessionConfig{
		ClusterThresholdUM: DefaultClusterThresholdUM,
		ShowScaleBar:       true,
	}}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields in cfg. Explicit values win.
//
// ClusterThresholdUM is only defaulted when loading through viper, because
// zero is a meaningful threshold.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Session.CalibrationScale == 0 {
		cfg.Session.CalibrationScale = DefaultCalibrationScale
	}
	if cfg.Session.EraserRadius == 0 {
		cfg.Session.EraserRadius = DefaultEraserRadius
	}
	if cfg.Session.MarkerSize == 0 {
		cfg.Session.MarkerSize = DefaultMarkerSize
	}
	if cfg.Session.WindowWidth == 0 {
		cfg.Session.WindowWidth = DefaultWindowWidth
	}
	if cfg.Session.WindowHeight == 0 {
		cfg.Session.WindowHeight = DefaultWindowHeight
	}
	if cfg.Session.ZoomStep == 0 {
		cfg.Session.ZoomStep = DefaultZoomStep
	}
	if cfg.Session.PositiveColor == "" {
		cfg.Session.PositiveColor = DefaultPositiveColor
	}
	if cfg.Session.OtherColor == "" {
		cfg.Session.OtherColor = DefaultOtherColor
	}
	if cfg.Session.NegativeColor == "" {
		cfg.Session.NegativeColor = DefaultNegativeColor
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// setDefaults registers every key with viper so that environment variables
// override keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output", DefaultLogOutput)

	v.SetDefault("session.calibration_scale", DefaultCalibrationScale)
	v.SetDefault("session.cluster_threshold_um", DefaultClusterThresholdUM)
	v.SetDefault("session.eraser_radius", DefaultEraserRadius)
	v.SetDefault("session.marker_size", DefaultMarkerSize)
	v.SetDefault("session.window_width", DefaultWindowWidth)
	v.SetDefault("session.window_height", DefaultWindowHeight)
	v.SetDefault("session.zoom_step", DefaultZoomStep)
	v.SetDefault("session.show_scale_bar", true)
	v.SetDefault("session.positive_color", DefaultPositiveColor)
	v.SetDefault("session.other_color", DefaultOtherColor)
	v.SetDefault("session.negative_color", DefaultNegativeColor)

	v.SetDefault("detector.seed", 0)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("recent.path", DefaultRecentPath)
}
