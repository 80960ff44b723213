package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSrc        = flag.String("src", "", "Image source path or URL")
	flagSrcRight   = flag.String("src-right", "", "Secondary source (depth map for -type=depth)")
	flagType       = flag.String("type", "", "Source layout: auto, vr, left-right, top-bottom, anaglyph, depth, mono")
	flagAngle      = flag.String("angle", "", "Field of view in degrees (default 180)")
	flagProjection = flag.String("projection", "", "Projection: equirectangular or fisheye")
	flagWiggle     = flag.Bool("wiggle", false, "Alternate eyes to show stereo disparity")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
	if *flagSrc == "" && flag.NArg() > 0 {
		*flagSrc = flag.Arg(0)
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Viewer.Debug = true
	}
	if *flagSrc != "" {
		cfg.Viewer.Source = *flagSrc
	}
	if *flagSrcRight != "" {
		cfg.Viewer.SourceRight = *flagSrcRight
	}
	if *flagType != "" {
		cfg.Viewer.Type = *flagType
	}
	if *flagAngle != "" {
		cfg.Viewer.Angle = ParseAngle(*flagAngle)
	}
	if *flagProjection != "" {
		cfg.Viewer.Projection = *flagProjection
	}
	if *flagWiggle {
		cfg.Viewer.Wiggle = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
