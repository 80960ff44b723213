// Package config handles viewer configuration loading and management.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Viewer   ViewerConfig   `yaml:"viewer"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewerConfig holds the stereo source and how to present it.
type ViewerConfig struct {
	Type        string  `yaml:"type"`       // Decoder selection: auto, vr, left-right, top-bottom, anaglyph, depth, mono
	Angle       float64 `yaml:"angle"`      // Field of view in degrees; >= 360 renders a sphere
	Projection  string  `yaml:"projection"` // equirectangular or fisheye
	Wiggle      bool    `yaml:"wiggle"`
	Source      string  `yaml:"src"`
	SourceRight string  `yaml:"src_right"` // Depth map for type=depth
	Debug       bool    `yaml:"debug"`

	WiggleInterval   time.Duration `yaml:"wiggle_interval"`
	ResampleOversize bool          `yaml:"resample_oversize"`
	CacheEntries     int           `yaml:"cache_entries"` // Decoded sources kept for re-parsing
	ScreenshotDir    string        `yaml:"screenshot_dir"`
	ScreenshotFormat string        `yaml:"screenshot_format"` // png or webp
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width          int  `yaml:"width"`
	Height         int  `yaml:"height"`
	Fullscreen     bool `yaml:"fullscreen"`
	VSync          bool `yaml:"vsync"`
	MaxTextureSize int  `yaml:"max_texture_size"` // 0 queries the GPU
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Type:             "auto",
			Angle:            DefaultAngle,
			Projection:       "equirectangular",
			WiggleInterval:   500 * time.Millisecond,
			ResampleOversize: true,
			CacheEntries:     4,
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultAngle is the field of view used when none, zero or garbage is given.
const DefaultAngle = 180.0

// ParseAngle parses a field-of-view attribute. Leading numeric text is accepted
// ("220deg" is 220); empty, non-numeric, zero or negative values give DefaultAngle.
func ParseAngle(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			if v > 0 {
				return v
			}
			return DefaultAngle
		}
		end--
	}
	return DefaultAngle
}

// normalize repairs values a config file may have zeroed.
func (c *Config) normalize() {
	if c.Viewer.Angle <= 0 {
		c.Viewer.Angle = DefaultAngle
	}
	if c.Viewer.Type == "" {
		c.Viewer.Type = "auto"
	}
	if c.Viewer.Projection == "" {
		c.Viewer.Projection = "equirectangular"
	}
}
