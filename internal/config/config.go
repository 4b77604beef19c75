// Package config loads mapbridge configuration.
//
// Values are layered: built-in defaults, then an optional TOML or YAML
// file, then MAPBRIDGE_* environment variables. Later layers override earlier ones
// field by field.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level" env:"MAPBRIDGE_LOG_LEVEL"`
	// LogFilter is an expression selecting the actions that are logged.
	// Empty logs every action.
	LogFilter string `toml:"log_filter" yaml:"log_filter" env:"MAPBRIDGE_LOG_FILTER"`
	// AllowReplace lets a new control take over a map id that is in use.
	AllowReplace bool `toml:"allow_replace" yaml:"allow_replace" env:"MAPBRIDGE_ALLOW_REPLACE"`
	// HUD enables the terminal display.
	HUD bool `toml:"hud" yaml:"hud" env:"MAPBRIDGE_HUD"`

	Viewport  Viewport  `toml:"viewport" yaml:"viewport" envPrefix:"MAPBRIDGE_VIEWPORT_"`
	Telemetry Telemetry `toml:"telemetry" yaml:"telemetry" envPrefix:"MAPBRIDGE_OTEL_"`
	Script    Script    `toml:"script" yaml:"script" envPrefix:"MAPBRIDGE_SCRIPT_"`
}

// Viewport configures the headless maps created by the host.
type Viewport struct {
	Width      int     `toml:"width" yaml:"width" env:"WIDTH"`
	Height     int     `toml:"height" yaml:"height" env:"HEIGHT"`
	MinZoom    float64 `toml:"min_zoom" yaml:"min_zoom" env:"MIN_ZOOM"`
	MaxZoom    float64 `toml:"max_zoom" yaml:"max_zoom" env:"MAX_ZOOM"`
	MaxPitch   float64 `toml:"max_pitch" yaml:"max_pitch" env:"MAX_PITCH"`
	Projection string  `toml:"projection" yaml:"projection" env:"PROJECTION"`
}

// Telemetry configures trace export.
type Telemetry struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled" env:"ENABLED"`
	Endpoint    string `toml:"endpoint" yaml:"endpoint" env:"ENDPOINT"`
	Insecure    bool   `toml:"insecure" yaml:"insecure" env:"INSECURE"`
	ServiceName string `toml:"service_name" yaml:"service_name" env:"SERVICE_NAME"`
}

// Script bounds Lua script runs.
type Script struct {
	TimeoutMS     int `toml:"timeout_ms" yaml:"timeout_ms" env:"TIMEOUT_MS"`
	MaxDispatches int `toml:"max_dispatches" yaml:"max_dispatches" env:"MAX_DISPATCHES"`
}

// Timeout returns the script timeout as a duration.
func (s Script) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Viewport: Viewport{
			Width:      1024,
			Height:     768,
			MinZoom:    0,
			MaxZoom:    22,
			MaxPitch:   85,
			Projection: "mercator",
		},
		Telemetry: Telemetry{
			Endpoint:    "localhost:4318",
			ServiceName: "mapbridge",
		},
		Script: Script{
			TimeoutMS:     5000,
			MaxDispatches: 10_000,
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks field ranges. It reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	level := strings.ToLower(c.LogLevel)
	known := false
	for _, l := range logLevels {
		if l == level {
			known = true
		}
	}
	if !known {
		problems = append(problems, fmt.Sprintf("log_level %q is not one of %s", c.LogLevel, strings.Join(logLevels, ", ")))
	}

	v := c.Viewport
	if v.Width <= 0 || v.Height <= 0 {
		problems = append(problems, fmt.Sprintf("viewport %dx%d must be positive", v.Width, v.Height))
	}
	if v.MinZoom < 0 || v.MinZoom > v.MaxZoom {
		problems = append(problems, fmt.Sprintf("zoom range [%g, %g] is invalid", v.MinZoom, v.MaxZoom))
	}
	if v.MaxPitch < 0 || v.MaxPitch > 85 {
		problems = append(problems, fmt.Sprintf("max_pitch %g must be within [0, 85]", v.MaxPitch))
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry endpoint is required when telemetry is enabled")
	}
	if c.Script.TimeoutMS < 0 || c.Script.MaxDispatches < 0 {
		problems = append(problems, "script limits must not be negative")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
