package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	return writeNamed(t, "mapbridge.toml", content)
}

func writeNamed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5*time.Second, cfg.Script.Timeout())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log_level = "debug"
log_filter = 'type startsWith "mapbox-"'
allow_replace = true

[viewport]
width = 800
max_zoom = 18

[script]
max_dispatches = 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, `type startsWith "mapbox-"`, cfg.LogFilter)
	assert.True(t, cfg.AllowReplace)
	assert.Equal(t, 800, cfg.Viewport.Width)
	assert.Equal(t, 768, cfg.Viewport.Height)
	assert.Equal(t, 18.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 50, cfg.Script.MaxDispatches)
	assert.Equal(t, 5000, cfg.Script.TimeoutMS)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "log_level = \"debug\"\n[viewport]\nwidth = 800\n")
	t.Setenv("MAPBRIDGE_LOG_LEVEL", "warn")
	t.Setenv("MAPBRIDGE_VIEWPORT_WIDTH", "640")
	t.Setenv("MAPBRIDGE_HUD", "true")
	t.Setenv("MAPBRIDGE_OTEL_ENABLED", "true")
	t.Setenv("MAPBRIDGE_OTEL_ENDPOINT", "collector:4318")
	t.Setenv("MAPBRIDGE_SCRIPT_TIMEOUT_MS", "250")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 640, cfg.Viewport.Width)
	assert.True(t, cfg.HUD)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "mapbridge", cfg.Telemetry.ServiceName)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout())
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("MAPBRIDGE_VIEWPORT_WIDTH", "wide")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestParseErrorHasPosition(t *testing.T) {
	path := writeFile(t, "log_level = \"debug\"\nhud = \n")
	_, err := Load(path)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)
	assert.Equal(t, 2, perr.Line)
}

func TestUnknownKeyRejected(t *testing.T) {
	path := writeFile(t, "log_levle = \"debug\"\n")
	_, err := Load(path)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"viewport", func(c *Config) { c.Viewport.Width = 0 }},
		{"zoom range", func(c *Config) { c.Viewport.MinZoom = 10; c.Viewport.MaxZoom = 5 }},
		{"pitch", func(c *Config) { c.Viewport.MaxPitch = 90 }},
		{"telemetry", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Endpoint = "" }},
		{"script", func(c *Config) { c.Script.MaxDispatches = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.Viewport.Height = -1
	var verr *ValidationError
	require.ErrorAs(t, cfg.Validate(), &verr)
	assert.Len(t, verr.Problems, 2)
}

func TestLoadYAML(t *testing.T) {
	path := writeNamed(t, "mapbridge.yaml", `
log_level: warn
hud: true
viewport:
  height: 600
  projection: globe
telemetry:
  service_name: bridge-test
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.HUD)
	assert.Equal(t, 600, cfg.Viewport.Height)
	assert.Equal(t, 1024, cfg.Viewport.Width)
	assert.Equal(t, "globe", cfg.Viewport.Projection)
	assert.Equal(t, "bridge-test", cfg.Telemetry.ServiceName)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeNamed(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestYAMLErrors(t *testing.T) {
	_, err := Load(writeNamed(t, "bad.yaml", "log_level: debug\nviewport: [\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Positive(t, perr.Line)

	_, err = Load(writeNamed(t, "unknown.yaml", "log_levle: debug\n"))
	require.ErrorAs(t, err, &perr)
}
