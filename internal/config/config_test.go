package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/geo"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, drag.DefaultConfig(), cfg.DragConfig())
	assert.Equal(t, 2500*time.Millisecond, cfg.UI.Toast)

	sc := cfg.StateConfig()
	assert.Equal(t, annotation.DemoPov, sc.InitialPov, "opens on the demo panorama's camera")
	assert.Equal(t, 0.5, sc.MinZoom)

	g := cfg.GridConfig()
	assert.Equal(t, 300.0, g.Extent)
	assert.Equal(t, 50.0, g.FogStart)

	_, ok, err := cfg.Location()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panopin.yaml")
	data := `
logLevel: debug
db: pins.db
pano:
  id: abc123
  imageDate: "2023-05"
  location: "34.1692,131.46715"
view:
  heading: 90
  zoom: 2
drag:
  minPitch: -2
ui:
  toast: 4s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "pins.db", cfg.DB)
	assert.Equal(t, "abc123", cfg.Pano.ID)
	assert.Equal(t, "2023-05", cfg.Pano.ImageDate)
	assert.Equal(t, 90.0, cfg.View.Heading)
	assert.Equal(t, 2.0, cfg.View.Zoom)
	assert.Equal(t, -2.0, cfg.DragConfig().MinPitch)
	assert.Equal(t, 14.0, cfg.DragConfig().PinPixelHeight, "unset keys keep defaults")
	assert.Equal(t, 4*time.Second, cfg.UI.Toast)

	loc, ok, err := cfg.Location()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 34.1692, Lng: 131.46715}, loc)

	sc := cfg.StateConfig()
	assert.Equal(t, 90.0, sc.InitialPov.Heading)
	assert.Equal(t, 2.0, sc.InitialZoom)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PANOPIN_LOGLEVEL", "warn")
	t.Setenv("PANOPIN_VIEW_ZOOM", "3")
	t.Setenv("PANOPIN_DRAG_CAMERAHEIGHT", "1.8")
	t.Setenv("PANOPIN_GRID_SPACING", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3.0, cfg.View.Zoom)
	assert.Equal(t, 1.8, cfg.DragConfig().CameraHeight)

	g := cfg.GridConfig()
	assert.Equal(t, 2.0, g.Spacing)
	assert.Equal(t, 1.8, g.CameraHeight, "grid shares the drag ground plane")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/panopin.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zoom above max", func(c *Config) { c.View.Zoom = 9 }},
		{"negative zoom", func(c *Config) { c.View.Zoom = -1 }},
		{"zoom below min", func(c *Config) { c.View.Zoom = 0 }},
		{"zero min zoom", func(c *Config) { c.View.MinZoom = 0 }},
		{"max zoom below min", func(c *Config) { c.View.MaxZoom = 0.25 }},
		{"min pitch above horizon", func(c *Config) { c.Drag.MinPitch = 3 }},
		{"zero camera height", func(c *Config) { c.Drag.CameraHeight = 0 }},
		{"zero pin height", func(c *Config) { c.Drag.PinPixelHeight = 0 }},
		{"grid extent below spacing", func(c *Config) { c.Grid.Extent = 1 }},
		{"fog beyond grid", func(c *Config) { c.Grid.FogStart = 400 }},
		{"zero cell", func(c *Config) { c.UI.CellHeight = 0 }},
		{"unknown crs", func(c *Config) { c.ExportCRS = 27700 }},
		{"bad location", func(c *Config) { c.Pano.Location = "north pole" }},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
