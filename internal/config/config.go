// Package config loads runtime settings from defaults, an optional config
// file, and PANOPIN_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/geo"
	"github.com/litescript/ls-panopin/internal/grid"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
)

// EnvPrefix namespaces environment overrides, e.g. PANOPIN_VIEW_ZOOM.
const EnvPrefix = "PANOPIN"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// PanoConfig identifies the panorama and where it was taken.
type PanoConfig struct {
	ID        string `mapstructure:"id"`
	ImageDate string `mapstructure:"imageDate"`
	Location  string `mapstructure:"location"` // "lat,lng"; empty means unknown
}

// ViewConfig is the initial camera.
type ViewConfig struct {
	Heading float64 `mapstructure:"heading"`
	Pitch   float64 `mapstructure:"pitch"`
	Zoom    float64 `mapstructure:"zoom"`
	MinZoom float64 `mapstructure:"minZoom"`
	MaxZoom float64 `mapstructure:"maxZoom"`
}

// DragConfig mirrors drag.Config.
type DragConfig struct {
	MinPitch       float64 `mapstructure:"minPitch"`
	CameraHeight   float64 `mapstructure:"cameraHeight"`
	MarkerHeight   float64 `mapstructure:"markerHeight"`
	PinPixelHeight float64 `mapstructure:"pinPixelHeight"`
	MinDistance    float64 `mapstructure:"minDistance"`
	ReservedMargin float64 `mapstructure:"reservedMargin"`
}

// GridConfig sizes the ground grid.
type GridConfig struct {
	Spacing  float64 `mapstructure:"spacing"`
	Extent   float64 `mapstructure:"extent"`
	FogStart float64 `mapstructure:"fogStart"`
}

// UIConfig tunes the terminal viewer.
type UIConfig struct {
	CellWidth  float64       `mapstructure:"cellWidth"`  // Pixels per terminal column
	CellHeight float64       `mapstructure:"cellHeight"` // Pixels per terminal row
	Toast      time.Duration `mapstructure:"toast"`
	PanStep    float64       `mapstructure:"panStep"` // Degrees per key press
	Author     string        `mapstructure:"author"`
}

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string     `mapstructure:"logLevel"`
	LogFile   string     `mapstructure:"logFile"`
	DB        string     `mapstructure:"db"` // SQLite path; empty keeps annotations in memory
	ExportCRS int        `mapstructure:"exportCRS"`
	Pano      PanoConfig `mapstructure:"pano"`
	View      ViewConfig `mapstructure:"view"`
	Drag      DragConfig `mapstructure:"drag"`
	Grid      GridConfig `mapstructure:"grid"`
	UI        UIConfig   `mapstructure:"ui"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	d := drag.DefaultConfig()
	g := grid.DefaultConfig()
	s := state.DefaultConfig()
	return Config{
		LogLevel:  "info",
		ExportCRS: annotation.CRSWGS84,
		Pano: PanoConfig{
			ID: annotation.DemoPanoID,
		},
		View: ViewConfig{
			Heading: annotation.DemoPov.Heading,
			Pitch:   annotation.DemoPov.Pitch,
			Zoom:    s.InitialZoom,
			MinZoom: s.MinZoom,
			MaxZoom: s.MaxZoom,
		},
		Drag: DragConfig{
			MinPitch:       d.MinPitch,
			CameraHeight:   d.CameraHeight,
			MarkerHeight:   d.MarkerHeight,
			PinPixelHeight: d.PinPixelHeight,
			MinDistance:    d.MinDistance,
			ReservedMargin: d.ReservedMargin,
		},
		Grid: GridConfig{
			Spacing:  g.Spacing,
			Extent:   g.Extent,
			FogStart: g.FogStart,
		},
		UI: UIConfig{
			CellWidth:  8,
			CellHeight: 16,
			Toast:      2500 * time.Millisecond,
			PanStep:    5,
		},
	}
}

// Load builds a Config. path may be empty, in which case only defaults and
// environment overrides apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("logFile", d.LogFile)
	v.SetDefault("db", d.DB)
	v.SetDefault("exportCRS", d.ExportCRS)

	v.SetDefault("pano.id", d.Pano.ID)
	v.SetDefault("pano.imageDate", d.Pano.ImageDate)
	v.SetDefault("pano.location", d.Pano.Location)

	v.SetDefault("view.heading", d.View.Heading)
	v.SetDefault("view.pitch", d.View.Pitch)
	v.SetDefault("view.zoom", d.View.Zoom)
	v.SetDefault("view.minZoom", d.View.MinZoom)
	v.SetDefault("view.maxZoom", d.View.MaxZoom)

	v.SetDefault("drag.minPitch", d.Drag.MinPitch)
	v.SetDefault("drag.cameraHeight", d.Drag.CameraHeight)
	v.SetDefault("drag.markerHeight", d.Drag.MarkerHeight)
	v.SetDefault("drag.pinPixelHeight", d.Drag.PinPixelHeight)
	v.SetDefault("drag.minDistance", d.Drag.MinDistance)
	v.SetDefault("drag.reservedMargin", d.Drag.ReservedMargin)

	v.SetDefault("grid.spacing", d.Grid.Spacing)
	v.SetDefault("grid.extent", d.Grid.Extent)
	v.SetDefault("grid.fogStart", d.Grid.FogStart)

	v.SetDefault("ui.cellWidth", d.UI.CellWidth)
	v.SetDefault("ui.cellHeight", d.UI.CellHeight)
	v.SetDefault("ui.toast", d.UI.Toast)
	v.SetDefault("ui.panStep", d.UI.PanStep)
	v.SetDefault("ui.author", d.UI.Author)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.View.MinZoom <= 0 || c.View.MaxZoom < c.View.MinZoom:
		return fmt.Errorf("%w: view zoom range [%.2f, %.2f] must be positive", ErrInvalidConfig, c.View.MinZoom, c.View.MaxZoom)
	case c.View.Zoom < c.View.MinZoom || c.View.Zoom > c.View.MaxZoom:
		return fmt.Errorf("%w: view.zoom %.2f outside [%.2f, %.2f]", ErrInvalidConfig,
			c.View.Zoom, c.View.MinZoom, c.View.MaxZoom)
	case c.Drag.CameraHeight <= 0 || c.Drag.MarkerHeight <= 0:
		return fmt.Errorf("%w: drag heights must be positive", ErrInvalidConfig)
	case c.Drag.PinPixelHeight <= 0 || c.Drag.MinDistance <= 0:
		return fmt.Errorf("%w: drag.pinPixelHeight and drag.minDistance must be positive", ErrInvalidConfig)
	case c.Drag.MinPitch > 0:
		return fmt.Errorf("%w: drag.minPitch must be at or below the horizon", ErrInvalidConfig)
	case c.Grid.Spacing <= 0 || c.Grid.Extent < c.Grid.Spacing:
		return fmt.Errorf("%w: grid spacing/extent", ErrInvalidConfig)
	case c.Grid.FogStart < 0 || c.Grid.FogStart > c.Grid.Extent:
		return fmt.Errorf("%w: grid.fogStart outside [0, extent]", ErrInvalidConfig)
	case c.UI.CellWidth <= 0 || c.UI.CellHeight <= 0:
		return fmt.Errorf("%w: ui cell size must be positive", ErrInvalidConfig)
	case c.ExportCRS != annotation.CRSWGS84 && c.ExportCRS != annotation.CRSWebMercator:
		return fmt.Errorf("%w: exportCRS %d (want %d or %d)", ErrInvalidConfig,
			c.ExportCRS, annotation.CRSWGS84, annotation.CRSWebMercator)
	}
	if _, _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: pano.location: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location parses the configured viewer location. ok is false when none is
// configured.
func (c Config) Location() (geo.Point, bool, error) {
	if strings.TrimSpace(c.Pano.Location) == "" {
		return geo.Point{}, false, nil
	}
	p, err := geo.ParsePoint(c.Pano.Location)
	if err != nil {
		return geo.Point{}, false, err
	}
	return p, true, nil
}

// DragConfig converts to the drag package's config.
func (c Config) DragConfig() drag.Config {
	return drag.Config{
		MinPitch:       c.Drag.MinPitch,
		CameraHeight:   c.Drag.CameraHeight,
		MarkerHeight:   c.Drag.MarkerHeight,
		PinPixelHeight: c.Drag.PinPixelHeight,
		MinDistance:    c.Drag.MinDistance,
		ReservedMargin: c.Drag.ReservedMargin,
	}
}

// GridConfig converts to the grid package's config. The grid sits on the
// same ground plane the drag snaps to.
func (c Config) GridConfig() grid.Config {
	g := grid.DefaultConfig()
	g.Spacing = c.Grid.Spacing
	g.Extent = c.Grid.Extent
	g.FogStart = c.Grid.FogStart
	g.CameraHeight = c.Drag.CameraHeight
	return g
}

// StateConfig converts to the state manager's config.
func (c Config) StateConfig() state.Config {
	s := state.DefaultConfig()
	s.MinZoom = c.View.MinZoom
	s.MaxZoom = c.View.MaxZoom
	s.InitialZoom = c.View.Zoom
	s.InitialPov = projection.Pov{Heading: c.View.Heading, Pitch: c.View.Pitch}
	return s
}
