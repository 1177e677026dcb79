// Command ls-panopin is a terminal viewer for pinning notes onto street-level
// panoramas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/config"
	"github.com/litescript/ls-panopin/internal/geo"
	"github.com/litescript/ls-panopin/internal/logging"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
	"github.com/litescript/ls-panopin/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode    bool
	geoJSONPath    string
	kmlPath        string
	crs            int
	setOrigin      string
	projectPixel   string
	viewportWidth  float64
	viewportHeight float64
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Config file (yaml, json or toml)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to a rotating file")
	dbPath := flag.String("db", "", "SQLite database for pins (default: in memory)")
	demo := flag.Bool("demo", false, "Seed the demo pins")
	flag.BoolVar(&summaryMode, "summary", false, "Print pin table instead of TUI")
	flag.StringVar(&geoJSONPath, "export-geojson", "", "Export pins as GeoJSON (use - for stdout)")
	flag.StringVar(&kmlPath, "export-kml", "", "Export pins as KML (use - for stdout)")
	flag.IntVar(&crs, "crs", 0, "GeoJSON CRS: 4326 or 3857 (default from config)")
	flag.StringVar(&setOrigin, "set-origin", "", "Viewer location lat,lng; backfills pin origins")
	flag.StringVar(&projectPixel, "project", "", "Report the look direction through pixel x,y")
	flag.Float64Var(&viewportWidth, "width", 800, "Viewport width in pixels for --project")
	flag.Float64Var(&viewportHeight, "height", 600, "Viewport height in pixels for --project")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *logLevel, *logFile, *dbPath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	headless := summaryMode || geoJSONPath != "" || kmlPath != "" || projectPixel != ""

	// Set up logging. The TUI owns the terminal, so it only logs to a file.
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		w := logging.NewFileWriter(logging.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		})
		defer w.Close()
		logger.SetOutput(w)
	} else if !headless {
		logger = logging.Discard()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	store, err := openStore(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *demo {
		if err := annotation.Seed(store, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: seeding demo pins: %v\n", err)
			os.Exit(1)
		}
		logger.Info("demo pins seeded")
	}

	stateMgr := state.NewManager(cfg.StateConfig())
	stateMgr.SetPano(cfg.Pano.ID, cfg.Pano.ImageDate)

	if err := locate(cfg, stateMgr, store, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if headless {
		if err := runHeadless(cfg, stateMgr, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: the viewer needs a terminal; use --summary for plain output")
		os.Exit(1)
	}

	// Create TUI model
	model := ui.New(stateMgr, store, logger, uiOptions(cfg))

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags lets explicit flags override the loaded config.
func applyFlags(cfg *config.Config, logLevel, logFile, dbPath string) {
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}
	if crs != 0 {
		cfg.ExportCRS = crs
	}
	if setOrigin != "" {
		cfg.Pano.Location = setOrigin
	}
}

func openStore(path string) (annotation.Store, error) {
	if path == "" {
		return annotation.NewMemoryStore(), nil
	}
	return annotation.OpenSQLStore(path)
}

// locate records the viewer location, if configured. The first known
// location becomes the origin of every pin that does not have one yet.
func locate(cfg config.Config, stateMgr *state.Manager, store annotation.Store, logger *logging.Logger) error {
	loc, ok, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("viewer location: %w", err)
	}
	if !ok {
		logger.Warn("viewer location unknown; pins show their stored direction")
		return nil
	}

	if !stateMgr.SetLocation(loc) {
		return nil
	}
	n, err := store.SetOriginForAll(loc)
	if err != nil {
		return fmt.Errorf("assigning pin origins: %w", err)
	}
	stateMgr.RecordOriginSet(n)
	logger.Info("viewer at %s; origin assigned to %d pins", loc, n)
	return nil
}

func uiOptions(cfg config.Config) ui.Options {
	opts := ui.DefaultOptions()
	opts.Drag = cfg.DragConfig()
	opts.Grid = cfg.GridConfig()
	opts.CellWidth = cfg.UI.CellWidth
	opts.CellHeight = cfg.UI.CellHeight
	opts.Toast = cfg.UI.Toast
	opts.PanStep = cfg.UI.PanStep
	opts.Author = cfg.UI.Author
	return opts
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(cfg config.Config, stateMgr *state.Manager, store annotation.Store) error {
	list, err := store.List()
	if err != nil {
		return fmt.Errorf("listing pins: %w", err)
	}
	list = annotation.Filter(list, stateMgr.ImageDate())

	var viewpoint *geo.Point
	if loc, ok := stateMgr.Location(); ok {
		viewpoint = &loc
	}

	if geoJSONPath != "" {
		err := writeTo(geoJSONPath, func(w io.Writer) error {
			return annotation.WriteGeoJSON(w, list, cfg.ExportCRS)
		})
		if err != nil {
			return fmt.Errorf("export GeoJSON: %w", err)
		}
	}

	if kmlPath != "" {
		err := writeTo(kmlPath, func(w io.Writer) error {
			return annotation.WriteKML(w, list)
		})
		if err != nil {
			return fmt.Errorf("export KML: %w", err)
		}
	}

	if summaryMode {
		annotation.WriteSummaryTable(os.Stdout, list, viewpoint, time.Now())
	}

	if projectPixel != "" {
		stateMgr.SetViewport(projection.Viewport{Width: viewportWidth, Height: viewportHeight})
		if err := writeProjection(os.Stdout, projectPixel, stateMgr.View(), viewpoint); err != nil {
			return err
		}
	}

	return nil
}

// writeTo writes to a file, or stdout for "-".
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeProjection reports the direction through a pixel, the pixel that
// direction projects back to, and where a pin dropped there would land.
func writeProjection(w io.Writer, pixel string, view projection.View, viewpoint *geo.Point) error {
	p, err := parsePixel(pixel)
	if err != nil {
		return err
	}

	pov, ok := projection.PixelToPov(p, view)
	if !ok {
		return fmt.Errorf("pixel %s has no direction in a %.0fx%.0f viewport", pixel, view.Viewport.Width, view.Viewport.Height)
	}
	fmt.Fprintf(w, "View:      heading %.2f pitch %.2f zoom %.2f (%.0fx%.0f, fov %.2f)\n",
		view.Pov.Heading, view.Pov.Pitch, view.Zoom, view.Viewport.Width, view.Viewport.Height,
		projection.FieldOfView(view.Zoom))
	fmt.Fprintf(w, "Pixel:     %.1f,%.1f\n", p.X, p.Y)
	fmt.Fprintf(w, "Direction: heading %.4f pitch %.4f\n", pov.Heading, pov.Pitch)

	if back, ok := projection.PovToPixel(pov, view); ok {
		fmt.Fprintf(w, "Reproject: %.4f,%.4f\n", back.X, back.Y)
	} else {
		fmt.Fprintln(w, "Reproject: not visible")
	}

	dist := projection.EstimateDistance(pov.Pitch)
	fmt.Fprintf(w, "Distance:  %.1fm (estimated)\n", dist)
	if viewpoint != nil {
		fmt.Fprintf(w, "Lands at:  %s\n", annotation.Place(pov, *viewpoint))
	}
	return nil
}

func parsePixel(s string) (projection.Pixel, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return projection.Pixel{}, fmt.Errorf("pixel %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return projection.Pixel{}, fmt.Errorf("pixel x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return projection.Pixel{}, fmt.Errorf("pixel y: %w", err)
	}
	return projection.Pixel{X: x, Y: y}, nil
}
