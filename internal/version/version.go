// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - SQLite store, GeoJSON/KML export, viper config, rotating log file
// 0.2.0 - Parallax-corrected pin pitch, origin backfill, image date filter
// 0.1.0 - Initial release: panorama TUI, pin drag with ground snapping, headless projection
