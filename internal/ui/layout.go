package ui

import (
	"math"

	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/projection"
)

const (
	toolbarRows = 1
	statusRows  = 2

	// The pin handle sits at the left of the toolbar.
	handleCol   = 2
	handleLabel = " ▼ Pin "
)

// layout maps terminal cells to the pixel space the camera model works in.
// Each cell is cellW x cellH pixels; pointer events land on cell centers.
type layout struct {
	cols, rows   int
	cellW, cellH float64
}

func (l layout) panoRows() int {
	n := l.rows - toolbarRows - statusRows
	if n < 0 {
		return 0
	}
	return n
}

// viewport is the panorama surface size in pixels.
func (l layout) viewport() projection.Viewport {
	return projection.Viewport{
		Width:  float64(l.cols) * l.cellW,
		Height: float64(l.panoRows()) * l.cellH,
	}
}

// surface places the panorama below the toolbar.
func (l layout) surface(view projection.View) drag.Surface {
	view.Viewport = l.viewport()
	return drag.Surface{
		Origin: projection.Pixel{X: 0, Y: toolbarRows * l.cellH},
		View:   view,
	}
}

// pointer converts a cell to the screen pixel at its center.
func (l layout) pointer(col, row int) projection.Pixel {
	return projection.Pixel{
		X: (float64(col) + 0.5) * l.cellW,
		Y: (float64(row) + 0.5) * l.cellH,
	}
}

// cell converts a screen pixel to the cell containing it.
func (l layout) cell(p projection.Pixel) (col, row int) {
	return int(math.Floor(p.X / l.cellW)), int(math.Floor(p.Y / l.cellH))
}

// handleRegion is the toolbar area that starts a drag and cancels one when
// released over it.
func (l layout) handleRegion() drag.Rect {
	width := len([]rune(handleLabel))
	return drag.Rect{
		Left:   float64(handleCol) * l.cellW,
		Top:    0,
		Right:  float64(handleCol+width) * l.cellW,
		Bottom: toolbarRows * l.cellH,
	}
}

// onHandle reports whether a cell is part of the pin handle.
func (l layout) onHandle(col, row int) bool {
	return row < toolbarRows && col >= handleCol && col < handleCol+len([]rune(handleLabel))
}
