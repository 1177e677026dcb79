package ui

import (
	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/grid"
	"github.com/litescript/ls-panopin/internal/logging"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
)

// Toast texts shown after a drag ends.
const (
	msgPinAdded      = "Pin added"
	msgPinCancelled  = "Pin cancelled"
	msgDropOnGround  = "Drop the pin on the ground"
	msgNoLocation    = "Viewer location unknown, pin not placed"
	msgPinSaveFailed = "Could not save pin"
)

// viewerHost connects a drag session to the viewer. The model sets view and
// reserved before driving the session and reads toast and created after.
type viewerHost struct {
	grid   *grid.Ground
	store  annotation.Store
	state  *state.Manager
	log    *logging.Logger
	author string

	view     projection.View
	reserved drag.Rect

	toast   string
	created *annotation.Annotation
}

var _ drag.Host = (*viewerHost)(nil)

func (h *viewerHost) ShowGrid() {
	h.grid.Show(h.view)
}

func (h *viewerHost) HideGrid() {
	h.grid.Hide()
}

func (h *viewerHost) ReservedRegion() drag.Rect {
	return h.reserved
}

// Drop turns the committed direction into a stored pin. Without a known
// viewer location there is nothing to measure from, so the drop is refused.
func (h *viewerHost) Drop(pov projection.Pov) {
	loc, ok := h.state.Location()
	if !ok {
		h.toast = msgNoLocation
		h.state.RecordInvalidDrop("location unknown")
		h.log.Warn("drop at heading %.1f pitch %.1f ignored: location unknown", pov.Heading, pov.Pitch)
		return
	}

	draft := annotation.Draft(pov, loc, h.state.PanoID())
	draft.ImageDate = h.state.ImageDate()
	draft.Author = h.author

	saved, err := h.store.Add(draft)
	if err != nil {
		h.toast = msgPinSaveFailed
		h.log.Error("saving pin: %v", err)
		return
	}

	h.state.RecordDrop(saved.ID, pov)
	h.created = &saved
	h.toast = msgPinAdded
	h.log.Info("pin %s placed at %s (heading %.1f pitch %.1f)", saved.ID, saved.Point, pov.Heading, pov.Pitch)
}

func (h *viewerHost) Cancel() {
	h.toast = msgPinCancelled
	h.state.RecordCancel()
	h.log.Debug("drag cancelled over toolbar")
}

func (h *viewerHost) InvalidDrop() {
	h.toast = msgDropOnGround
	h.state.RecordInvalidDrop("no ground under pointer")
	h.log.Debug("drag released off the ground")
}

// reset clears the results of the previous drag.
func (h *viewerHost) reset() {
	h.toast = ""
	h.created = nil
}
