// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-panopin/internal/annotation"
	"github.com/litescript/ls-panopin/internal/drag"
	"github.com/litescript/ls-panopin/internal/grid"
	"github.com/litescript/ls-panopin/internal/logging"
	"github.com/litescript/ls-panopin/internal/projection"
	"github.com/litescript/ls-panopin/internal/state"
	"github.com/litescript/ls-panopin/internal/version"
)

const (
	zoomStep      = 0.5
	wheelZoomStep = 0.25
)

// Msg types for Bubble Tea
type (
	// toastExpiredMsg hides the toast it was scheduled for.
	toastExpiredMsg struct {
		seq int
	}
)

// Options tunes the viewer.
type Options struct {
	Drag       drag.Config
	Grid       grid.Config
	CellWidth  float64 // Pixels per terminal column
	CellHeight float64 // Pixels per terminal row
	Toast      time.Duration
	PanStep    float64 // Degrees per key press at zoom 1
	Author     string
}

// DefaultOptions returns the stock viewer options.
func DefaultOptions() Options {
	return Options{
		Drag:       drag.DefaultConfig(),
		Grid:       grid.DefaultConfig(),
		CellWidth:  8,
		CellHeight: 16,
		Toast:      2500 * time.Millisecond,
		PanStep:    5,
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state *state.Manager
	store annotation.Store
	log   *logging.Logger
	opts  Options

	// UI state
	lay   layout
	ready bool

	// Sub-models
	pano PanoramaModel

	// Drag interaction; session is nil between drags
	grid    *grid.Ground
	host    *viewerHost
	session *drag.Session
	pointer projection.Pixel // last mouse position in screen pixels

	toast    string
	toastSeq int
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, store annotation.Store, log *logging.Logger, opts Options) Model {
	if log == nil {
		log = logging.Discard()
	}
	g := grid.NewGround(opts.Grid)
	m := Model{
		state: stateMgr,
		store: store,
		log:   log,
		opts:  opts,
		lay:   layout{cellW: opts.CellWidth, cellH: opts.CellHeight},
		pano:  NewPanoramaModel(stateMgr, opts.Drag),
		grid:  g,
		host: &viewerHost{
			grid:   g,
			store:  store,
			state:  stateMgr,
			log:    log,
			author: opts.Author,
		},
	}
	m.reloadPins()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.lay.cols = msg.Width
		m.lay.rows = msg.Height
		m.ready = true

		vp := m.lay.viewport()
		m.state.SetViewport(vp)
		m.grid.Resize(vp)
		m.pano = m.pano.SetLayout(m.lay)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}

	default:
		var cmd tea.Cmd
		m.pano, cmd = m.pano.Update(msg)
		if _, ok := msg.(animTickMsg); ok {
			m.followCamera()
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	step := m.opts.PanStep * projection.FieldOfView(m.state.Zoom()) / 90

	switch msg.String() {
	case "q", "ctrl+c":
		m.abortDrag()
		return m, tea.Quit

	case "esc":
		m.abortDrag()

	case "left", "h":
		m.state.Pan(-step, 0)
	case "right", "l":
		m.state.Pan(step, 0)
	case "up", "k":
		m.state.Pan(0, step)
	case "down", "j":
		m.state.Pan(0, -step)

	case "+", "=":
		m.state.ZoomBy(zoomStep)
	case "-", "_":
		m.state.ZoomBy(-zoomStep)

	case "r":
		m.state.ResetView()

	case "x":
		return m.deleteFocused()

	case "c":
		return m.recolorFocused()

	default:
		var cmd tea.Cmd
		m.pano, cmd = m.pano.Update(msg)
		return m, cmd
	}

	m.followCamera()
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	pointer := m.lay.pointer(msg.X, msg.Y)
	m.pointer = pointer

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.state.ZoomBy(wheelZoomStep)
			m.followCamera()
		case tea.MouseButtonWheelDown:
			m.state.ZoomBy(-wheelZoomStep)
			m.followCamera()
		case tea.MouseButtonLeft:
			if m.session != nil {
				return m, nil
			}
			if m.lay.onHandle(msg.X, msg.Y) {
				m.prepareHost()
				m.session = drag.Begin(pointer, m.host, m.opts.Drag)
				m.log.Debug("drag started at %.0f,%.0f", pointer.X, pointer.Y)
			}
		}

	case tea.MouseActionMotion:
		if m.session == nil {
			return m, nil
		}
		m.prepareHost()
		m.session.Move(pointer, m.surface())

	case tea.MouseActionRelease:
		if m.session == nil {
			return m, nil
		}
		m.prepareHost()
		m.host.reset()
		outcome := m.session.End(pointer)
		m.session = nil
		m.log.Debug("drag ended: %s", outcome)
		return m.afterDrop()
	}

	return m, nil
}

// prepareHost gives the host the layout of this frame.
func (m Model) prepareHost() {
	m.host.view = m.surface().View
	m.host.reserved = m.lay.handleRegion()
}

func (m Model) surface() drag.Surface {
	return m.lay.surface(m.state.View())
}

// followCamera keeps the grid and the drag candidate in step with a camera
// that moved without a pointer event.
func (m Model) followCamera() {
	if m.grid.Visible() {
		m.grid.Sync(m.surface().View)
	}
	if m.session != nil {
		m.prepareHost()
		m.session.Move(m.pointer, m.surface())
	}
}

func (m *Model) abortDrag() {
	if m.session == nil {
		return
	}
	m.session.Abort()
	m.session = nil
}

// afterDrop applies what the host recorded during End.
func (m Model) afterDrop() (Model, tea.Cmd) {
	if m.host.created != nil {
		m.reloadPins()
		m.pano = m.pano.FocusID(m.host.created.ID)
	}
	if m.host.toast == "" {
		return m, nil
	}
	return m.showToast(m.host.toast)
}

func (m Model) deleteFocused() (Model, tea.Cmd) {
	a, ok := m.pano.Focused()
	if !ok {
		return m, nil
	}
	if err := m.store.Delete(a.ID); err != nil {
		m.log.Error("deleting pin %s: %v", a.ID, err)
		return m.showToast("Could not delete pin")
	}
	m.state.RecordDelete(a.ID)
	m.log.Info("pin %s deleted", a.ID)
	m.reloadPins()
	return m.showToast("Pin deleted")
}

func (m Model) recolorFocused() (Model, tea.Cmd) {
	a, ok := m.pano.Focused()
	if !ok {
		return m, nil
	}
	next := a.Color.Next()
	if _, err := m.store.Update(a.ID, annotation.Patch{Color: &next}); err != nil {
		m.log.Error("recoloring pin %s: %v", a.ID, err)
		return m.showToast("Could not update pin")
	}
	m.reloadPins()
	return m, nil
}

func (m *Model) reloadPins() {
	list, err := m.store.List()
	if err != nil {
		m.log.Error("listing pins: %v", err)
		return
	}
	m.pano = m.pano.SetPins(annotation.Filter(list, m.state.ImageDate()))
}

func (m Model) showToast(text string) (Model, tea.Cmd) {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(m.opts.Toast, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Toast returns the message currently shown in the status line.
func (m Model) Toast() string {
	return m.toast
}

// Dragging reports whether a pin drag is in progress.
func (m Model) Dragging() bool {
	return m.session != nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.lay.cols < 20 || m.lay.panoRows() < 4 {
		return "Panorama view requires larger terminal"
	}

	var marker *drag.Marker
	if m.session != nil {
		mk := m.session.Marker()
		marker = &mk
	}

	return m.renderToolbar() + "\n" + m.pano.View(m.grid.Render(), marker) + "\n" + m.renderStatus()
}

func (m Model) renderToolbar() string {
	handleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("#7B2CBF")).Bold(true)
	if m.session != nil {
		handleStyle = handleStyle.Background(lipgloss.Color("60"))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	left := strings.Repeat(" ", handleCol) + handleStyle.Render(handleLabel)
	hint := dimStyle.Render("  drag onto the ground")
	if m.session != nil {
		hint = dimStyle.Render("  release here to cancel")
	}
	right := titleStyle.Render("ls-panopin") + dimStyle.Render(" v"+version.Version)

	gap := m.lay.cols - lipgloss.Width(left) - lipgloss.Width(hint) - lipgloss.Width(right) - 1
	if gap < 1 {
		return left + hint
	}
	return left + hint + strings.Repeat(" ", gap) + right
}

func (m Model) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))
	toastStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)

	snap := m.state.Snapshot()

	location := "location unknown"
	if snap.HasLocation {
		location = snap.Location.String()
	}
	date := snap.ImageDate
	if date == "" {
		date = "date unknown"
	}
	pov := snap.View.Pov

	line1 := fmt.Sprintf("  %s | %s | %s | H:%.0f° P:%.0f° Z:%.2f | %d pins",
		snap.PanoID, date, location, pov.Heading, pov.Pitch, snap.View.Zoom, len(m.pano.Pins()))
	if a, ok := m.pano.Focused(); ok {
		line1 += fmt.Sprintf(" | ▶ %s", pinSummary(a))
	}

	var line2 string
	if m.toast != "" {
		line2 = "  " + toastStyle.Render(m.toast)
	} else {
		line2 = "  " + dimStyle.Render("arrows/hjkl: look | +/-: zoom | tab: next pin | c: color | x: delete | o: overlays | r: reset | q: quit")
	}

	return accentStyle.Render(line1) + "\n" + line2
}

func pinSummary(a annotation.Annotation) string {
	title := a.Title
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s (%s)", title, a.Color)
}
