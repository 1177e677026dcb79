// Package state provides thread-safe state management for the viewer.
package state

import (
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-panopin/internal/geo"
	"github.com/litescript/ls-panopin/internal/projection"
)

// EventType represents the type of viewer event.
type EventType string

const (
	EventDrop         EventType = "DROP"
	EventCancel       EventType = "CANCEL"
	EventInvalidDrop  EventType = "INVALID_DROP"
	EventOriginSet    EventType = "ORIGIN_SET"
	EventPanoChanged  EventType = "PANO_CHANGED"
	EventAnnotationRm EventType = "ANNOTATION_DELETED"
)

// Event represents something that happened in the viewer.
type Event struct {
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	PanoID       string         `json:"pano_id,omitempty"`
	AnnotationID string         `json:"annotation_id,omitempty"`
	Pov          projection.Pov `json:"pov"`
	Count        int            `json:"count,omitempty"`
	Detail       string         `json:"detail,omitempty"`
}

// Manager holds the hosting viewer's camera and location with thread-safe
// access.
type Manager struct {
	mu sync.RWMutex

	// Camera
	pov      projection.Pov
	zoom     float64
	viewport projection.Viewport

	// Panorama
	panoID    string
	imageDate string
	location  geo.Point
	located   bool

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	initialPov  projection.Pov
	initialZoom float64
	minZoom     float64
	maxZoom     float64
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents   int
	MinZoom     float64
	MaxZoom     float64
	InitialPov  projection.Pov
	InitialZoom float64
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:   50,  // Last 50 events
		MinZoom:     0.5, // about 127 degree field of view
		MaxZoom:     4,   // 11.25 degree field of view
		InitialZoom: 1,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxZoom := cfg.MaxZoom
	if maxZoom <= 0 {
		maxZoom = 4
	}
	// At zoom 0 the field of view reaches 180 degrees and every direction
	// projects onto the center of the screen.
	minZoom := cfg.MinZoom
	if minZoom <= 0 {
		minZoom = 0.5
	}
	minZoom = math.Min(minZoom, maxZoom)
	m := &Manager{
		maxEvents:   maxEvents,
		events:      make([]Event, 0, maxEvents),
		initialPov:  sanitizePov(cfg.InitialPov),
		initialZoom: clampZoom(cfg.InitialZoom, minZoom, maxZoom),
		minZoom:     minZoom,
		maxZoom:     maxZoom,
	}
	m.pov = m.initialPov
	m.zoom = m.initialZoom
	return m
}

// View returns the camera as a value for projection calls.
func (m *Manager) View() projection.View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return projection.View{Pov: m.pov, Zoom: m.zoom, Viewport: m.viewport}
}

// Pov returns the current look direction.
func (m *Manager) Pov() projection.Pov {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pov
}

// SetPov points the camera, wrapping heading and clamping pitch.
func (m *Manager) SetPov(pov projection.Pov) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pov = sanitizePov(pov)
}

// Pan turns the camera by the given deltas in degrees.
func (m *Manager) Pan(dHeading, dPitch float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pov = sanitizePov(projection.Pov{
		Heading: m.pov.Heading + dHeading,
		Pitch:   m.pov.Pitch + dPitch,
	})
}

// Zoom returns the current zoom level.
func (m *Manager) Zoom() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.zoom
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom].
func (m *Manager) SetZoom(z float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoom = clampZoom(z, m.minZoom, m.maxZoom)
}

// ZoomBy changes the zoom level by delta.
func (m *Manager) ZoomBy(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoom = clampZoom(m.zoom+delta, m.minZoom, m.maxZoom)
}

// SetViewport records the rendering surface size in pixels.
func (m *Manager) SetViewport(vp projection.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = vp
}

// ResetView restores the initial look direction and zoom.
func (m *Manager) ResetView() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pov = m.initialPov
	m.zoom = m.initialZoom
}

// SetPano switches the displayed panorama. Switching to a different id is
// logged as an event.
func (m *Manager) SetPano(id, imageDate string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != m.panoID {
		m.addEvent(Event{
			Type:      EventPanoChanged,
			Timestamp: time.Now(),
			PanoID:    id,
			Detail:    m.panoID,
		})
	}
	m.panoID = id
	m.imageDate = imageDate
}

// PanoID returns the displayed panorama id.
func (m *Manager) PanoID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.panoID
}

// ImageDate returns the capture date of the displayed panorama, if known.
func (m *Manager) ImageDate() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.imageDate
}

// SetLocation records the viewer position. It returns true the first time a
// location becomes known so the caller can assign annotation origins.
func (m *Manager) SetLocation(p geo.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := !m.located
	m.location = p
	m.located = true
	return first
}

// Location returns the viewer position and whether it is known.
func (m *Manager) Location() (geo.Point, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.location, m.located
}

// RecordDrop logs a committed pin drop.
func (m *Manager) RecordDrop(annotationID string, pov projection.Pov) {
	m.record(Event{Type: EventDrop, AnnotationID: annotationID, Pov: pov})
}

// RecordCancel logs a drag released over the toolbar.
func (m *Manager) RecordCancel() {
	m.record(Event{Type: EventCancel})
}

// RecordInvalidDrop logs a drag released with no valid target.
func (m *Manager) RecordInvalidDrop(reason string) {
	m.record(Event{Type: EventInvalidDrop, Detail: reason})
}

// RecordOriginSet logs how many annotations received an origin.
func (m *Manager) RecordOriginSet(n int) {
	m.record(Event{Type: EventOriginSet, Count: n})
}

// RecordDelete logs an annotation removal.
func (m *Manager) RecordDelete(annotationID string) {
	m.record(Event{Type: EventAnnotationRm, AnnotationID: annotationID})
}

func (m *Manager) record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Timestamp = time.Now()
	e.PanoID = m.panoID
	m.addEvent(e)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	View        projection.View
	PanoID      string
	ImageDate   string
	Location    geo.Point
	HasLocation bool
	Events      []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		View:        projection.View{Pov: m.pov, Zoom: m.zoom, Viewport: m.viewport},
		PanoID:      m.panoID,
		ImageDate:   m.imageDate,
		Location:    m.location,
		HasLocation: m.located,
		Events:      m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

func sanitizePov(p projection.Pov) projection.Pov {
	return projection.Pov{
		Heading: projection.NormalizeHeading(p.Heading),
		Pitch:   math.Max(-90, math.Min(90, p.Pitch)),
	}
}

func clampZoom(z, minZoom, maxZoom float64) float64 {
	return math.Max(minZoom, math.Min(maxZoom, z))
}
