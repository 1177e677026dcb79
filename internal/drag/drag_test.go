package drag

import (
	"math"
	"testing"

	"github.com/litescript/ls-panopin/internal/projection"
)

type fakeHost struct {
	reserved Rect
	calls    []string
	dropped  []projection.Pov
}

func (h *fakeHost) ShowGrid() { h.calls = append(h.calls, "show") }

func (h *fakeHost) HideGrid() { h.calls = append(h.calls, "hide") }

func (h *fakeHost) Cancel() { h.calls = append(h.calls, "cancel") }

func (h *fakeHost) InvalidDrop() { h.calls = append(h.calls, "invalid") }

func (h *fakeHost) Drop(pov projection.Pov) {
	h.calls = append(h.calls, "drop")
	h.dropped = append(h.dropped, pov)
}

func (h *fakeHost) ReservedRegion() Rect { return h.reserved }

func (h *fakeHost) count(name string) int {
	n := 0
	for _, c := range h.calls {
		if c == name {
			n++
		}
	}
	return n
}

// 800x600 at zoom 1 gives dH = dV = 400.
func testSurface() Surface {
	return Surface{
		Origin: projection.Pixel{X: 0, Y: 40},
		View: projection.View{
			Pov:      projection.Pov{Heading: 0, Pitch: 0},
			Zoom:     1,
			Viewport: projection.Viewport{Width: 800, Height: 600},
		},
	}
}

func newHost() *fakeHost {
	return &fakeHost{reserved: Rect{Left: 10, Top: 5, Right: 60, Bottom: 30}}
}

func px(x, y float64) projection.Pixel {
	return projection.Pixel{X: x, Y: y}
}

func TestBeginShowsGrid(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())

	if s.State() != StateDragging {
		t.Fatalf("state = %v, want dragging", s.State())
	}
	if h.count("show") != 1 {
		t.Errorf("ShowGrid calls = %d, want 1", h.count("show"))
	}
	if _, ok := s.Candidate(); ok {
		t.Error("new session should have no candidate")
	}
	if m := s.Marker(); m.Position != px(30, 15) || m.Snapped {
		t.Errorf("initial marker = %+v", m)
	}
}

func TestMoveAboveHorizonClampsToMinPitch(t *testing.T) {
	surface := testSurface()
	tests := []struct {
		name     string
		localY   float64
		rawPitch float64
	}{
		{"about 20 degrees up", 150, math.Atan(150.0/400.0) * 180 / math.Pi},
		{"30 degrees up", 300 - 400*math.Tan(30*math.Pi/180), 30},
		{"just above horizon", 299, math.Atan(1.0/400.0) * 180 / math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := projection.PixelToPov(px(400, tt.localY), surface.View)
			if !ok || math.Abs(raw.Pitch-tt.rawPitch) > 1e-9 {
				t.Fatalf("raw pitch = %v, want %v", raw.Pitch, tt.rawPitch)
			}

			h := newHost()
			s := Begin(px(30, 15), h, DefaultConfig())
			m := s.Move(px(400, surface.Origin.Y+tt.localY), surface)

			pov, ok := s.Candidate()
			if !ok {
				t.Fatal("expected a candidate over the surface")
			}
			if pov.Pitch != -1 {
				t.Errorf("pitch = %v, want exactly -1", pov.Pitch)
			}
			if math.Abs(pov.Heading) > 1e-9 {
				t.Errorf("heading = %v, want 0", pov.Heading)
			}
			if !m.Snapped {
				t.Error("marker should be snapped")
			}

			wantY := 40 + 300 + 400*math.Tan(1*math.Pi/180)
			if math.Abs(m.Position.X-400) > 1e-6 || math.Abs(m.Position.Y-wantY) > 1e-6 {
				t.Errorf("marker at %+v, want (400, %.4f)", m.Position, wantY)
			}
		})
	}
}

func TestMoveBelowHorizonKeepsPitch(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())

	m := s.Move(px(400, 540), testSurface())
	pov, ok := s.Candidate()
	if !ok {
		t.Fatal("expected a candidate")
	}

	wantPitch := -math.Atan(200.0/400.0) * 180 / math.Pi
	if math.Abs(pov.Pitch-wantPitch) > 1e-9 {
		t.Errorf("pitch = %v, want %v", pov.Pitch, wantPitch)
	}
	// Snapping an already-grounded pointer leaves the marker under it.
	if math.Abs(m.Position.X-400) > 1e-6 || math.Abs(m.Position.Y-540) > 1e-6 {
		t.Errorf("marker at %+v, want (400, 540)", m.Position)
	}
}

func TestMarkerScale(t *testing.T) {
	tests := []struct {
		name    string
		pitch   float64
		pointer projection.Pixel
		want    float64
	}{
		{
			name:    "clamped near horizon",
			pointer: px(400, 190),
			want:    (1 / (2.5 / math.Tan(1*math.Pi/180)) * 400) / 14,
		},
		{
			name:    "ground at 5m",
			pointer: px(400, 540),
			want:    (1.0 / 5.0 * 400) / 14,
		},
		{
			name:    "steep view floors distance",
			pitch:   -80,
			pointer: px(400, 340),
			want:    (1 / 0.5 * 400) / 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := testSurface()
			surface.View.Pov.Pitch = tt.pitch

			s := Begin(px(30, 15), newHost(), DefaultConfig())
			m := s.Move(tt.pointer, surface)
			if !m.Snapped {
				t.Fatal("expected snapped marker")
			}
			if math.Abs(m.Scale-tt.want) > 1e-6 {
				t.Errorf("scale = %v, want %v", m.Scale, tt.want)
			}
		})
	}
}

func TestReservedRegionTakesPrecedence(t *testing.T) {
	h := newHost()
	surface := testSurface()
	surface.Origin = px(0, 0) // surface now covers the toolbar

	s := Begin(px(30, 15), h, DefaultConfig())

	// Inside the margin-expanded region: raw follow, no snapping.
	m := s.Move(px(75, 45), surface)
	if m.Snapped || m.Position != px(75, 45) || m.Scale != 1 {
		t.Errorf("marker = %+v, want raw follow", m)
	}
	if _, ok := s.Candidate(); ok {
		t.Error("no candidate near the reserved region")
	}

	// Just past the margin the surface wins.
	s.Move(px(81, 400), surface)
	if _, ok := s.Candidate(); !ok {
		t.Error("expected a candidate past the margin")
	}
}

func TestMoveOffSurfaceClearsCandidate(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())

	s.Move(px(400, 540), testSurface())
	if _, ok := s.Candidate(); !ok {
		t.Fatal("expected a candidate")
	}

	m := s.Move(px(900, 300), testSurface())
	if m.Snapped || m.Position != px(900, 300) {
		t.Errorf("marker = %+v, want raw follow", m)
	}
	if _, ok := s.Candidate(); ok {
		t.Error("candidate should not survive a move off the surface")
	}

	if got := s.End(px(900, 300)); got != OutcomeRejected {
		t.Errorf("outcome = %v, want rejected", got)
	}
	if h.count("invalid") != 1 || h.count("drop") != 0 {
		t.Errorf("calls = %v", h.calls)
	}
}

func TestEndOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		moves   []projection.Pixel
		release projection.Pixel
		want    Outcome
		call    string
	}{
		{
			name:    "drop on ground",
			moves:   []projection.Pixel{px(400, 540)},
			release: px(400, 540),
			want:    OutcomeCommitted,
			call:    "drop",
		},
		{
			name:    "release over toolbar cancels even with candidate",
			moves:   []projection.Pixel{px(400, 540)},
			release: px(30, 20),
			want:    OutcomeCancelled,
			call:    "cancel",
		},
		{
			name:    "release within vertical margin cancels",
			release: px(30, 48),
			want:    OutcomeCancelled,
			call:    "cancel",
		},
		{
			name:    "release beside toolbar is rejected",
			moves:   []projection.Pixel{px(70, 20)},
			release: px(70, 20),
			want:    OutcomeRejected,
			call:    "invalid",
		},
		{
			name:    "release without moving is rejected",
			release: px(400, 300),
			want:    OutcomeRejected,
			call:    "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost()
			s := Begin(px(30, 15), h, DefaultConfig())
			for _, p := range tt.moves {
				s.Move(p, testSurface())
			}

			got := s.End(tt.release)
			if got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
			if h.count(tt.call) != 1 {
				t.Errorf("%s calls = %d, want 1 (calls %v)", tt.call, h.count(tt.call), h.calls)
			}
			if h.count("hide") != 1 {
				t.Errorf("HideGrid calls = %d, want 1", h.count("hide"))
			}
			if s.State() != StateIdle {
				t.Errorf("state = %v, want idle", s.State())
			}
		})
	}
}

func TestDropReportsCandidate(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())
	s.Move(px(400, 190), testSurface())
	s.End(px(400, 190))

	if len(h.dropped) != 1 {
		t.Fatalf("drops = %d, want 1", len(h.dropped))
	}
	if h.dropped[0].Pitch != -1 {
		t.Errorf("dropped pitch = %v, want -1", h.dropped[0].Pitch)
	}
}

func TestIdleSessionIgnoresEvents(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())
	s.End(px(400, 300))
	before := len(h.calls)

	m := s.Move(px(400, 540), testSurface())
	if m.Snapped {
		t.Error("idle move should not snap")
	}
	if got := s.End(px(400, 540)); got != OutcomeNone {
		t.Errorf("second End = %v, want none", got)
	}
	s.Abort()

	if len(h.calls) != before {
		t.Errorf("host called after idle: %v", h.calls[before:])
	}
}

func TestAbortHidesGridWithoutOutcome(t *testing.T) {
	h := newHost()
	s := Begin(px(30, 15), h, DefaultConfig())
	s.Move(px(400, 540), testSurface())
	s.Abort()

	if s.State() != StateIdle {
		t.Errorf("state = %v, want idle", s.State())
	}
	if h.count("hide") != 1 {
		t.Errorf("HideGrid calls = %d, want 1", h.count("hide"))
	}
	if h.count("drop")+h.count("cancel")+h.count("invalid") != 0 {
		t.Errorf("abort reported an outcome: %v", h.calls)
	}
}

func TestRect(t *testing.T) {
	r := Rect{Left: 10, Top: 5, Right: 60, Bottom: 30}
	if !r.Contains(px(10, 5)) || !r.Contains(px(60, 30)) {
		t.Error("edges should be inclusive")
	}
	if r.Contains(px(61, 20)) {
		t.Error("point right of rect reported inside")
	}
	e := r.Expand(20, 20)
	if e != (Rect{Left: -10, Top: -15, Right: 80, Bottom: 50}) {
		t.Errorf("Expand = %+v", e)
	}
}
