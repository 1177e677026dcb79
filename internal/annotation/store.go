package annotation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-panopin/internal/geo"
)

// ErrNotFound is returned when no annotation has the requested id.
var ErrNotFound = errors.New("annotation not found")

// Store persists annotations. Implementations assign ids and creation times
// and must never overwrite an origin once it is set.
type Store interface {
	// List returns every annotation ordered by creation time.
	List() ([]Annotation, error)

	// Get returns a single annotation.
	Get(id string) (Annotation, error)

	// Add stores a new annotation and returns it with id and time filled in.
	Add(a Annotation) (Annotation, error)

	// Update applies a patch. The id is never changed.
	Update(id string, p Patch) (Annotation, error)

	// Delete removes an annotation.
	Delete(id string) error

	// SetOriginForAll assigns origin to every annotation that lacks one and
	// returns how many were updated.
	SetOriginForAll(origin geo.Point) (int, error)

	// Close releases underlying resources.
	Close() error
}

// Patch holds optional field updates. Nil fields are left untouched. Origin is
// deliberately absent: it is written only by SetOriginForAll.
type Patch struct {
	Title     *string
	Desc      *string
	Color     *PinColor
	Heading   *float64
	Pitch     *float64
	Point     *geo.Point
	ImageDate *string
}

func (p Patch) apply(a *Annotation) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Desc != nil {
		a.Desc = *p.Desc
	}
	if p.Color != nil {
		a.Color = NormalizeColor(string(*p.Color))
	}
	if p.Heading != nil {
		a.Heading = *p.Heading
	}
	if p.Pitch != nil {
		a.Pitch = *p.Pitch
	}
	if p.Point != nil {
		a.Point = *p.Point
	}
	if p.ImageDate != nil {
		a.ImageDate = *p.ImageDate
	}
}

// Filter keeps annotations that apply to the given capture date: those with
// no image date and those matching it. An empty date keeps everything.
func Filter(list []Annotation, imageDate string) []Annotation {
	if imageDate == "" {
		return list
	}
	out := make([]Annotation, 0, len(list))
	for _, a := range list {
		if a.ImageDate == "" || a.ImageDate == imageDate {
			out = append(out, a)
		}
	}
	return out
}

// prepare fills store-assigned fields on a new annotation.
func prepare(a Annotation, now time.Time) Annotation {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.Color = NormalizeColor(string(a.Color))
	if a.Origin != nil {
		origin := *a.Origin
		a.Origin = &origin
	}
	return a
}

// MemoryStore keeps annotations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Annotation
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Annotation),
		now:   time.Now,
	}
}

// List implements Store.
func (s *MemoryStore) List() ([]Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Annotation, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, clone(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok {
		return Annotation{}, ErrNotFound
	}
	return clone(a), nil
}

// Add implements Store.
func (s *MemoryStore) Add(a Annotation) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a = prepare(a, s.now())
	s.items[a.ID] = a
	return clone(a), nil
}

// Update implements Store.
func (s *MemoryStore) Update(id string, p Patch) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return Annotation{}, ErrNotFound
	}
	p.apply(&a)
	s.items[id] = a
	return clone(a), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// SetOriginForAll implements Store.
func (s *MemoryStore) SetOriginForAll(origin geo.Point) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, a := range s.items {
		if a.Origin != nil {
			continue
		}
		o := origin
		a.Origin = &o
		s.items[id] = a
		n++
	}
	return n, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// clone copies an annotation so callers cannot mutate stored origins.
func clone(a Annotation) Annotation {
	if a.Origin != nil {
		o := *a.Origin
		a.Origin = &o
	}
	return a
}
