package annotation

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/litescript/ls-panopin/internal/geo"
)

// record is the database row for an annotation. Origin columns are nullable;
// NULL means the origin has not been assigned yet.
type record struct {
	ID        string `gorm:"primaryKey"`
	PanoID    string `gorm:"index"`
	Lat       float64
	Lng       float64
	OriginLat *float64
	OriginLng *float64
	Heading   float64
	Pitch     float64
	Title     string
	Desc      string
	Color     string
	Author    string
	ImageDate string `gorm:"index"`
	CreatedAt time.Time
}

func (record) TableName() string {
	return "annotations"
}

func toRecord(a Annotation) record {
	r := record{
		ID:        a.ID,
		PanoID:    a.PanoID,
		Lat:       a.Point.Lat,
		Lng:       a.Point.Lng,
		Heading:   a.Heading,
		Pitch:     a.Pitch,
		Title:     a.Title,
		Desc:      a.Desc,
		Color:     string(a.Color),
		Author:    a.Author,
		ImageDate: a.ImageDate,
		CreatedAt: a.CreatedAt,
	}
	if a.Origin != nil {
		lat, lng := a.Origin.Lat, a.Origin.Lng
		r.OriginLat = &lat
		r.OriginLng = &lng
	}
	return r
}

func (r record) toAnnotation() Annotation {
	a := Annotation{
		ID:        r.ID,
		PanoID:    r.PanoID,
		Point:     geo.Point{Lat: r.Lat, Lng: r.Lng},
		Heading:   r.Heading,
		Pitch:     r.Pitch,
		Title:     r.Title,
		Desc:      r.Desc,
		Color:     NormalizeColor(r.Color),
		Author:    r.Author,
		ImageDate: r.ImageDate,
		CreatedAt: r.CreatedAt,
	}
	if r.OriginLat != nil && r.OriginLng != nil {
		a.Origin = &geo.Point{Lat: *r.OriginLat, Lng: *r.OriginLng}
	}
	return a
}

// SQLStore persists annotations in a SQLite database.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLStore opens (creating if needed) a SQLite database at path and
// migrates the annotations table. Use ":memory:" for a throwaway store.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite allows a single writer, and an in-memory database exists per
	// connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&record{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate annotations: %w", err)
	}

	return &SQLStore{db: db, now: time.Now}, nil
}

// List implements Store.
func (s *SQLStore) List() ([]Annotation, error) {
	var rows []record
	if err := s.db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	out := make([]Annotation, len(rows))
	for i, r := range rows {
		out[i] = r.toAnnotation()
	}
	return out, nil
}

// Get implements Store.
func (s *SQLStore) Get(id string) (Annotation, error) {
	var r record
	err := s.db.First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Annotation{}, ErrNotFound
	}
	if err != nil {
		return Annotation{}, fmt.Errorf("get annotation %s: %w", id, err)
	}
	return r.toAnnotation(), nil
}

// Add implements Store.
func (s *SQLStore) Add(a Annotation) (Annotation, error) {
	a = prepare(a, s.now())
	r := toRecord(a)
	if err := s.db.Create(&r).Error; err != nil {
		return Annotation{}, fmt.Errorf("add annotation: %w", err)
	}
	return a, nil
}

// Update implements Store.
func (s *SQLStore) Update(id string, p Patch) (Annotation, error) {
	var out Annotation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r record
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return err
		}
		a := r.toAnnotation()
		p.apply(&a)
		updated := toRecord(a)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Annotation{}, ErrNotFound
	}
	if err != nil {
		return Annotation{}, fmt.Errorf("update annotation %s: %w", id, err)
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(id string) error {
	res := s.db.Delete(&record{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete annotation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOriginForAll implements Store. Only rows with a NULL origin are touched.
func (s *SQLStore) SetOriginForAll(origin geo.Point) (int, error) {
	res := s.db.Model(&record{}).
		Where("origin_lat IS NULL OR origin_lng IS NULL").
		Updates(map[string]any{
			"origin_lat": origin.Lat,
			"origin_lng": origin.Lng,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("set origin: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
