package annotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractImageDate(t *testing.T) {
	capture := time.Date(2023, 5, 14, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record map[string]any
		want   string
		ok     bool
	}{
		{"nil record", nil, "", false},
		{"empty record", map[string]any{}, "", false},
		{"documented year-month", map[string]any{"imageDate": "2021-08"}, "2021-08", true},
		{"documented time", map[string]any{"date": capture}, "2023-05", true},
		{"documented time pointer", map[string]any{"image_date": &capture}, "2023-05", true},
		{"documented rfc3339", map[string]any{"date": "2020-02-29T10:00:00Z"}, "2020-02", true},
		{"documented day", map[string]any{"date": "2018-12-01"}, "2018-12", true},
		{"documented field wins", map[string]any{"imageDate": "2021-08", "Xq": capture}, "2021-08", true},
		{"heuristic time field", map[string]any{"pano": "abc", "Xq": capture}, "2023-05", true},
		{
			"heuristic is stable",
			map[string]any{"b": time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), "a": capture},
			"2023-05", true,
		},
		{"garbage documented falls through", map[string]any{"date": "last spring", "x": capture}, "2023-05", true},
		{"zero time ignored", map[string]any{"x": time.Time{}}, "", false},
		{"no dates", map[string]any{"pano": "abc", "n": 3}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractImageDate(tt.record)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
