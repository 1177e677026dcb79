package annotation

import (
	"regexp"
	"time"
)

// imageDateFields are the documented keys checked before any heuristic.
var imageDateFields = []string{"imageDate", "image_date", "date"}

var yearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ExtractImageDate pulls a "YYYY-MM" capture date out of a timeline record
// returned by the panorama provider. The provider's record shape is not
// stable, so a documented field is preferred; otherwise the first time-typed
// value wins. It returns false when nothing usable is present.
func ExtractImageDate(record map[string]any) (string, bool) {
	if record == nil {
		return "", false
	}

	for _, key := range imageDateFields {
		if v, ok := record[key]; ok {
			if s, ok := imageDateValue(v); ok {
				return s, true
			}
		}
	}

	// Heuristic: any value that is a time. Map order is random, so pick the
	// earliest key alphabetically for a stable answer.
	var (
		bestKey string
		best    string
	)
	for k, v := range record {
		t, ok := v.(time.Time)
		if !ok || t.IsZero() {
			continue
		}
		if best == "" || k < bestKey {
			bestKey = k
			best = t.UTC().Format("2006-01")
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}

func imageDateValue(v any) (string, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return val.UTC().Format("2006-01"), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return "", false
		}
		return val.UTC().Format("2006-01"), true
	case string:
		if yearMonth.MatchString(val) {
			return val, true
		}
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t.UTC().Format("2006-01"), true
		}
		if t, err := time.Parse("2006-01-02", val); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}
