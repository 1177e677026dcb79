package annotation

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-panopin/internal/geo"
)

// SummaryRow is one pin as seen from a viewpoint.
type SummaryRow struct {
	ID       string
	Title    string
	Color    PinColor
	Point    geo.Point
	Distance float64 // Meters from the viewpoint; 0 when unknown
	Heading  float64
	Pitch    float64
	Origin   bool
}

// GenerateSummaryRows computes where each pin appears from viewpoint. With no
// viewpoint the stored direction is reported.
func GenerateSummaryRows(list []Annotation, viewpoint *geo.Point) []SummaryRow {
	rows := make([]SummaryRow, 0, len(list))
	for _, a := range list {
		r := SummaryRow{
			ID:      a.ID,
			Title:   a.Title,
			Color:   a.Color,
			Point:   a.Point,
			Heading: a.Heading,
			Pitch:   a.Pitch,
			Origin:  a.HasOrigin(),
		}
		if viewpoint != nil {
			pov := a.PovFrom(*viewpoint)
			r.Heading = pov.Heading
			r.Pitch = pov.Pitch
			r.Distance = geo.Distance(*viewpoint, a.Point)
		}
		rows = append(rows, r)
	}
	return rows
}

// WriteSummaryTable prints pins as a fixed-width table.
func WriteSummaryTable(w io.Writer, list []Annotation, viewpoint *geo.Point, timestamp time.Time) {
	rows := GenerateSummaryRows(list, viewpoint)

	where := "location unknown"
	if viewpoint != nil {
		where = viewpoint.String()
	}
	fmt.Fprintf(w, "Pins from %s @ %s\n", where, timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 88))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No pins")
		return
	}

	fmt.Fprintf(w, "%-10s %-20s %-7s %-22s %8s %7s %7s %-6s\n",
		"ID", "Title", "Color", "Position", "Dist", "Head", "Pitch", "Origin")
	fmt.Fprintln(w, strings.Repeat("─", 88))

	for _, r := range rows {
		dist := "-"
		if viewpoint != nil {
			dist = fmt.Sprintf("%.1fm", r.Distance)
		}
		origin := "no"
		if r.Origin {
			origin = "yes"
		}
		fmt.Fprintf(w, "%-10s %-20s %-7s %-22s %8s %7.1f %7.1f %-6s\n",
			truncateStr(r.ID, 10),
			truncateStr(r.Title, 20),
			r.Color,
			r.Point.String(),
			dist,
			r.Heading,
			r.Pitch,
			origin,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d pins\n", len(rows))
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
