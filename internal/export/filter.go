package export

import (
	"fmt"
	"strings"
	"time"
)

var (
	rangeFloor   = time.Unix(0, 0).UTC()
	rangeCeiling = time.UnixMilli(8_640_000_000_000_000).UTC()
)

// DateRange is an inclusive filter window. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Bounds returns the effective window, substituting the epoch and the maximum
// representable date for open bounds.
func (r DateRange) Bounds() (time.Time, time.Time) {
	start, end := rangeFloor, rangeCeiling
	if r.Start != nil {
		start = *r.Start
	}
	if r.End != nil {
		end = *r.End
	}
	return start, end
}

// Contains reports whether t falls inside the window, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	start, end := r.Bounds()
	return !t.Before(start) && !t.After(end)
}

// Period renders the window as display bounds for a report.
func (r DateRange) Period() Period {
	var p Period
	if r.Start != nil {
		p.Start = r.Start.Format(DateLayout)
	}
	if r.End != nil {
		p.End = r.End.Format(DateLayout)
	}
	return p
}

// FilterByDate keeps rows whose date falls inside r. Rows for which dateOf
// reports no date are kept. Input order is preserved.
func FilterByDate[T any](rows []T, dateOf func(T) (time.Time, bool), r DateRange) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		date, ok := dateOf(row)
		if !ok || r.Contains(date) {
			out = append(out, row)
		}
	}
	return out
}

// ParseDateRange parses YYYY-MM-DD bounds as UTC midnight. Empty strings leave
// the bound open.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date %q: %w", s, err)
		}
		r.Start = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date %q: %w", s, err)
		}
		r.End = &t
	}
	return r, nil
}
