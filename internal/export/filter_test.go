package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dated struct {
	ID   int
	Date *time.Time
}

func dateOf(d dated) (time.Time, bool) {
	if d.Date == nil {
		return time.Time{}, false
	}
	return *d.Date, true
}

func ptr(t time.Time) *time.Time { return &t }

func TestFilterByDateInclusive(t *testing.T) {
	d0, d1, d2, d3 := mustDate("2024-02-28"), mustDate("2024-03-01"), mustDate("2024-03-31"), mustDate("2024-04-01")
	rows := []dated{{0, &d0}, {1, &d1}, {2, &d2}, {3, &d3}, {4, nil}}

	got := FilterByDate(rows, dateOf, DateRange{Start: ptr(d1), End: ptr(d2)})
	ids := make([]int, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 2, 4}, ids)

	again := FilterByDate(got, dateOf, DateRange{Start: ptr(d1), End: ptr(d2)})
	assert.Equal(t, got, again)
}

func TestFilterByDateOpenBounds(t *testing.T) {
	d0, d1 := mustDate("2001-01-01"), mustDate("2030-06-15")
	rows := []dated{{0, &d0}, {1, &d1}}
	assert.Equal(t, rows, FilterByDate(rows, dateOf, DateRange{}))

	onlyStart := FilterByDate(rows, dateOf, DateRange{Start: ptr(mustDate("2010-01-01"))})
	require.Len(t, onlyStart, 1)
	assert.Equal(t, 1, onlyStart[0].ID)

	onlyEnd := FilterByDate(rows, dateOf, DateRange{End: ptr(mustDate("2010-01-01"))})
	require.Len(t, onlyEnd, 1)
	assert.Equal(t, 0, onlyEnd[0].ID)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-03-01", "")
	require.NoError(t, err)
	require.NotNil(t, r.Start)
	assert.Nil(t, r.End)
	assert.Equal(t, time.UTC, r.Start.Location())
	assert.Equal(t, Period{Start: "2024-03-01"}, r.Period())

	_, err = ParseDateRange("03/01/2024", "")
	assert.Error(t, err)
}
