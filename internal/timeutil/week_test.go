package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekWindowAtStartsMonday(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// Wednesday 2024-06-12 15:30 New York.
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, ny)
	window := WeekWindowAt(now, ny, 0)

	start := window.Start.In(ny)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 10, start.Day())
	assert.Equal(t, 0, start.Hour())

	end := window.End.In(ny)
	assert.Equal(t, time.Monday, end.Weekday())
	assert.Equal(t, 17, end.Day())

	assert.True(t, window.Contains(now.UTC()))
	assert.False(t, window.Contains(window.End))
}

func TestWeekWindowAtMondayAnchor(t *testing.T) {
	// A Monday midnight anchor is its own window start.
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	window := WeekWindowAt(now, time.UTC, 0)
	assert.Equal(t, now, window.Start)

	// A Sunday just before midnight still belongs to the previous Monday.
	sunday := time.Date(2024, time.June, 16, 23, 59, 0, 0, time.UTC)
	window = WeekWindowAt(sunday, time.UTC, 0)
	assert.Equal(t, now, window.Start)
}

func TestWeekWindowsContiguous(t *testing.T) {
	zones := []string{
		"UTC",
		"America/New_York",
		"America/Santiago",
		"Australia/Lord_Howe",
	}

	// Anchors near DST transitions in the southern and northern hemispheres.
	anchors := []time.Time{
		time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC),
		time.Date(2024, time.September, 4, 12, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC),
	}

	for _, name := range zones {
		loc, err := LoadZone(name)
		require.NoError(t, err)

		for _, now := range anchors {
			for offset := -3; offset < 3; offset++ {
				cur := WeekWindowAt(now, loc, offset)
				next := WeekWindowAt(now, loc, offset+1)
				assert.True(t, cur.End.Equal(next.Start),
					"zone %s anchor %s offset %d: %s != %s",
					name, now, offset, cur.End, next.Start)
				assert.True(t, cur.End.After(cur.Start))
			}
		}
	}
}

func TestWeekWindowAbsorbsDST(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// The week containing the 2024 spring-forward (March 10) is 167 hours.
	now := time.Date(2024, time.March, 6, 12, 0, 0, 0, ny)
	window := WeekWindowAt(now, ny, 0)
	assert.Equal(t, 167*time.Hour, window.End.Sub(window.Start))

	// The fall-back week (November 3) is 169 hours.
	now = time.Date(2024, time.October, 30, 12, 0, 0, 0, ny)
	window = WeekWindowAt(now, ny, 0)
	assert.Equal(t, 169*time.Hour, window.End.Sub(window.Start))
}
