package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = LoadZone("")
	assert.ErrorIs(t, err, ErrUnknownZone)

	_, err = LoadZone("Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestZoneOrDefault(t *testing.T) {
	loc := ZoneOrDefault("Asia/Tokyo", "America/Los_Angeles")
	assert.Equal(t, "Asia/Tokyo", loc.String())

	loc = ZoneOrDefault("not-a-zone", "America/Los_Angeles")
	assert.Equal(t, "America/Los_Angeles", loc.String())

	loc = ZoneOrDefault("", "also-not-a-zone")
	assert.Equal(t, time.UTC, loc)
}

func TestLocalizeRoundTrip(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// EDT is UTC-4, so 09:00 local is 13:00 UTC.
	naive := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	utc := ToUTC(Localize(naive, ny))
	assert.Equal(t, time.Date(2024, time.June, 10, 13, 0, 0, 0, time.UTC), utc)

	local := ToLocal(utc, ny)
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, naive.Day(), local.Day())

	// EST is UTC-5, same wall time in January lands an hour later in UTC.
	winter := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	utc = ToUTC(Localize(winter, ny))
	assert.Equal(t, time.Date(2024, time.January, 10, 14, 0, 0, 0, time.UTC), utc)
}
