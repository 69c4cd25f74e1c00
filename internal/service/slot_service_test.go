package service

import (
	"context"
	"testing"
	"time"

	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenConvertsToUTC(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	svc := f.slotService()

	// 09:00 New York in June is 13:00 UTC.
	localStart := time.Date(2026, time.June, 8, 9, 0, 0, 0, time.UTC)
	localEnd := time.Date(2026, time.June, 8, 10, 0, 0, 0, time.UTC)

	slotID, err := svc.Open(ctx, teacher.ID, localStart, localEnd, "America/New_York")
	require.NoError(t, err)

	slot, err := f.slots.GetByID(ctx, slotID)
	require.NoError(t, err)
	assert.True(t, slot.StartTime.Equal(time.Date(2026, time.June, 8, 13, 0, 0, 0, time.UTC)))
	assert.True(t, slot.EndTime.Equal(time.Date(2026, time.June, 8, 14, 0, 0, 0, time.UTC)))
	assert.False(t, slot.Booked)
}

func TestOpenValidation(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	svc := f.slotService()

	start := time.Date(2026, time.June, 8, 9, 0, 0, 0, time.UTC)

	_, err := svc.Open(ctx, teacher.ID, start, start.Add(time.Hour), "Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = svc.Open(ctx, teacher.ID, start, start, "America/New_York")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Open(ctx, teacher.ID, start, start.Add(-time.Hour), "America/New_York")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOpenIdempotent(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	student := f.seedStudent(t, "maria", 30, 0)
	svc := f.slotService()

	start := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	end := start.Add(time.Hour)

	first, err := svc.Open(ctx, teacher.ID, start, end, "UTC")
	require.NoError(t, err)

	// Re-opening the same interval returns the same slot.
	second, err := svc.Open(ctx, teacher.ID, start, end, "UTC")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = f.bookingService().Book(ctx, student.ID, first)
	require.NoError(t, err)

	// Once booked the interval is no longer re-openable.
	_, err = svc.Open(ctx, teacher.ID, start, end, "UTC")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCloseSlot(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	intruder := f.seedTeacher(t, "boris", "Europe/Berlin")
	student := f.seedStudent(t, "maria", 30, 0)
	slot := f.seedSlot(t, teacher.ID, time.Now().Add(48*time.Hour))

	svc := f.slotService()

	assert.ErrorIs(t, svc.Close(ctx, 99999, teacher.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Close(ctx, slot.ID, intruder.ID), ErrNotOwner)

	_, err := f.bookingService().Book(ctx, student.ID, slot.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Close(ctx, slot.ID, teacher.ID), ErrSlotBooked)

	open := f.seedSlot(t, teacher.ID, time.Now().Add(72*time.Hour))
	require.NoError(t, svc.Close(ctx, open.ID, teacher.ID))

	gone, err := f.slots.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestListAvailableFiltersBookedAndPast(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "UTC")
	student := f.seedStudent(t, "maria", 30, 0)

	// Anchor everything inside next week's window so the assertions do not
	// depend on what day the test runs.
	week := timeutil.WeekWindowAt(time.Now(), time.UTC, 1)
	open := f.seedSlot(t, teacher.ID, week.Start.Add(10*time.Hour))
	booked := f.seedSlot(t, teacher.ID, week.Start.Add(12*time.Hour))
	f.seedSlot(t, teacher.ID, week.End.Add(10*time.Hour)) // the week after

	_, err := f.bookingService().Book(ctx, student.ID, booked.ID)
	require.NoError(t, err)

	svc := f.slotService()

	slots, window, err := svc.ListAvailable(ctx, nil, 1, "UTC")
	require.NoError(t, err)
	assert.True(t, window.End.After(window.Start))

	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, open.ID)
	assert.NotContains(t, ids, booked.ID)

	// The teacher's own calendar shows booked slots too.
	all, _, err := svc.TeacherWeek(ctx, teacher.ID, 1)
	require.NoError(t, err)

	ids = ids[:0]
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, open.ID)
	assert.Contains(t, ids, booked.ID)
}

func TestDeleteExpiredSparesBookedSlots(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "UTC")

	stale := f.seedSlot(t, teacher.ID, time.Now().Add(-72*time.Hour))
	recent := f.seedSlot(t, teacher.ID, time.Now().Add(-2*time.Hour))
	bookedStale := f.seedSlot(t, teacher.ID, time.Now().Add(-96*time.Hour))

	affected, err := f.slots.MarkBooked(ctx, bookedStale.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	removed, err := f.slots.DeleteExpired(ctx, time.Now().Add(-24*time.Hour).UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	gone, err := f.slots.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Inside the retention window and booked rows both survive.
	kept, err := f.slots.GetByID(ctx, recent.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	kept, err = f.slots.GetByID(ctx, bookedStale.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
