package service

import (
	"context"
	"testing"
	"time"

	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedFinishedLesson fakes a lesson that already ran: a booked slot in the
// past with an empty record, the state a booking leaves behind once the
// start time passes.
func seedFinishedLesson(t *testing.T, f *fixtures, teacherID, studentID int64, start time.Time) *model.LessonRecord {
	t.Helper()
	ctx := context.Background()

	slot := f.seedSlot(t, teacherID, start)
	affected, err := f.slots.MarkBooked(ctx, slot.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	record := &model.LessonRecord{
		StudentID:    studentID,
		TeacherID:    teacherID,
		SlotID:       slot.ID,
		LastEditTime: start.UTC(),
	}
	require.NoError(t, f.records.Create(ctx, record))

	booking := &model.Booking{
		StudentID:      studentID,
		SlotID:         slot.ID,
		LessonRecordID: record.ID,
		Status:         model.BookingStatusActive,
	}
	require.NoError(t, f.bookings.Create(ctx, booking))

	return record
}

func TestEditRecordOwnershipAndReplace(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	intruder := f.seedTeacher(t, "boris", "Europe/Berlin")
	student := f.seedStudent(t, "maria", 30, 0)
	record := seedFinishedLesson(t, f, teacher.ID, student.ID, time.Now().Add(-24*time.Hour))

	svc := f.recordService()

	assert.ErrorIs(t, svc.Edit(ctx, 99999, teacher.ID, EditInput{}), ErrNotFound)
	assert.ErrorIs(t, svc.Edit(ctx, record.ID, intruder.ID, EditInput{}), ErrNotOwner)

	err := svc.Edit(ctx, record.ID, teacher.ID, EditInput{
		LessonSummary:  "Past tense drills",
		Strengths:      "Good listening",
		AreasToImprove: "Irregular verbs",
		NewWords:       []string{"bought", "taught"},
		NewPhrases:     []string{"used to"},
	})
	require.NoError(t, err)

	teacherView := model.Principal{UserID: teacher.ID, Role: model.RoleTeacher}
	got, err := svc.Get(ctx, record.ID, teacherView)
	require.NoError(t, err)
	assert.True(t, got.Finalized())
	assert.Equal(t, []string{"bought", "taught"}, got.NewWords)
	assert.Equal(t, []string{"used to"}, got.NewPhrases)

	// A second edit swaps the lists wholesale.
	err = svc.Edit(ctx, record.ID, teacher.ID, EditInput{
		LessonSummary: "Past tense drills",
		NewWords:      []string{"caught"},
	})
	require.NoError(t, err)

	got, err = svc.Get(ctx, record.ID, teacherView)
	require.NoError(t, err)
	assert.Equal(t, []string{"caught"}, got.NewWords)
	assert.Empty(t, got.NewPhrases)
}

func TestGetRecordAccess(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	student := f.seedStudent(t, "maria", 30, 0)
	other := f.seedStudent(t, "kenji", 30, 0)
	record := seedFinishedLesson(t, f, teacher.ID, student.ID, time.Now().Add(-24*time.Hour))

	svc := f.recordService()

	_, err := svc.Get(ctx, record.ID, model.Principal{UserID: student.ID, Role: model.RoleStudent})
	assert.NoError(t, err)

	_, err = svc.Get(ctx, record.ID, model.Principal{UserID: teacher.ID, Role: model.RoleTeacher})
	assert.NoError(t, err)

	_, err = svc.Get(ctx, record.ID, model.Principal{UserID: other.ID, Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Get(ctx, 99999, model.Principal{UserID: student.ID, Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryExcludesFutureLessons(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	student := f.seedStudent(t, "maria", 30, 0)

	past := seedFinishedLesson(t, f, teacher.ID, student.ID, time.Now().Add(-24*time.Hour))

	// A booked future lesson has a record already, but it is not history yet.
	future := f.seedSlot(t, teacher.ID, time.Now().Add(48*time.Hour))
	_, err := f.bookingService().Book(ctx, student.ID, future.ID)
	require.NoError(t, err)

	svc := f.recordService()

	records, err := svc.History(ctx, model.Principal{UserID: student.ID, Role: model.RoleStudent})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, past.ID, records[0].ID)
	assert.False(t, records[0].SlotStartTime.IsZero())

	records, err = svc.History(ctx, model.Principal{UserID: teacher.ID, Role: model.RoleTeacher})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestOutstandingAndMostRecentFinalized(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	teacher := f.seedTeacher(t, "anna", "America/New_York")
	student := f.seedStudent(t, "maria", 30, 0)

	older := seedFinishedLesson(t, f, teacher.ID, student.ID, time.Now().Add(-72*time.Hour))
	newer := seedFinishedLesson(t, f, teacher.ID, student.ID, time.Now().Add(-24*time.Hour))

	svc := f.recordService()

	_, err := svc.MostRecentFinalized(ctx, teacher.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	outstanding, err := svc.Outstanding(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	// Oldest debt first.
	assert.Equal(t, older.ID, outstanding[0].ID)
	assert.Equal(t, newer.ID, outstanding[1].ID)

	require.NoError(t, svc.Edit(ctx, older.ID, teacher.ID, EditInput{LessonSummary: "Prepositions"}))

	outstanding, err = svc.Outstanding(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, newer.ID, outstanding[0].ID)

	latest, err := svc.MostRecentFinalized(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID)
	assert.Equal(t, "Prepositions", latest.LessonSummary)
}
