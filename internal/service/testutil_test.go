package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabogan/esl-lesson-system/internal/app"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Integration tests run against a throwaway Postgres pointed to by
// TEST_DB_DSN and skip otherwise. Migrations are applied once per run;
// each test starts from truncated tables.
var (
	testPoolOnce sync.Once
	testPool     *pgxpool.Pool
	testPoolErr  error
)

func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		testPool, testPoolErr = pgxpool.New(ctx, dsn)
		if testPoolErr != nil {
			return
		}

		migrator, err := app.NewMigrator(testPool, "../../migrations", zap.NewNop())
		if err != nil {
			testPoolErr = err
			return
		}
		defer migrator.Close()

		testPoolErr = migrator.Run(ctx)
	})
	require.NoError(t, testPoolErr)

	_, err := testPool.Exec(context.Background(), `
		TRUNCATE bookings, lesson_record_words, lesson_record_phrases,
			lesson_records, lesson_slots, students, teachers
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	return testPool
}

type fixtures struct {
	pool     *pgxpool.Pool
	teachers *repository.TeacherRepository
	students *repository.StudentRepository
	slots    *repository.SlotRepository
	bookings *repository.BookingRepository
	records  *repository.LessonRecordRepository
}

func newFixtures(t *testing.T) *fixtures {
	pool := testDB(t)
	return &fixtures{
		pool:     pool,
		teachers: repository.NewTeacherRepository(pool),
		students: repository.NewStudentRepository(pool),
		slots:    repository.NewSlotRepository(pool),
		bookings: repository.NewBookingRepository(pool),
		records:  repository.NewLessonRecordRepository(pool),
	}
}

func (f *fixtures) seedTeacher(t *testing.T, username, zone string) *model.Teacher {
	t.Helper()
	teacher := &model.Teacher{Username: username, Timezone: zone}
	require.NoError(t, f.teachers.Create(context.Background(), teacher))
	return teacher
}

func (f *fixtures) seedStudent(t *testing.T, username string, purchased, used int) *model.Student {
	t.Helper()
	student := &model.Student{
		Username:         username,
		Timezone:         "America/New_York",
		LessonsPurchased: purchased,
		LessonsUsed:      used,
	}
	require.NoError(t, f.students.Create(context.Background(), student))
	return student
}

func (f *fixtures) seedSlot(t *testing.T, teacherID int64, start time.Time) *model.LessonSlot {
	t.Helper()
	slot := &model.LessonSlot{
		TeacherID: teacherID,
		StartTime: start.UTC(),
		EndTime:   start.Add(time.Hour).UTC(),
	}
	require.NoError(t, f.slots.Create(context.Background(), slot))
	return slot
}

func (f *fixtures) slotService() *SlotService {
	return NewSlotService(f.slots, f.teachers, zap.NewNop())
}

func (f *fixtures) bookingService() *BookingService {
	return NewBookingService(f.pool, f.slots, f.students, f.bookings, f.records, zap.NewNop())
}

func (f *fixtures) recordService() *LessonRecordService {
	return NewLessonRecordService(f.pool, f.records, f.teachers, zap.NewNop())
}
