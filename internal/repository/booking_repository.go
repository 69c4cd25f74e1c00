package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
)

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts an active booking for a slot. The unique constraint on
// lesson_slot_id keeps a second active booking out even if the slot flag
// were ever wrong.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (student_id, lesson_slot_id, lesson_record_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		booking.StudentID,
		booking.SlotID,
		booking.LessonRecordID,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns the booking or nil when absent.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `
		SELECT id, student_id, lesson_slot_id, lesson_record_id, status, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.SlotID,
		&booking.LessonRecordID,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return &booking, nil
}

// GetBySlotID returns the booking holding a slot, or nil.
func (r *BookingRepository) GetBySlotID(ctx context.Context, slotID int64) (*model.Booking, error) {
	query := `
		SELECT id, student_id, lesson_slot_id, lesson_record_id, status, created_at
		FROM bookings
		WHERE lesson_slot_id = $1
	`

	var booking model.Booking
	err := r.db.QueryRow(ctx, query, slotID).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.SlotID,
		&booking.LessonRecordID,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by slot: %w", err)
	}

	return &booking, nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListUpcomingByStudent returns the student's future booked lessons,
// soonest first.
func (r *BookingRepository) ListUpcomingByStudent(ctx context.Context, studentID int64, now time.Time) ([]*model.BookedLesson, error) {
	query := `
		SELECT b.id, b.lesson_slot_id, b.student_id, s.teacher_id, b.lesson_record_id,
		       s.start_time, s.end_time
		FROM bookings b
		JOIN lesson_slots s ON s.id = b.lesson_slot_id
		WHERE b.student_id = $1
		  AND s.start_time > $2
		ORDER BY s.start_time
	`

	rows, err := r.db.Query(ctx, query, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming by student: %w", err)
	}
	defer rows.Close()

	return scanBookedLessons(rows)
}

// ListUpcomingByTeacher returns the teacher's future booked lessons,
// soonest first.
func (r *BookingRepository) ListUpcomingByTeacher(ctx context.Context, teacherID int64, now time.Time) ([]*model.BookedLesson, error) {
	query := `
		SELECT b.id, b.lesson_slot_id, b.student_id, s.teacher_id, b.lesson_record_id,
		       s.start_time, s.end_time
		FROM bookings b
		JOIN lesson_slots s ON s.id = b.lesson_slot_id
		WHERE s.teacher_id = $1
		  AND s.start_time > $2
		ORDER BY s.start_time
	`

	rows, err := r.db.Query(ctx, query, teacherID, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming by teacher: %w", err)
	}
	defer rows.Close()

	return scanBookedLessons(rows)
}

func scanBookedLessons(rows pgx.Rows) ([]*model.BookedLesson, error) {
	var lessons []*model.BookedLesson
	for rows.Next() {
		var lesson model.BookedLesson
		err := rows.Scan(
			&lesson.BookingID,
			&lesson.SlotID,
			&lesson.StudentID,
			&lesson.TeacherID,
			&lesson.LessonRecordID,
			&lesson.StartTime,
			&lesson.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booked lesson: %w", err)
		}
		lessons = append(lessons, &lesson)
	}

	return lessons, rows.Err()
}
