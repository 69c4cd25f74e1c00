package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
)

type SlotRepository struct {
	db DBTX
}

func NewSlotRepository(db DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create inserts a new open slot.
func (r *SlotRepository) Create(ctx context.Context, slot *model.LessonSlot) error {
	query := `
		INSERT INTO lesson_slots (teacher_id, start_time, end_time, booked)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, slot.TeacherID, slot.StartTime, slot.EndTime).
		Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID returns the slot or nil when absent.
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, start_time, end_time, booked, created_at
		FROM lesson_slots
		WHERE id = $1
	`

	var slot model.LessonSlot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Booked,
		&slot.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// FindIdentical returns the slot with exactly the given teacher and interval,
// or nil. Backs the idempotent open.
func (r *SlotRepository) FindIdentical(ctx context.Context, teacherID int64, start, end time.Time) (*model.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, start_time, end_time, booked, created_at
		FROM lesson_slots
		WHERE teacher_id = $1 AND start_time = $2 AND end_time = $3
	`

	var slot model.LessonSlot
	err := r.db.QueryRow(ctx, query, teacherID, start, end).Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Booked,
		&slot.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find identical slot: %w", err)
	}

	return &slot, nil
}

// ListAvailable returns unbooked future slots inside [from, to), optionally
// filtered by teacher, ordered by start time.
func (r *SlotRepository) ListAvailable(ctx context.Context, teacherID *int64, from, to, now time.Time) ([]*model.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, start_time, end_time, booked, created_at
		FROM lesson_slots
		WHERE booked = false
		  AND start_time >= $1
		  AND start_time < $2
		  AND start_time > $3
		  AND ($4::bigint IS NULL OR teacher_id = $4)
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, from, to, now, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ListByTeacher returns all of a teacher's slots inside [from, to),
// booked or not, ordered by start time.
func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.LessonSlot, error) {
	query := `
		SELECT id, teacher_id, start_time, end_time, booked, created_at
		FROM lesson_slots
		WHERE teacher_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, teacherID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list slots by teacher: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// MarkBooked flips an open slot to booked. Zero affected rows means another
// booking won the race (or the slot is gone); exactly one concurrent caller
// can succeed.
func (r *SlotRepository) MarkBooked(ctx context.Context, id int64) (int64, error) {
	query := `
		UPDATE lesson_slots
		SET booked = true
		WHERE id = $1 AND booked = false
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("mark slot booked: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Release reopens a booked slot after its booking is cancelled.
func (r *SlotRepository) Release(ctx context.Context, id int64) (int64, error) {
	query := `
		UPDATE lesson_slots
		SET booked = false
		WHERE id = $1 AND booked = true
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("release slot: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes a slot, refusing to touch booked rows.
func (r *SlotRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `
		DELETE FROM lesson_slots
		WHERE id = $1 AND booked = false
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteExpired removes unbooked slots that ended before the cutoff.
// Only touches booked = false rows, so it is safe to run concurrently
// with bookings.
func (r *SlotRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM lesson_slots
		WHERE booked = false AND end_time < $1
	`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired slots: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanSlots(rows pgx.Rows) ([]*model.LessonSlot, error) {
	var slots []*model.LessonSlot
	for rows.Next() {
		var slot model.LessonSlot
		err := rows.Scan(
			&slot.ID,
			&slot.TeacherID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Booked,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, rows.Err()
}
