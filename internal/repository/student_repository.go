package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
)

type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student. Registration itself lives upstream; this exists
// for seeding and tests.
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (username, timezone, lessons_purchased, lessons_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		student.Username,
		student.Timezone,
		student.LessonsPurchased,
		student.LessonsUsed,
	).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID returns the student or nil when absent.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `
		SELECT id, username, timezone, lessons_purchased, lessons_used, created_at
		FROM students
		WHERE id = $1
	`

	var student model.Student
	err := r.db.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.Username,
		&student.Timezone,
		&student.LessonsPurchased,
		&student.LessonsUsed,
		&student.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return &student, nil
}

// UpdateTimezone stores a new zone name. The caller validates the name first.
func (r *StudentRepository) UpdateTimezone(ctx context.Context, id int64, zone string) (int64, error) {
	query := `
		UPDATE students
		SET timezone = $1
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, zone, id)
	if err != nil {
		return 0, fmt.Errorf("update student timezone: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ConsumeLesson spends one credit. The guard keeps lessons_used below
// lessons_purchased under concurrent bookings; zero affected rows means
// the student is out of credit.
func (r *StudentRepository) ConsumeLesson(ctx context.Context, id int64) (int64, error) {
	query := `
		UPDATE students
		SET lessons_used = lessons_used + 1
		WHERE id = $1 AND lessons_used < lessons_purchased
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("consume lesson: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RefundLesson returns one credit, never going below zero used lessons.
func (r *StudentRepository) RefundLesson(ctx context.Context, id int64) (int64, error) {
	query := `
		UPDATE students
		SET lessons_used = GREATEST(lessons_used - 1, 0)
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("refund lesson: %w", err)
	}

	return tag.RowsAffected(), nil
}
