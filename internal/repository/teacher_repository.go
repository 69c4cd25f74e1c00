package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
)

type TeacherRepository struct {
	db DBTX
}

func NewTeacherRepository(db DBTX) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create inserts a teacher. Registration itself lives upstream; this exists
// for seeding and tests.
func (r *TeacherRepository) Create(ctx context.Context, teacher *model.Teacher) error {
	query := `
		INSERT INTO teachers (username, timezone)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, teacher.Username, teacher.Timezone).
		Scan(&teacher.ID, &teacher.CreatedAt)
	if err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

// GetByID returns the teacher or nil when absent.
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	query := `
		SELECT id, username, timezone, created_at
		FROM teachers
		WHERE id = $1
	`

	var teacher model.Teacher
	err := r.db.QueryRow(ctx, query, id).Scan(
		&teacher.ID,
		&teacher.Username,
		&teacher.Timezone,
		&teacher.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by id: %w", err)
	}

	return &teacher, nil
}

// UpdateTimezone stores a new zone name. The caller validates the name first.
func (r *TeacherRepository) UpdateTimezone(ctx context.Context, id int64, zone string) (int64, error) {
	query := `
		UPDATE teachers
		SET timezone = $1
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, zone, id)
	if err != nil {
		return 0, fmt.Errorf("update teacher timezone: %w", err)
	}

	return tag.RowsAffected(), nil
}
