package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rabogan/esl-lesson-system/internal/model"
)

type LessonRecordRepository struct {
	db DBTX
}

func NewLessonRecordRepository(db DBTX) *LessonRecordRepository {
	return &LessonRecordRepository{db: db}
}

// Create inserts a record, empty except for its foreign keys. Word and
// phrase lists start empty and are written through Replace*.
func (r *LessonRecordRepository) Create(ctx context.Context, record *model.LessonRecord) error {
	query := `
		INSERT INTO lesson_records (student_id, teacher_id, lesson_slot_id, lesson_summary, strengths, areas_to_improve, last_edit_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx, query,
		record.StudentID,
		record.TeacherID,
		record.SlotID,
		record.LessonSummary,
		record.Strengths,
		record.AreasToImprove,
		record.LastEditTime,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("create lesson record: %w", err)
	}

	return nil
}

// GetByID returns the record without its word/phrase lists, or nil.
func (r *LessonRecordRepository) GetByID(ctx context.Context, id int64) (*model.LessonRecord, error) {
	query := `
		SELECT id, student_id, teacher_id, lesson_slot_id, lesson_summary,
		       strengths, areas_to_improve, last_edit_time
		FROM lesson_records
		WHERE id = $1
	`

	var record model.LessonRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.StudentID,
		&record.TeacherID,
		&record.SlotID,
		&record.LessonSummary,
		&record.Strengths,
		&record.AreasToImprove,
		&record.LastEditTime,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson record by id: %w", err)
	}

	return &record, nil
}

// UpdateContent replaces the free-text fields and stamps the edit time.
func (r *LessonRecordRepository) UpdateContent(ctx context.Context, id int64, summary, strengths, areasToImprove string, editedAt time.Time) (int64, error) {
	query := `
		UPDATE lesson_records
		SET lesson_summary = $1, strengths = $2, areas_to_improve = $3, last_edit_time = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(ctx, query, summary, strengths, areasToImprove, editedAt, id)
	if err != nil {
		return 0, fmt.Errorf("update lesson record: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ReplaceWords swaps the word list wholesale, preserving order.
func (r *LessonRecordRepository) ReplaceWords(ctx context.Context, recordID int64, words []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM lesson_record_words WHERE lesson_record_id = $1`, recordID); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}

	for i, word := range words {
		_, err := r.db.Exec(ctx,
			`INSERT INTO lesson_record_words (lesson_record_id, position, content) VALUES ($1, $2, $3)`,
			recordID, i, word,
		)
		if err != nil {
			return fmt.Errorf("insert word: %w", err)
		}
	}

	return nil
}

// ReplacePhrases swaps the phrase list wholesale, preserving order.
func (r *LessonRecordRepository) ReplacePhrases(ctx context.Context, recordID int64, phrases []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM lesson_record_phrases WHERE lesson_record_id = $1`, recordID); err != nil {
		return fmt.Errorf("clear phrases: %w", err)
	}

	for i, phrase := range phrases {
		_, err := r.db.Exec(ctx,
			`INSERT INTO lesson_record_phrases (lesson_record_id, position, content) VALUES ($1, $2, $3)`,
			recordID, i, phrase,
		)
		if err != nil {
			return fmt.Errorf("insert phrase: %w", err)
		}
	}

	return nil
}

// Words returns the record's word list in order.
func (r *LessonRecordRepository) Words(ctx context.Context, recordID int64) ([]string, error) {
	return r.listContent(ctx, `SELECT content FROM lesson_record_words WHERE lesson_record_id = $1 ORDER BY position`, recordID)
}

// Phrases returns the record's phrase list in order.
func (r *LessonRecordRepository) Phrases(ctx context.Context, recordID int64) ([]string, error) {
	return r.listContent(ctx, `SELECT content FROM lesson_record_phrases WHERE lesson_record_id = $1 ORDER BY position`, recordID)
}

func (r *LessonRecordRepository) listContent(ctx context.Context, query string, recordID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("list record content: %w", err)
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan record content: %w", err)
		}
		items = append(items, content)
	}

	return items, rows.Err()
}

// Delete removes a record; words and phrases go with it via cascade.
func (r *LessonRecordRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM lesson_records WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete lesson record: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByStudent returns the student's records for lessons that have started,
// most recently edited first.
func (r *LessonRecordRepository) ListByStudent(ctx context.Context, studentID int64, now time.Time) ([]*model.LessonRecord, error) {
	query := `
		SELECT r.id, r.student_id, r.teacher_id, r.lesson_slot_id, r.lesson_summary,
		       r.strengths, r.areas_to_improve, r.last_edit_time, s.start_time
		FROM lesson_records r
		JOIN lesson_slots s ON s.id = r.lesson_slot_id
		WHERE r.student_id = $1
		  AND s.start_time <= $2
		ORDER BY r.last_edit_time DESC
	`

	return r.listRecords(ctx, query, studentID, now)
}

// ListByTeacher returns the teacher's records for lessons that have started,
// most recently edited first.
func (r *LessonRecordRepository) ListByTeacher(ctx context.Context, teacherID int64, now time.Time) ([]*model.LessonRecord, error) {
	query := `
		SELECT r.id, r.student_id, r.teacher_id, r.lesson_slot_id, r.lesson_summary,
		       r.strengths, r.areas_to_improve, r.last_edit_time, s.start_time
		FROM lesson_records r
		JOIN lesson_slots s ON s.id = r.lesson_slot_id
		WHERE r.teacher_id = $1
		  AND s.start_time <= $2
		ORDER BY r.last_edit_time DESC
	`

	return r.listRecords(ctx, query, teacherID, now)
}

// ListOutstanding returns past lessons the teacher has not summarised yet,
// oldest lesson first.
func (r *LessonRecordRepository) ListOutstanding(ctx context.Context, teacherID int64, now time.Time) ([]*model.LessonRecord, error) {
	query := `
		SELECT r.id, r.student_id, r.teacher_id, r.lesson_slot_id, r.lesson_summary,
		       r.strengths, r.areas_to_improve, r.last_edit_time, s.start_time
		FROM lesson_records r
		JOIN lesson_slots s ON s.id = r.lesson_slot_id
		WHERE r.teacher_id = $1
		  AND r.lesson_summary = ''
		  AND s.start_time <= $2
		ORDER BY s.start_time
	`

	return r.listRecords(ctx, query, teacherID, now)
}

// MostRecentFinalized returns the teacher's latest summarised record, or nil.
func (r *LessonRecordRepository) MostRecentFinalized(ctx context.Context, teacherID int64) (*model.LessonRecord, error) {
	query := `
		SELECT r.id, r.student_id, r.teacher_id, r.lesson_slot_id, r.lesson_summary,
		       r.strengths, r.areas_to_improve, r.last_edit_time, s.start_time
		FROM lesson_records r
		JOIN lesson_slots s ON s.id = r.lesson_slot_id
		WHERE r.teacher_id = $1
		  AND r.lesson_summary <> ''
		ORDER BY r.last_edit_time DESC
		LIMIT 1
	`

	records, err := r.listRecords(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *LessonRecordRepository) listRecords(ctx context.Context, query string, args ...any) ([]*model.LessonRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lesson records: %w", err)
	}
	defer rows.Close()

	var records []*model.LessonRecord
	for rows.Next() {
		var record model.LessonRecord
		err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.TeacherID,
			&record.SlotID,
			&record.LessonSummary,
			&record.Strengths,
			&record.AreasToImprove,
			&record.LastEditTime,
			&record.SlotStartTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
