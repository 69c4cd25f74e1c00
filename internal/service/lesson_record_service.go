package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"go.uber.org/zap"
)

// LessonRecordService manages the write-up attached to each booking.
type LessonRecordService struct {
	pool        *pgxpool.Pool
	recordRepo  *repository.LessonRecordRepository
	teacherRepo *repository.TeacherRepository
	logger      *zap.Logger
}

func NewLessonRecordService(
	pool *pgxpool.Pool,
	recordRepo *repository.LessonRecordRepository,
	teacherRepo *repository.TeacherRepository,
	logger *zap.Logger,
) *LessonRecordService {
	return &LessonRecordService{
		pool:        pool,
		recordRepo:  recordRepo,
		teacherRepo: teacherRepo,
		logger:      logger,
	}
}

// EditInput carries a full replacement of the record's content. Word and
// phrase lists are swapped wholesale, never merged.
type EditInput struct {
	LessonSummary  string
	Strengths      string
	AreasToImprove string
	NewWords       []string
	NewPhrases     []string
}

// Edit updates a record the teacher owns. The edit time is the current
// instant put through the teacher's zone and back to UTC in the one
// canonical conversion point.
func (s *LessonRecordService) Edit(ctx context.Context, recordID, teacherID int64, input EditInput) error {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("get lesson record: %w", err)
	}

	if record == nil {
		return ErrNotFound
	}

	if record.TeacherID != teacherID {
		return ErrNotOwner
	}

	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return ErrNotFound
	}

	loc, err := timeutil.LoadZone(teacher.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, teacher.Timezone)
	}
	editedAt := timeutil.ToUTC(timeutil.ToLocal(time.Now(), loc))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txRecords := repository.NewLessonRecordRepository(tx)

	affected, err := txRecords.UpdateContent(ctx, recordID, input.LessonSummary, input.Strengths, input.AreasToImprove, editedAt)
	if err != nil {
		return fmt.Errorf("update lesson record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := txRecords.ReplaceWords(ctx, recordID, input.NewWords); err != nil {
		return fmt.Errorf("replace words: %w", err)
	}

	if err := txRecords.ReplacePhrases(ctx, recordID, input.NewPhrases); err != nil {
		return fmt.Errorf("replace phrases: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Lesson record edited",
		zap.Int64("lesson_record_id", recordID),
		zap.Int64("teacher_id", teacherID),
		zap.Bool("finalized", input.LessonSummary != ""),
	)

	return nil
}

// Get returns a record with its word and phrase lists. Only the student or
// teacher on the record may read it.
func (s *LessonRecordService) Get(ctx context.Context, recordID int64, principal model.Principal) (*model.LessonRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get lesson record: %w", err)
	}

	if record == nil {
		return nil, ErrNotFound
	}

	switch {
	case principal.IsStudent() && record.StudentID == principal.UserID:
	case principal.IsTeacher() && record.TeacherID == principal.UserID:
	default:
		return nil, ErrNotOwner
	}

	if err := s.loadContent(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// History returns the principal's records for lessons that have started,
// newest edit first.
func (s *LessonRecordService) History(ctx context.Context, principal model.Principal) ([]*model.LessonRecord, error) {
	now := time.Now().UTC()

	var (
		records []*model.LessonRecord
		err     error
	)
	if principal.IsTeacher() {
		records, err = s.recordRepo.ListByTeacher(ctx, principal.UserID, now)
	} else {
		records, err = s.recordRepo.ListByStudent(ctx, principal.UserID, now)
	}
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if err := s.loadContent(ctx, record); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// Outstanding returns past lessons the teacher still has to summarise,
// oldest first.
func (s *LessonRecordService) Outstanding(ctx context.Context, teacherID int64) ([]*model.LessonRecord, error) {
	return s.recordRepo.ListOutstanding(ctx, teacherID, time.Now().UTC())
}

// MostRecentFinalized returns the teacher's latest summarised record, or
// ErrNotFound when none exists yet.
func (s *LessonRecordService) MostRecentFinalized(ctx context.Context, teacherID int64) (*model.LessonRecord, error) {
	record, err := s.recordRepo.MostRecentFinalized(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}

	if err := s.loadContent(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *LessonRecordService) loadContent(ctx context.Context, record *model.LessonRecord) error {
	words, err := s.recordRepo.Words(ctx, record.ID)
	if err != nil {
		return err
	}
	phrases, err := s.recordRepo.Phrases(ctx, record.ID)
	if err != nil {
		return err
	}

	record.NewWords = words
	record.NewPhrases = phrases
	return nil
}
