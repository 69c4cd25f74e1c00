package service

import (
	"context"
	"fmt"

	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"go.uber.org/zap"
)

// UserService exposes the account data the engine itself needs: the stored
// timezone and, for students, the credit balance. Everything else about
// accounts lives upstream.
type UserService struct {
	studentRepo *repository.StudentRepository
	teacherRepo *repository.TeacherRepository
	logger      *zap.Logger
}

func NewUserService(
	studentRepo *repository.StudentRepository,
	teacherRepo *repository.TeacherRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
		logger:      logger,
	}
}

// Profile is the engine-side view of an account.
type Profile struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Role             model.Role `json:"role"`
	Timezone         string     `json:"timezone"`
	LessonsPurchased int        `json:"lessons_purchased,omitempty"`
	LessonsUsed      int        `json:"lessons_used,omitempty"`
	RemainingLessons int        `json:"remaining_lessons,omitempty"`
}

// Profile returns the principal's engine profile.
func (s *UserService) Profile(ctx context.Context, principal model.Principal) (*Profile, error) {
	if principal.IsTeacher() {
		teacher, err := s.teacherRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return nil, fmt.Errorf("get teacher: %w", err)
		}
		if teacher == nil {
			return nil, ErrNotFound
		}
		return &Profile{
			ID:       teacher.ID,
			Username: teacher.Username,
			Role:     model.RoleTeacher,
			Timezone: teacher.Timezone,
		}, nil
	}

	student, err := s.studentRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, ErrNotFound
	}
	return &Profile{
		ID:               student.ID,
		Username:         student.Username,
		Role:             model.RoleStudent,
		Timezone:         student.Timezone,
		LessonsPurchased: student.LessonsPurchased,
		LessonsUsed:      student.LessonsUsed,
		RemainingLessons: student.RemainingLessons(),
	}, nil
}

// Timezone returns the principal's stored zone name.
func (s *UserService) Timezone(ctx context.Context, principal model.Principal) (string, error) {
	profile, err := s.Profile(ctx, principal)
	if err != nil {
		return "", err
	}
	return profile.Timezone, nil
}

// UpdateTimezone validates and stores a new zone name. Invalid names are
// rejected before any write; the display-only default fallback never
// applies here.
func (s *UserService) UpdateTimezone(ctx context.Context, principal model.Principal, zone string) error {
	if _, err := timeutil.LoadZone(zone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}

	var (
		affected int64
		err      error
	)
	if principal.IsTeacher() {
		affected, err = s.teacherRepo.UpdateTimezone(ctx, principal.UserID, zone)
	} else {
		affected, err = s.studentRepo.UpdateTimezone(ctx, principal.UserID, zone)
	}
	if err != nil {
		return fmt.Errorf("update timezone: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Timezone updated",
		zap.Int64("user_id", principal.UserID),
		zap.String("role", string(principal.Role)),
		zap.String("timezone", zone),
	)

	return nil
}
