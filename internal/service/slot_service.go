package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"go.uber.org/zap"
)

// SlotService manages teacher availability. Input wall times arrive paired
// with an IANA zone name and are converted to UTC exactly once, here.
type SlotService struct {
	slotRepo    *repository.SlotRepository
	teacherRepo *repository.TeacherRepository
	logger      *zap.Logger
}

func NewSlotService(
	slotRepo *repository.SlotRepository,
	teacherRepo *repository.TeacherRepository,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		slotRepo:    slotRepo,
		teacherRepo: teacherRepo,
		logger:      logger,
	}
}

// Open publishes an availability slot. localStart and localEnd carry naive
// wall-clock values interpreted in zone. Opening a slot identical to an
// existing open slot returns the existing id; an identical booked slot is
// refused.
func (s *SlotService) Open(ctx context.Context, teacherID int64, localStart, localEnd time.Time, zone string) (int64, error) {
	loc, err := timeutil.LoadZone(zone)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}

	startUTC := timeutil.ToUTC(timeutil.Localize(localStart, loc))
	endUTC := timeutil.ToUTC(timeutil.Localize(localEnd, loc))

	if !endUTC.After(startUTC) {
		return 0, ErrInvalidRange
	}

	existing, err := s.slotRepo.FindIdentical(ctx, teacherID, startUTC, endUTC)
	if err != nil {
		return 0, fmt.Errorf("find identical slot: %w", err)
	}
	if existing != nil {
		if existing.Booked {
			return 0, ErrSlotUnavailable
		}
		return existing.ID, nil
	}

	slot := &model.LessonSlot{
		TeacherID: teacherID,
		StartTime: startUTC,
		EndTime:   endUTC,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return 0, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot opened",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("teacher_id", teacherID),
		zap.Time("start_utc", startUTC),
		zap.Time("end_utc", endUTC),
	)

	return slot.ID, nil
}

// Close deletes an open slot. Booked slots must be cancelled through the
// booking coordinator first.
func (s *SlotService) Close(ctx context.Context, slotID, teacherID int64) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}

	if slot == nil {
		return ErrNotFound
	}

	if slot.TeacherID != teacherID {
		return ErrNotOwner
	}

	if slot.Booked {
		return ErrSlotBooked
	}

	affected, err := s.slotRepo.Delete(ctx, slotID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if affected == 0 {
		// Booked or removed between the read and the delete.
		return ErrSlotBooked
	}

	s.logger.Info("Slot closed",
		zap.Int64("slot_id", slotID),
		zap.Int64("teacher_id", teacherID),
	)

	return nil
}

// ListAvailable returns bookable slots in the week window for zone,
// shifted by weekOffset whole weeks. Comparison against "now" runs in UTC.
func (s *SlotService) ListAvailable(ctx context.Context, teacherID *int64, weekOffset int, zone string) ([]*model.LessonSlot, timeutil.Window, error) {
	loc, err := timeutil.LoadZone(zone)
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}

	window := timeutil.WeekWindow(loc, weekOffset)

	slots, err := s.slotRepo.ListAvailable(ctx, teacherID, window.Start, window.End, time.Now().UTC())
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("list available slots: %w", err)
	}

	return slots, window, nil
}

// TeacherWeek returns all of a teacher's slots, booked or open, for the week
// window in the teacher's own timezone.
func (s *SlotService) TeacherWeek(ctx context.Context, teacherID int64, weekOffset int) ([]*model.LessonSlot, timeutil.Window, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("get teacher: %w", err)
	}

	if teacher == nil {
		return nil, timeutil.Window{}, ErrNotFound
	}

	loc, err := timeutil.LoadZone(teacher.Timezone)
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, teacher.Timezone)
	}

	window := timeutil.WeekWindow(loc, weekOffset)

	slots, err := s.slotRepo.ListByTeacher(ctx, teacherID, window.Start, window.End)
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("list teacher slots: %w", err)
	}

	return slots, window, nil
}
