package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/repository"
	"go.uber.org/zap"
)

// BookingService coordinates booking and cancellation across the slot,
// the student's credit balance, the booking row and its lesson record.
// Every mutation set commits as one transaction; serialization on the slot
// happens through the conditional booked-flag update, not application locks,
// so the engine stays correct across multiple processes.
type BookingService struct {
	pool        *pgxpool.Pool
	slotRepo    *repository.SlotRepository
	studentRepo *repository.StudentRepository
	bookingRepo *repository.BookingRepository
	recordRepo  *repository.LessonRecordRepository
	logger      *zap.Logger
}

func NewBookingService(
	pool *pgxpool.Pool,
	slotRepo *repository.SlotRepository,
	studentRepo *repository.StudentRepository,
	bookingRepo *repository.BookingRepository,
	recordRepo *repository.LessonRecordRepository,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		pool:        pool,
		slotRepo:    slotRepo,
		studentRepo: studentRepo,
		bookingRepo: bookingRepo,
		recordRepo:  recordRepo,
		logger:      logger,
	}
}

// Book claims a slot for a student. On success the slot is booked, an active
// booking and an empty lesson record exist, and one credit is spent; on any
// failure none of that is visible. Of N concurrent calls on one slot exactly
// one succeeds and the rest get ErrSlotUnavailable.
func (s *BookingService) Book(ctx context.Context, studentID, slotID int64) (*model.Booking, error) {
	now := time.Now().UTC()

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if slot == nil {
		return nil, ErrNotFound
	}

	if slot.Booked || !slot.StartTime.After(now) {
		return nil, ErrSlotUnavailable
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	if student == nil {
		return nil, ErrNotFound
	}

	if student.RemainingLessons() <= 0 {
		return nil, ErrQuotaExceeded
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txSlots := repository.NewSlotRepository(tx)
	txStudents := repository.NewStudentRepository(tx)
	txBookings := repository.NewBookingRepository(tx)
	txRecords := repository.NewLessonRecordRepository(tx)

	// The slot row is the serialization point: only one transaction can
	// flip booked from false to true.
	affected, err := txSlots.MarkBooked(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("mark slot booked: %w", err)
	}
	if affected == 0 {
		return nil, ErrSlotUnavailable
	}

	record := &model.LessonRecord{
		StudentID:    studentID,
		TeacherID:    slot.TeacherID,
		SlotID:       slotID,
		LastEditTime: now,
	}
	if err := txRecords.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create lesson record: %w", err)
	}

	booking := &model.Booking{
		StudentID:      studentID,
		SlotID:         slotID,
		LessonRecordID: record.ID,
		Status:         model.BookingStatusActive,
	}
	if err := txBookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	affected, err = txStudents.ConsumeLesson(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("consume lesson: %w", err)
	}
	if affected == 0 {
		return nil, ErrQuotaExceeded
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Lesson booked",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("slot_id", slotID),
		zap.Int64("lesson_record_id", record.ID),
	)

	booking.Slot = slot
	return booking, nil
}

// Cancel tears a booking down: record and booking are deleted, the slot
// reopens and the credit comes back, all in one transaction.
func (s *BookingService) Cancel(ctx context.Context, bookingID, studentID int64) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	// An absent booking and someone else's booking look the same to the caller.
	if booking == nil || booking.StudentID != studentID {
		return ErrNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txSlots := repository.NewSlotRepository(tx)
	txStudents := repository.NewStudentRepository(tx)
	txBookings := repository.NewBookingRepository(tx)
	txRecords := repository.NewLessonRecordRepository(tx)

	affected, err := txBookings.Delete(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if affected == 0 {
		// Cancelled concurrently.
		return ErrNotFound
	}

	if _, err := txRecords.Delete(ctx, booking.LessonRecordID); err != nil {
		return fmt.Errorf("delete lesson record: %w", err)
	}

	if _, err := txSlots.Release(ctx, booking.SlotID); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	if _, err := txStudents.RefundLesson(ctx, studentID); err != nil {
		return fmt.Errorf("refund lesson: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("student_id", studentID),
		zap.Int64("slot_id", booking.SlotID),
	)

	return nil
}

// StudentUpcoming returns the student's future booked lessons.
func (s *BookingService) StudentUpcoming(ctx context.Context, studentID int64) ([]*model.BookedLesson, error) {
	return s.bookingRepo.ListUpcomingByStudent(ctx, studentID, time.Now().UTC())
}

// TeacherUpcoming returns the teacher's future booked lessons.
func (s *BookingService) TeacherUpcoming(ctx context.Context, teacherID int64) ([]*model.BookedLesson, error) {
	return s.bookingRepo.ListUpcomingByTeacher(ctx, teacherID, time.Now().UTC())
}
