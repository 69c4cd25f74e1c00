package model

import "time"

type BookingStatus string

const (
	BookingStatusActive BookingStatus = "active"
)

// Booking is a student's claim on a lesson slot. At most one booking may
// reference a slot; the booking and its lesson record are created together
// and destroyed together.
type Booking struct {
	ID             int64         `json:"id"`
	StudentID      int64         `json:"student_id"`
	SlotID         int64         `json:"slot_id"`
	LessonRecordID int64         `json:"lesson_record_id"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`

	// Populated by the coordinator for the caller, not from the bookings table.
	Slot *LessonSlot `json:"slot,omitempty"`
}

// BookedLesson is a booking joined with its slot, used for upcoming-lesson
// listings on both sides of the marketplace.
type BookedLesson struct {
	BookingID      int64     `json:"booking_id"`
	SlotID         int64     `json:"slot_id"`
	StudentID      int64     `json:"student_id"`
	TeacherID      int64     `json:"teacher_id"`
	LessonRecordID int64     `json:"lesson_record_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}
