package model

import "time"

// LessonSlot is a teacher-declared interval of availability.
// Times are stored in UTC; Booked is true iff exactly one active
// booking references the slot.
type LessonSlot struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Booked    bool      `json:"booked"`
	CreatedAt time.Time `json:"created_at"`
}
