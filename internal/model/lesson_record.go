package model

import "time"

// LessonRecord is the pedagogical write-up tied to a booking. It is created
// empty in the same transaction as the booking and finalized when the
// teacher fills in the summary.
type LessonRecord struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	TeacherID      int64     `json:"teacher_id"`
	SlotID         int64     `json:"lesson_slot_id"`
	LessonSummary  string    `json:"lesson_summary"`
	Strengths      string    `json:"strengths"`
	AreasToImprove string    `json:"areas_to_improve"`
	NewWords       []string  `json:"new_words"`
	NewPhrases     []string  `json:"new_phrases"`
	LastEditTime   time.Time `json:"last_edit_time"`

	// Populated on listing queries so callers can show when the lesson ran.
	SlotStartTime time.Time `json:"slot_start_time,omitzero"`
}

// Finalized reports whether the teacher has written the summary.
func (r *LessonRecord) Finalized() bool {
	return r.LessonSummary != ""
}
