package model

import "time"

// Student books lessons against a prepaid credit balance.
type Student struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Timezone         string    `json:"timezone"` // IANA name, validated at write time
	LessonsPurchased int       `json:"lessons_purchased"`
	LessonsUsed      int       `json:"lessons_used"`
	CreatedAt        time.Time `json:"created_at"`
}

// RemainingLessons returns the unspent credit balance.
func (s *Student) RemainingLessons() int {
	return s.LessonsPurchased - s.LessonsUsed
}
