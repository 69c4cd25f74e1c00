package model

import "time"

// Teacher publishes lesson slots and writes up lesson records.
type Teacher struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Timezone  string    `json:"timezone"` // IANA name, validated at write time
	CreatedAt time.Time `json:"created_at"`
}
