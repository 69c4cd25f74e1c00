package model

// Role is the kind of account acting on the schedule.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one the engine knows about.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Principal is the authenticated caller, resolved upstream and passed
// explicitly into every service call.
type Principal struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (p Principal) IsStudent() bool { return p.Role == RoleStudent }
func (p Principal) IsTeacher() bool { return p.Role == RoleTeacher }
