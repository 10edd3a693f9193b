package model

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Privileged reports whether the role may open the aggregate attendance view.
func (r Role) Privileged() bool {
	return r == RoleSuperAdmin
}

// NextAction is the server-computed hint of which punch control is enabled.
type NextAction string

const (
	NextActionPunchIn  NextAction = "punch_in"
	NextActionPunchOut NextAction = "punch_out"
)

type TodayAttendance struct {
	NextAction NextAction `json:"next_action" validate:"omitempty,oneof=punch_in punch_out"`
}

type UserProfile struct {
	ID              int64            `json:"id" validate:"required"`
	Name            string           `json:"name"`
	Email           string           `json:"email" validate:"required"`
	Role            Role             `json:"role" validate:"required,oneof=employee admin super_admin"`
	TodayAttendance *TodayAttendance `json:"today_attendance,omitempty"`
}

// NextAction returns the next allowed punch, or "" when the server sent none.
func (p UserProfile) NextAction() NextAction {
	if p.TodayAttendance == nil {
		return ""
	}
	return p.TodayAttendance.NextAction
}

type UserSummary struct {
	ID    int64  `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
