package attendance

import (
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
)

// Status is the per-user state shown in the aggregate view.
type Status string

const (
	StatusAbsent     Status = "Absent"
	StatusActive     Status = "Active"
	StatusCompleted  Status = "Completed"
	StatusIncomplete Status = "Incomplete"
)

// StatusOf applies the precedence absent > active > completed > incomplete.
func StatusOf(r model.AttendanceRecord) Status {
	if r.FirstPunchIn == nil {
		return StatusAbsent
	}
	if utils.Any(r.Sessions, model.SessionInterval.Open) {
		return StatusActive
	}
	if r.LastPunchOut != nil {
		return StatusCompleted
	}
	return StatusIncomplete
}

// SessionStatus labels one interval in the details view.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionShort     SessionStatus = "short"
	SessionCompleted SessionStatus = "completed"
)

func SessionStatusOf(s model.SessionInterval) SessionStatus {
	if s.Open() {
		return SessionActive
	}
	if s.Duration == nil || *s.Duration == 0 {
		return SessionShort
	}
	return SessionCompleted
}

type SessionCounts struct {
	Total     int
	Active    int
	Completed int
}

func CountSessions(sessions []model.SessionInterval) SessionCounts {
	return SessionCounts{
		Total:     len(sessions),
		Active:    utils.Count(sessions, model.SessionInterval.Open),
		Completed: utils.Count(sessions, func(s model.SessionInterval) bool { return !s.Open() }),
	}
}

// Summary aggregates the records of one selected date.
type Summary struct {
	Present    int
	Absent     int
	Total      int
	TotalHours float64
}

func Summarize(records []model.AttendanceRecord) Summary {
	absent := utils.Count(records, func(r model.AttendanceRecord) bool { return StatusOf(r) == StatusAbsent })
	return Summary{
		Present:    len(records) - absent,
		Absent:     absent,
		Total:      len(records),
		TotalHours: utils.SumBy(records, func(r model.AttendanceRecord) float64 { return r.TotalHours }),
	}
}

func (s Summary) TotalWorkingTime() string {
	return FormatHours(s.TotalHours)
}
