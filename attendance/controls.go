package attendance

import (
	"errors"
	"fmt"

	"axiapac.com/timetrack/model"
)

// Controls is which punch button is enabled.
type Controls struct {
	PunchIn  bool
	PunchOut bool
}

// ControlsFor gates the punch buttons on the server's next_action. Without
// a profile or a known action both stay disabled.
func ControlsFor(profile *model.UserProfile) Controls {
	if profile == nil {
		return Controls{}
	}
	switch profile.NextAction() {
	case model.NextActionPunchIn:
		return Controls{PunchIn: true}
	case model.NextActionPunchOut:
		return Controls{PunchOut: true}
	}
	return Controls{}
}

func (c Controls) Allows(action model.NextAction) bool {
	switch action {
	case model.NextActionPunchIn:
		return c.PunchIn
	case model.NextActionPunchOut:
		return c.PunchOut
	}
	return false
}

var (
	ErrMultipleOpen    = errors.New("more than one open interval")
	ErrOpenNotLast     = errors.New("open interval is not the latest")
	ErrDurationOnOpen  = errors.New("open interval carries a duration")
	ErrMissingDuration = errors.New("closed interval has no duration")
	ErrMissingPunchIn  = errors.New("interval has no punch in")
)

// CheckIntervals verifies the interval invariants of a record and returns the
// index of the open interval, or -1.
func CheckIntervals(r model.AttendanceRecord) (int, error) {
	open := -1
	for i, s := range r.Sessions {
		if s.PunchIn == nil {
			return -1, fmt.Errorf("session %d: %w", i, ErrMissingPunchIn)
		}
		if !s.Open() {
			if s.Duration == nil {
				return -1, fmt.Errorf("session %d: %w", i, ErrMissingDuration)
			}
			continue
		}
		if s.Duration != nil {
			return -1, fmt.Errorf("session %d: %w", i, ErrDurationOnOpen)
		}
		if open >= 0 {
			return -1, ErrMultipleOpen
		}
		open = i
	}
	if open >= 0 && open != len(r.Sessions)-1 {
		return -1, ErrOpenNotLast
	}
	return open, nil
}
