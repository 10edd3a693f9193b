package model

import (
	"encoding/json"
	"fmt"
	"time"

	"axiapac.com/timetrack/utils"
)

// UTCTime is a server timestamp. The backend sends naive UTC datetimes
// ("2025-01-02T09:00:00.123456"); they are read as UTC, never as local time.
type UTCTime struct {
	time.Time
}

func NewUTCTime(t time.Time) *UTCTime {
	return &UTCTime{Time: t.UTC()}
}

func (u *UTCTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		u.Time = time.Time{}
		return nil
	}

	t, err := utils.ParseUTC(s)
	if err != nil {
		return err
	}
	u.Time = t
	return nil
}

func (u UTCTime) MarshalJSON() ([]byte, error) {
	if u.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(u.Time.UTC().Format(time.RFC3339Nano))
}

// Local converts to the display location.
func (u UTCTime) Local(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return u.Time.In(loc)
}
