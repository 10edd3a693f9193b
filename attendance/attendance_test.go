package attendance

import (
	"testing"
	"time"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) *model.UTCTime {
	return model.NewUTCTime(time.Date(2025, 10, 13, hour, minute, 0, 0, time.UTC))
}

func closed(in, out *model.UTCTime, hours float64) model.SessionInterval {
	return model.SessionInterval{PunchIn: in, PunchOut: out, Duration: utils.Ptr(hours)}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		record model.AttendanceRecord
		want   Status
	}{
		{
			name:   "no punch in",
			record: model.AttendanceRecord{UserID: 1},
			want:   StatusAbsent,
		},
		{
			name: "open interval",
			record: model.AttendanceRecord{
				UserID:       1,
				FirstPunchIn: at(9, 0),
				Sessions: []model.SessionInterval{
					closed(at(9, 0), at(10, 0), 1),
					{PunchIn: at(11, 0)},
				},
			},
			want: StatusActive,
		},
		{
			name: "punched out",
			record: model.AttendanceRecord{
				UserID:       1,
				FirstPunchIn: at(9, 0),
				LastPunchOut: at(17, 0),
				Sessions:     []model.SessionInterval{closed(at(9, 0), at(17, 0), 8)},
			},
			want: StatusCompleted,
		},
		{
			name: "punched in but no last punch out",
			record: model.AttendanceRecord{
				UserID:       1,
				FirstPunchIn: at(9, 0),
			},
			want: StatusIncomplete,
		},
		{
			name: "absent wins over stray sessions",
			record: model.AttendanceRecord{
				UserID:   1,
				Sessions: []model.SessionInterval{{PunchIn: at(9, 0)}},
			},
			want: StatusAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.record))
		})
	}
}

func TestSessionStatusOf(t *testing.T) {
	assert.Equal(t, SessionActive, SessionStatusOf(model.SessionInterval{PunchIn: at(9, 0)}))
	assert.Equal(t, SessionShort, SessionStatusOf(closed(at(9, 0), at(9, 0), 0)))
	assert.Equal(t, SessionCompleted, SessionStatusOf(closed(at(9, 0), at(10, 0), 1)))

	counts := CountSessions([]model.SessionInterval{
		closed(at(9, 0), at(10, 0), 1),
		closed(at(10, 30), at(10, 30), 0),
		{PunchIn: at(11, 0)},
	})
	assert.Equal(t, SessionCounts{Total: 3, Active: 1, Completed: 2}, counts)
}

func TestSummarize(t *testing.T) {
	records := []model.AttendanceRecord{
		{UserID: 1, FirstPunchIn: at(9, 0), LastPunchOut: at(17, 0), TotalHours: 8},
		{UserID: 2, FirstPunchIn: at(9, 0), TotalHours: 1.5, Sessions: []model.SessionInterval{{PunchIn: at(9, 0)}}},
		{UserID: 3},
	}

	s := Summarize(records)
	assert.Equal(t, Summary{Present: 2, Absent: 1, Total: 3, TotalHours: 9.5}, s)
	assert.Equal(t, "9h 30m", s.TotalWorkingTime())

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, "0h 0m", empty.TotalWorkingTime())
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{1.5, "1h 30m"},
		{0, "0h 0m"},
		{8, "8h 0m"},
		{0.25, "0h 15m"},
		{1.9999, "2h 0m"},
		{2.0083, "2h 0m"},
		{-1, "0h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHours(tt.hours), "hours %v", tt.hours)
	}
}

func TestFormatSessionDuration(t *testing.T) {
	assert.Equal(t, "-", FormatSessionDuration(nil))
	assert.Equal(t, "< 1 min", FormatSessionDuration(utils.Ptr(0.0)))
	assert.Equal(t, "45m", FormatSessionDuration(utils.Ptr(0.75)))
	assert.Equal(t, "2h 15m", FormatSessionDuration(utils.Ptr(2.25)))
}

func TestFormatClock(t *testing.T) {
	brisbane := time.FixedZone("AEST", 10*60*60)

	assert.Equal(t, "-", FormatClock(nil, brisbane))
	assert.Equal(t, "07:30 PM", FormatClock(at(9, 30), brisbane))
	assert.Equal(t, "09:30 AM", FormatClock(at(9, 30), time.UTC))
}

func TestControlsFor(t *testing.T) {
	profile := func(action model.NextAction) *model.UserProfile {
		return &model.UserProfile{ID: 1, TodayAttendance: &model.TodayAttendance{NextAction: action}}
	}

	assert.Equal(t, Controls{PunchIn: true}, ControlsFor(profile(model.NextActionPunchIn)))
	assert.Equal(t, Controls{PunchOut: true}, ControlsFor(profile(model.NextActionPunchOut)))
	assert.Equal(t, Controls{}, ControlsFor(profile("")))
	assert.Equal(t, Controls{}, ControlsFor(&model.UserProfile{ID: 1}))
	assert.Equal(t, Controls{}, ControlsFor(nil))

	c := ControlsFor(profile(model.NextActionPunchOut))
	assert.True(t, c.Allows(model.NextActionPunchOut))
	assert.False(t, c.Allows(model.NextActionPunchIn))
}

func TestCheckIntervals(t *testing.T) {
	open, err := CheckIntervals(model.AttendanceRecord{Sessions: []model.SessionInterval{
		closed(at(9, 0), at(10, 0), 1),
		{PunchIn: at(11, 0)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	open, err = CheckIntervals(model.AttendanceRecord{})
	require.NoError(t, err)
	assert.Equal(t, -1, open)

	_, err = CheckIntervals(model.AttendanceRecord{Sessions: []model.SessionInterval{
		{PunchIn: at(9, 0)},
		{PunchIn: at(11, 0)},
	}})
	assert.ErrorIs(t, err, ErrMultipleOpen)

	_, err = CheckIntervals(model.AttendanceRecord{Sessions: []model.SessionInterval{
		{PunchIn: at(9, 0), Duration: utils.Ptr(1.0)},
	}})
	assert.ErrorIs(t, err, ErrDurationOnOpen)

	_, err = CheckIntervals(model.AttendanceRecord{Sessions: []model.SessionInterval{
		{PunchIn: at(9, 0), PunchOut: at(10, 0)},
	}})
	assert.ErrorIs(t, err, ErrMissingDuration)
}

func TestExpansion(t *testing.T) {
	e := NewExpansion()
	assert.False(t, e.Expanded(3))
	assert.True(t, e.Toggle(3))
	assert.True(t, e.Expanded(3))
	assert.False(t, e.Expanded(4))
	assert.False(t, e.Toggle(3))
	assert.False(t, e.Expanded(3))

	e.Toggle(5)
	e.Reset()
	assert.False(t, e.Expanded(5))
}

func TestSummaryReport(t *testing.T) {
	day := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	report := SummaryReport(day, []model.AttendanceRecord{
		{UserID: 1, Name: "Alice", FirstPunchIn: at(9, 0), LastPunchOut: at(17, 0), TotalHours: 8},
		{UserID: 2, Name: "Bob"},
	}, time.UTC)

	assert.Contains(t, report, "Attendance for Mon 13 Oct 2025")
	assert.Contains(t, report, "Present: 1  Absent: 1  Total: 2")
	assert.Contains(t, report, "- Alice: Completed, in 09:00 AM, out 05:00 PM, 8h 0m")
	assert.Contains(t, report, "- Bob: Absent")
}
