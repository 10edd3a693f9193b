package attendance

import (
	"fmt"
	"math"
	"time"

	"axiapac.com/timetrack/model"
)

const ClockLayout = "03:04 PM"

// FormatHours renders decimal hours as "Hh Mm". Minutes are rounded and a
// rounded 60 carries into the hour.
func FormatHours(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "0h 0m"
	}
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%dh %dm", int64(h), int64(m))
}

// FormatSessionDuration renders one interval's duration for the details view.
func FormatSessionDuration(hours *float64) string {
	if hours == nil {
		return "-"
	}
	minutes := int64(math.Round(*hours * 60))
	switch {
	case minutes < 1:
		return "< 1 min"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatClock shows a server timestamp as local wall time.
func FormatClock(t *model.UTCTime, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local(loc).Format(ClockLayout)
}
