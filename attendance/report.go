package attendance

import (
	"fmt"
	"strings"
	"time"

	"axiapac.com/timetrack/model"
)

// SummaryReport is the plain text digest sent to Slack and email.
func SummaryReport(day time.Time, records []model.AttendanceRecord, loc *time.Location) string {
	s := Summarize(records)

	var b strings.Builder
	fmt.Fprintf(&b, "Attendance for %s\n", day.Format("Mon 02 Jan 2006"))
	fmt.Fprintf(&b, "Present: %d  Absent: %d  Total: %d\n", s.Present, s.Absent, s.Total)
	fmt.Fprintf(&b, "Total working time: %s\n", s.TotalWorkingTime())

	for _, r := range records {
		status := StatusOf(r)
		if status == StatusAbsent {
			fmt.Fprintf(&b, "- %s: %s\n", r.Name, status)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s, in %s, out %s, %s\n",
			r.Name, status,
			FormatClock(r.FirstPunchIn, loc),
			FormatClock(r.LastPunchOut, loc),
			FormatHours(r.TotalHours))
	}
	return b.String()
}
