package mockapi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"axiapac.com/timetrack/export"
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type sessionDTO struct {
	PunchIn  *string  `json:"punch_in"`
	PunchOut *string  `json:"punch_out"`
	Duration *float64 `json:"duration"`
}

type recordDTO struct {
	UserID       int64        `json:"user_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Date         string       `json:"date"`
	FirstPunchIn *string      `json:"first_punch_in"`
	LastPunchOut *string      `json:"last_punch_out"`
	TotalHours   *float64     `json:"total_hours,omitempty"`
	Duration     *float64     `json:"total_duration,omitempty"`
	Sessions     []sessionDTO `json:"sessions"`
}

func openInterval(intervals []interval) (int, *interval) {
	for i := range intervals {
		if intervals[i].out == nil {
			return i, &intervals[i]
		}
	}
	return -1, nil
}

func hours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

func (s *Server) punchIn(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[c.GetInt64(ctxUserID)]
	if _, open := openInterval(acc.intervals); open != nil {
		rejected(c, "You have already punched in and not punched out yet.", http.StatusBadRequest)
		return
	}

	now := s.now()
	acc.intervals = append(acc.intervals, interval{in: now})
	success(c, "Punched in successfully", gin.H{
		"session_id": len(acc.intervals),
		"punch_in":   naive(&now),
	})
}

func (s *Server) punchOut(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[c.GetInt64(ctxUserID)]
	i, open := openInterval(acc.intervals)
	if open == nil {
		rejected(c, "No active punch-in found. Please punch in first.", http.StatusBadRequest)
		return
	}

	now := s.now()
	acc.intervals[i].out = &now
	success(c, "Punched out successfully", gin.H{
		"session_id": i + 1,
		"punch_out":  naive(&now),
		"duration":   hours(now.Sub(open.in)),
	})
}

// recordLocked builds the user's record for the UTC day starting at day.
func recordLocked(acc *account, day time.Time) model.AttendanceRecord {
	end := day.AddDate(0, 0, 1)
	record := model.AttendanceRecord{
		UserID: acc.ID,
		Name:   acc.Name,
		Email:  acc.Email,
		Date:   day.Format(utils.DateLayout),
	}
	for _, iv := range acc.intervals {
		if iv.in.Before(day) || !iv.in.Before(end) {
			continue
		}
		session := model.SessionInterval{PunchIn: model.NewUTCTime(iv.in)}
		if iv.out != nil {
			d := hours(iv.out.Sub(iv.in))
			session.PunchOut = model.NewUTCTime(*iv.out)
			session.Duration = &d
			record.TotalHours += d
			record.LastPunchOut = session.PunchOut
		}
		if record.FirstPunchIn == nil {
			record.FirstPunchIn = session.PunchIn
		}
		record.Sessions = append(record.Sessions, session)
	}
	record.TotalHours = math.Round(record.TotalHours*100) / 100
	if len(record.Sessions) > 0 && record.Sessions[len(record.Sessions)-1].Open() {
		record.LastPunchOut = nil
	}
	return record
}

func stamp(t *model.UTCTime) *string {
	if t == nil {
		return nil
	}
	return naive(&t.Time)
}

// toDTO renders a record on the wire. The aggregate endpoint names the total
// total_duration.
func toDTO(r model.AttendanceRecord, aggregate bool) recordDTO {
	dto := recordDTO{
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		Date:         r.Date,
		FirstPunchIn: stamp(r.FirstPunchIn),
		LastPunchOut: stamp(r.LastPunchOut),
		Sessions:     make([]sessionDTO, 0, len(r.Sessions)),
	}
	total := r.TotalHours
	if aggregate {
		dto.Duration = &total
	} else {
		dto.TotalHours = &total
	}
	for _, s := range r.Sessions {
		dto.Sessions = append(dto.Sessions, sessionDTO{PunchIn: stamp(s.PunchIn), PunchOut: stamp(s.PunchOut), Duration: s.Duration})
	}
	return dto
}

// myDay reads date/month/year, defaulting each part to today.
func (s *Server) myDay(c *gin.Context) (time.Time, error) {
	today := s.now()
	part := func(name string, fallback int) (int, error) {
		v := c.Query(name)
		if v == "" {
			return fallback, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return n, nil
	}

	d, err := part("date", today.Day())
	if err != nil {
		return time.Time{}, err
	}
	m, err := part("month", int(today.Month()))
	if err != nil {
		return time.Time{}, err
	}
	y, err := part("year", today.Year())
	if err != nil {
		return time.Time{}, err
	}
	day := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if day.Day() != d || int(day.Month()) != m {
		return time.Time{}, errors.New("invalid date")
	}
	return day, nil
}

func (s *Server) selectedDay(c *gin.Context) (time.Time, error) {
	v := c.Query("selected_date")
	if v == "" {
		return utils.StartOfDay(s.now()), nil
	}
	return utils.ParseDate(v, time.UTC)
}

func (s *Server) myRecords(c *gin.Context, day time.Time) []model.AttendanceRecord {
	acc := s.accounts[c.GetInt64(ctxUserID)]
	r := recordLocked(acc, day)
	if len(r.Sessions) == 0 {
		return nil
	}
	return []model.AttendanceRecord{r}
}

func (s *Server) allRecordsLocked(day time.Time) []model.AttendanceRecord {
	accounts := make([]*account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return utils.Map(accounts, func(a *account) model.AttendanceRecord { return recordLocked(a, day) })
}

func (s *Server) myAttendance(c *gin.Context) {
	day, err := s.myDay(c)
	if err != nil {
		failure(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records := utils.Map(s.myRecords(c, day), func(r model.AttendanceRecord) recordDTO { return toDTO(r, false) })
	success(c, "Attendance fetched successfully", records)
}

func (s *Server) allAttendance(c *gin.Context) {
	day, err := s.selectedDay(c)
	if err != nil {
		failure(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records := utils.Map(s.allRecordsLocked(day), func(r model.AttendanceRecord) recordDTO { return toDTO(r, true) })
	success(c, "Attendance fetched successfully", records)
}

func (s *Server) downloadMine(c *gin.Context) {
	s.download(c, func(day time.Time) []model.AttendanceRecord { return s.myRecords(c, day) })
}

func (s *Server) downloadAll(c *gin.Context) {
	s.download(c, s.allRecordsLocked)
}

func (s *Server) download(c *gin.Context, records func(time.Time) []model.AttendanceRecord) {
	format, ok := model.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if !ok {
		failure(c, http.StatusBadRequest, "Invalid format. Use csv, excel or pdf.")
		return
	}
	day, err := s.selectedDay(c)
	if err != nil {
		failure(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	err = export.Write(&buf, format, export.Rows(records(day), day, time.UTC))
	switch {
	case errors.Is(err, export.ErrNoData):
		detail(c, http.StatusNotFound, "No data to export.")
		return
	case errors.Is(err, export.ErrUnsupportedFormat):
		failure(c, http.StatusBadRequest, fmt.Sprintf("Export to %s is not available", format))
		return
	case err != nil:
		failure(c, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("attendance_%s_%s.%s", day.Format("20060102"), uuid.NewString()[:8], export.Extension(format))
	s.exports[name] = exportFile{contentType: export.ContentType(format), data: buf.Bytes()}
	success(c, "File generated successfully", model.ExportArtifact{FileURL: "/exports/" + name})
}

func (s *Server) serveExport(c *gin.Context) {
	s.mu.Lock()
	file, ok := s.exports[c.Param("name")]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusNotFound, "File not found")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Param("name")))
	c.Data(http.StatusOK, file.contentType, file.data)
}
