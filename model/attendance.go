package model

import (
	"encoding/json"
	"strings"
)

// SessionInterval is one punch-in to punch-out span. Duration is in decimal
// hours and stays nil while the interval is open.
type SessionInterval struct {
	PunchIn  *UTCTime `json:"punch_in"`
	PunchOut *UTCTime `json:"punch_out"`
	Duration *float64 `json:"duration"`
}

func (s SessionInterval) Open() bool {
	return s.PunchOut == nil
}

type AttendanceRecord struct {
	UserID       int64             `json:"user_id" validate:"required"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Date         string            `json:"date,omitempty"`
	FirstPunchIn *UTCTime          `json:"first_punch_in"`
	LastPunchOut *UTCTime          `json:"last_punch_out"`
	TotalHours   float64           `json:"total_hours"`
	Sessions     []SessionInterval `json:"sessions"`
}

// UnmarshalJSON accepts total_duration as an alias of total_hours; the
// aggregate endpoint uses the former.
func (r *AttendanceRecord) UnmarshalJSON(b []byte) error {
	type Alias AttendanceRecord
	aux := &struct {
		TotalDuration *float64 `json:"total_duration"`
		*Alias
	}{Alias: (*Alias)(r)}

	if err := json.Unmarshal(b, aux); err != nil {
		return err
	}
	if aux.TotalDuration != nil && r.TotalHours == 0 {
		r.TotalHours = *aux.TotalDuration
	}
	return nil
}

type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

func ParseExportFormat(s string) (ExportFormat, bool) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportCSV, ExportExcel, ExportPDF:
		return f, true
	case "xlsx":
		return ExportExcel, true
	}
	return "", false
}

// ExportArtifact points at a generated export; the bytes are fetched separately.
type ExportArtifact struct {
	FileURL string `json:"file_url" validate:"required"`
}
