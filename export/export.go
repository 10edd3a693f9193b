package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"axiapac.com/timetrack/attendance"
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Attendance Report"

var (
	ErrNoData            = errors.New("no data to export")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

var Headers = []string{"Date", "Name", "Email", "Punch In", "Punch Out", "Duration (hours)", "Total Hours"}

// Row is one interval. Only the first row of a user carries the date, the
// identity and the day total; later rows leave them blank.
type Row struct {
	Date       string
	Name       string
	Email      string
	PunchIn    string
	PunchOut   string
	Duration   string
	TotalHours string
}

func (r Row) cells() []string {
	return []string{r.Date, r.Name, r.Email, r.PunchIn, r.PunchOut, r.Duration, r.TotalHours}
}

// Rows flattens records into one row per interval. day fills the date of
// records that carry none.
func Rows(records []model.AttendanceRecord, day time.Time, loc *time.Location) []Row {
	var rows []Row
	for _, r := range records {
		date := r.Date
		if date == "" {
			date = day.Format(utils.DateLayout)
		}
		first := Row{Date: date, Name: r.Name, Email: r.Email, TotalHours: fmt.Sprintf("%.2f", r.TotalHours)}

		if len(r.Sessions) == 0 {
			first.PunchIn = attendance.FormatClock(r.FirstPunchIn, loc)
			first.PunchOut = attendance.FormatClock(r.LastPunchOut, loc)
			first.Duration = "-"
			rows = append(rows, first)
			continue
		}

		for i, s := range r.Sessions {
			row := Row{}
			if i == 0 {
				row = first
			}
			row.PunchIn = attendance.FormatClock(s.PunchIn, loc)
			row.PunchOut = attendance.FormatClock(s.PunchOut, loc)
			row.Duration = "-"
			if s.Duration != nil {
				row.Duration = fmt.Sprintf("%.2f", *s.Duration)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Write renders rows in format.
func Write(w io.Writer, format model.ExportFormat, rows []Row) error {
	switch format {
	case model.ExportCSV:
		return WriteCSV(w, rows)
	case model.ExportExcel:
		return WriteXLSX(w, rows)
	case model.ExportPDF:
		return WritePDF(w, rows, time.Now())
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func WriteCSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: center,
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Alignment: center, Border: border})
	if err != nil {
		return fmt.Errorf("cell style: %w", err)
	}

	widths := make([]int, len(Headers))
	all := append([][]string{Headers}, utils.Map(rows, Row.cells)...)
	for i, cells := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := utils.Map(cells, func(s string) interface{} { return s })
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		for c, v := range cells {
			widths[c] = max(widths[c], len(v))
		}
	}

	last, err := excelize.CoordinatesToCellName(len(Headers), len(all))
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A2", last, cellStyle); err != nil {
		return fmt.Errorf("style cells: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(width+2, 50))); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Extension is the file suffix for format.
func Extension(format model.ExportFormat) string {
	switch format {
	case model.ExportExcel:
		return "xlsx"
	case model.ExportPDF:
		return "pdf"
	}
	return "csv"
}

// ContentType is the media type served for format.
func ContentType(format model.ExportFormat) string {
	switch format {
	case model.ExportExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case model.ExportPDF:
		return "application/pdf"
	}
	return "text/csv"
}
