package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

var (
	pdfHeaders   = []string{"Date", "Name", "Email", "Punch In", "Punch Out", "Duration (hrs)", "Total Hours"}
	pdfColWidths = []float64{25, 35, 50, 25, 25, 25, 25}
)

const pdfLineHeight = 8

// WritePDF renders rows as a landscape A4 table. generated is printed under
// the title.
func WritePDF(w io.Writer, rows []Row, generated time.Time) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(54, 96, 146)
	pdf.CellFormat(0, 10, SheetName, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	if rows[0].Date != "" {
		pdf.CellFormat(0, 6, "Report Date: "+rows[0].Date, "", 1, "", false, 0, "")
		pdf.CellFormat(0, 6, "Generated on: "+generated.Format("2006-01-02 15:04:05"), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(54, 96, 146)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range pdfHeaders {
		pdf.CellFormat(pdfColWidths[i], pdfLineHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for i, r := range rows {
		// continuation rows keep the fill of their user's first row
		if r.Date != "" || r.Name != "" {
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
		}
		for j, cell := range r.cells() {
			pdf.CellFormat(pdfColWidths[j], pdfLineHeight, tr(cell), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
