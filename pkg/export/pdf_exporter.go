package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Page orientations accepted by NewPDFExporter.
const (
	Portrait  = "P"
	Landscape = "L"
)

// PDFExporter renders datasets into a tabular PDF. Rows are grouped under a sub-heading whenever the
// value of GroupBy changes.
type PDFExporter struct {
	orientation string
	GroupBy     string
}

// NewPDFExporter constructs a PDF exporter. An unknown orientation falls back to portrait.
func NewPDFExporter(orientation string) *PDFExporter {
	if orientation != Landscape {
		orientation = Portrait
	}
	return &PDFExporter{orientation: orientation}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render pdf: %w", errNoHeaders)
	}
	pdf := gofpdf.New(e.orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	group := ""
	if e.GroupBy == "" {
		writeHeader()
	}
	for i, row := range data.Rows {
		if e.GroupBy != "" && row[e.GroupBy] != group {
			group = row[e.GroupBy]
			pdf.Ln(2)
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 8, group, "", 1, "L", false, 0, "")
			writeHeader()
		}
		for _, value := range data.Record(i) {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
