package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	landscapeColumnThreshold = 7
	pageMargin               = 10.0
	headerRowHeight          = 8.0
	bodyRowHeight            = 6.5
)

// PDFExporter renders datasets as a paginated table. Wide datasets switch to landscape.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF document with the dataset title, subtitle and table.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	orientation := "P"
	if len(data.Columns) >= landscapeColumnThreshold {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	generated := e.now().UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		width, _ := pdf.GetPageSize()
		half := (width - 2*pageMargin) / 2
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(half, 6, fmt.Sprintf("Generated %s", generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(data.Columns, pageWidth-2*pageMargin)

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
	}
	if data.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, data.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], headerRowHeight, fit(pdf, col.Header, widths[i]), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range data.Rows {
		if pdf.GetY()+bodyRowHeight > pageHeight-20 {
			pdf.AddPage()
			writeHeader()
		}
		for i, value := range row {
			align := data.Columns[i].Align
			if align == "" {
				align = AlignLeft
			}
			pdf.CellFormat(widths[i], bodyRowHeight, fit(pdf, value, widths[i]), "1", 0, string(align), false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column, available float64) []float64 {
	var total float64
	for _, col := range columns {
		total += relativeWidth(col)
	}
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = available * relativeWidth(col) / total
	}
	return widths
}

func relativeWidth(col Column) float64 {
	if col.Width <= 0 {
		return 1
	}
	return col.Width
}

// fit truncates text with an ellipsis so it stays inside a cell of the given width.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
