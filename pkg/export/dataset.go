package export

import "fmt"

// Alignment of a column's cells in rendered documents.
type Alignment string

const (
	AlignLeft   Alignment = "L"
	AlignCenter Alignment = "C"
	AlignRight  Alignment = "R"
)

// Column describes one table column. Width is relative to the other columns; zero counts as one.
type Column struct {
	Header string
	Width  float64
	Align  Alignment
}

// Dataset is tabular export content shared by every renderer.
type Dataset struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     [][]string
}

// Headers returns the column headers in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	return headers
}

// Validate checks that the dataset has columns and that every row matches them.
func (d Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(d.Columns))
		}
	}
	return nil
}
