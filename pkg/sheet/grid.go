package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Pair is one aligned unit of a document: the Japanese source text and its
// translation. Translation is empty for documents that have not been
// translated yet.
type Pair struct {
	Source      string
	Translation string
}

// Grid is a single worksheet held as rows of cell text, row 1 first.
// Rows may be ragged; missing cells read as empty.
type Grid struct {
	Name string
	Rows [][]string
}

// Cell returns the value at the 1-indexed (row, col) coordinate, or "" when
// the coordinate lies outside the populated area.
func (g *Grid) Cell(row, col int) string {
	if row < 1 || row > len(g.Rows) {
		return ""
	}
	r := g.Rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Workbook is the read-only view of a spreadsheet file.
type Workbook struct {
	Path   string
	Sheets []Grid
}

// Open reads every worksheet of the workbook at path, in workbook order.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q of %s: %w", name, path, err)
		}
		wb.Sheets = append(wb.Sheets, Grid{Name: name, Rows: rows})
	}
	return wb, nil
}
