package sheet

import "sort"

// Event is a switch between Japanese and non-Japanese text observed at a
// cell, keyed by the cell's row.
type Event struct {
	Row    int
	Source bool
}

// ColumnRows lists the rows of one column whose cells classified as Source.
type ColumnRows struct {
	Column int
	Rows   []int
}

// ColumnEvents lists the alternation events recorded for one column.
type ColumnEvents struct {
	Column int
	Events []Event
}

// Signals is the raw per-column evidence gathered from one sheet. Both slices
// are in ascending column order and each column's rows ascend.
type Signals struct {
	SourceRows   []ColumnRows
	Alternations []ColumnEvents
	// MaxEvents is the length of the longest event list in Alternations.
	MaxEvents int
}

// Collect scans g row-major and records, per column, the rows holding
// Japanese text and the rows where the language switched relative to the
// previous cell of the same row.
func Collect(g *Grid) Signals {
	rows := make(map[int][]int)
	events := make(map[int][]Event)
	var sig Signals

	for r, cells := range g.Rows {
		rowNum := r + 1
		prev := Indeterminate
		for c, value := range cells {
			colNum := c + 1
			class := Classify(value)
			if class == Source {
				rows[colNum] = append(rows[colNum], rowNum)
			}
			if class != Indeterminate && class != prev {
				events[colNum] = append(events[colNum], Event{Row: rowNum, Source: class == Source})
				if n := len(events[colNum]); n > sig.MaxEvents {
					sig.MaxEvents = n
				}
			}
			prev = class
		}
	}

	for _, col := range sortedKeys(rows) {
		sig.SourceRows = append(sig.SourceRows, ColumnRows{Column: col, Rows: rows[col]})
	}
	for _, col := range sortedKeys(events) {
		sig.Alternations = append(sig.Alternations, ColumnEvents{Column: col, Events: events[col]})
	}
	return sig
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
