package sheet

import "sort"

// headerShare is the fraction of candidate columns a row must appear in to be
// treated as a header or label row.
const headerShare = 0.5

// ColumnScore is the consecutive-density score of one candidate column.
type ColumnScore struct {
	Column int
	Score  int
}

// SourceResult describes the outcome of DetectSource on one sheet.
type SourceResult struct {
	// Scores holds every candidate column, best first.
	Scores []ColumnScore
	// Column is the winning column, 0 when the sheet had no Japanese text.
	Column int
	// Accepted is false when the winner failed the confidence check; Pairs
	// is then empty.
	Accepted bool
	Pairs    []Pair
}

// DetectSource finds the single column of g most likely to hold the Japanese
// body text of an untranslated document and returns one Pair per row of that
// column, with empty translations. A low-confidence winner yields no pairs.
func DetectSource(g *Grid) SourceResult {
	cols := suppressHeaders(Collect(g).SourceRows)
	if len(cols) == 0 {
		return SourceResult{}
	}

	scores := make([]ColumnScore, 0, len(cols))
	rowsByCol := make(map[int][]int, len(cols))
	for _, c := range cols {
		scores = append(scores, ColumnScore{Column: c.Column, Score: ConsecutiveDensity(c.Rows)})
		rowsByCol[c.Column] = c.Rows
	}

	winner, ok := SelectColumn(scores)
	res := SourceResult{Scores: scores, Column: winner.Column, Accepted: ok}
	if !ok {
		return res
	}
	for _, row := range rowsByCol[winner.Column] {
		res.Pairs = append(res.Pairs, Pair{Source: g.Cell(row, winner.Column)})
	}
	return res
}

// SelectColumn sorts scores in place (score descending, lower column first
// on ties) and returns the winner. With three or more candidates the winner
// is only accepted when its score strictly exceeds the sum of the second and
// third.
func SelectColumn(scores []ColumnScore) (ColumnScore, bool) {
	if len(scores) == 0 {
		return ColumnScore{}, false
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Column < scores[j].Column
	})
	if len(scores) >= 3 {
		return scores[0], scores[0].Score > scores[1].Score+scores[2].Score
	}
	return scores[0], true
}

// ConsecutiveDensity counts the rows that directly follow their predecessor
// in the sorted row list, e.g. [1 2 3 5 6] scores 3.
func ConsecutiveDensity(rows []int) int {
	sorted := append([]int(nil), rows...)
	sort.Ints(sorted)
	total := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] == 1 {
			total++
		}
	}
	return total
}

// suppressHeaders removes rows that hold Japanese text in more than half of
// the candidate columns. A lone candidate column therefore loses every row.
// Columns left without rows stay as candidates.
func suppressHeaders(cols []ColumnRows) []ColumnRows {
	counts := make(map[int]int)
	for _, c := range cols {
		for _, row := range c.Rows {
			counts[row]++
		}
	}
	limit := float64(len(cols)) * headerShare

	out := make([]ColumnRows, 0, len(cols))
	for _, c := range cols {
		kept := make([]int, 0, len(c.Rows))
		for _, row := range c.Rows {
			if float64(counts[row]) > limit {
				continue
			}
			kept = append(kept, row)
		}
		out = append(out, ColumnRows{Column: c.Column, Rows: kept})
	}
	return out
}
