package sheet

import (
	"errors"
	"fmt"
)

// sparseShare drops columns with fewer events than this share of the busiest
// column, which filters out comment and note columns.
const sparseShare = 0.5

var (
	// ErrColumnCount is returned when a sheet does not have exactly two
	// alternating text columns.
	ErrColumnCount = errors.New("expected exactly two alternating columns")
	// ErrLanguageVote is returned when the left column is not mostly
	// Japanese or the right column is not mostly translation.
	ErrLanguageVote = errors.New("alternating columns are not source then translation")
)

// PairedResult describes the columns DetectPairs settled on.
type PairedResult struct {
	SourceColumn      int
	TranslationColumn int
	Pairs             []Pair
}

// DetectPairs finds the source and translation columns of a translated sheet
// and aligns them row by row.
func DetectPairs(g *Grid) (PairedResult, error) {
	sig := Collect(g)

	var kept []ColumnEvents
	for _, c := range sig.Alternations {
		if float64(len(c.Events)) < float64(sig.MaxEvents)*sparseShare {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) != 2 {
		cols := make([]string, 0, len(kept))
		for _, c := range kept {
			cols = append(cols, mustColumnName(c.Column))
		}
		return PairedResult{}, fmt.Errorf("%w: found %d %v", ErrColumnCount, len(kept), cols)
	}

	// Alternations ascend by column, so kept[0] is the left column.
	a, b := kept[0], kept[1]
	aSource := sourceVotes(a.Events)*2 > len(a.Events)
	bTranslation := (len(b.Events)-sourceVotes(b.Events))*2 > len(b.Events)
	if !aSource || !bTranslation {
		return PairedResult{}, fmt.Errorf("%w: columns %s and %s",
			ErrLanguageVote, mustColumnName(a.Column), mustColumnName(b.Column))
	}

	res := PairedResult{SourceColumn: a.Column, TranslationColumn: b.Column}
	for _, ev := range a.Events {
		res.Pairs = append(res.Pairs, Pair{
			Source:      g.Cell(ev.Row, a.Column),
			Translation: g.Cell(ev.Row, b.Column),
		})
	}
	return res, nil
}

func sourceVotes(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Source {
			n++
		}
	}
	return n
}

func mustColumnName(n int) string {
	name, err := ColumnName(n)
	if err != nil {
		return fmt.Sprint(n)
	}
	return name
}
