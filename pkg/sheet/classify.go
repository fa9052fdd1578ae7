package sheet

import (
	"regexp"
	"unicode/utf8"
)

// Class is the language classification of a single cell.
type Class int

const (
	// Indeterminate means the cell is empty.
	Indeterminate Class = iota
	// NotSource means the cell is mostly Latin letters, digits or punctuation.
	NotSource
	// Source means the cell is most likely Japanese.
	Source
)

func (c Class) String() string {
	switch c {
	case Source:
		return "source"
	case NotSource:
		return "not-source"
	default:
		return "indeterminate"
	}
}

var latinRun = regexp.MustCompile(`[A-Za-z0-9,.!?]+`)

// sourceRatio is the share of characters that must survive stripping Latin
// letters, digits and basic punctuation for a cell to count as Japanese.
const sourceRatio = 0.5

// Classify reports whether text is likely Japanese source text. Characters
// are counted as runes, so a cell holding only punctuation or digits is
// NotSource rather than Indeterminate.
func Classify(text string) Class {
	if text == "" {
		return Indeterminate
	}
	total := utf8.RuneCountInString(text)
	rest := utf8.RuneCountInString(latinRun.ReplaceAllString(text, ""))
	if float64(rest)/float64(total) > sourceRatio {
		return Source
	}
	return NotSource
}
