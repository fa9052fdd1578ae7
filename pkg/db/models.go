package db

import (
	"time"

	"github.com/japaniel/nichiei/pkg/terms"
)

// Document is a recorded document analysis.
type Document struct {
	ID         int64
	Path       string
	Translated bool
	Revision   string
	AnalyzedAt time.Time
}

// SharedTerm is a term found in two recorded documents, with the first pair
// it appears in on each side.
type SharedTerm struct {
	Key                  terms.Key
	UntranslatedPosition int
	TranslatedPosition   int
	UntranslatedSource   string
	TranslatedSource     string
	Translation          string
}
