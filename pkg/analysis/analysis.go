// Package analysis turns a spreadsheet into a document analysis: the aligned
// sentence pairs and the term index of their Japanese side. Results are
// loaded from the analysis cache when present.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/japaniel/nichiei/pkg/cache"
	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
)

// ErrInvalid is returned by Document.Validate.
var ErrInvalid = errors.New("invalid document analysis")

// Document is the analysis of one spreadsheet. It is not modified after
// Analyze returns it.
type Document struct {
	Path       string
	Translated bool
	Pairs      []sheet.Pair
	Terms      terms.Index
	// FromCache is set when the analysis was read back from the cache file.
	FromCache bool
	// Problems lists sheets that were skipped, each as a *sheet.SheetError.
	Problems []error
	// Revision identifies the glossary record of this analysis, if any.
	Revision string
}

// Validate checks that every term position refers to a pair.
func (d *Document) Validate() error {
	for k, positions := range d.Terms {
		for _, pos := range positions {
			if pos < 0 || pos >= len(d.Pairs) {
				return fmt.Errorf("%w: %s: term %s at pair %d of %d", ErrInvalid, d.Path, k, pos, len(d.Pairs))
			}
		}
	}
	return nil
}

// Extractor builds a term index from pairs. *terms.Extractor implements it.
type Extractor interface {
	Extract(pairs []sheet.Pair) (*terms.Extraction, error)
}

// Recorder persists finished analyses. *db.Recorder implements it.
type Recorder interface {
	Record(ctx context.Context, path string, translated bool, pairs []sheet.Pair, ix terms.Index) (string, error)
}

// Analyzer produces document analyses.
type Analyzer struct {
	Extractor Extractor
	// UseCache enables reading and writing the per-document cache file.
	UseCache bool
	// Recorder, when set, receives every analysis.
	Recorder Recorder
	// Logger is used for per-sheet diagnostics. nil means slog.Default().
	Logger *slog.Logger
	// OnProgress is called after each sheet with the number of sheets done
	// and the total.
	OnProgress func(done, total int)
}

// NewAnalyzer creates an Analyzer with caching enabled.
func NewAnalyzer(ex Extractor) *Analyzer {
	return &Analyzer{Extractor: ex, UseCache: true}
}

// Analyze returns the analysis of the workbook at path. translated selects
// the paired-column detector; otherwise only a source column is looked for.
// A cached analysis is returned as is, without reopening the workbook.
func (a *Analyzer) Analyze(ctx context.Context, path string, translated bool) (*Document, error) {
	log := a.logger().With(slog.String("path", path))

	doc, err := a.loadCached(log, path, translated)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc, err = a.compute(log, path, translated)
		if err != nil {
			return nil, err
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if a.Recorder != nil {
		rev, err := a.Recorder.Record(ctx, doc.Path, doc.Translated, doc.Pairs, doc.Terms)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", path, err)
		}
		doc.Revision = rev
		log.Debug("analysis recorded", slog.String("revision", rev))
	}
	return doc, nil
}

func (a *Analyzer) loadCached(log *slog.Logger, path string, translated bool) (*Document, error) {
	if !a.UseCache {
		return nil, nil
	}
	opt, err := cache.Load(path)
	if errors.Is(err, cache.ErrMalformed) {
		log.Warn("discarding malformed cache", slog.Any("error", err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry, ok := opt.Get()
	if !ok {
		return nil, nil
	}
	log.Debug("analysis loaded from cache",
		slog.Int("pairs", len(entry.Pairs)),
		slog.Int("terms", len(entry.Terms)))
	return &Document{
		Path:       path,
		Translated: translated,
		Pairs:      entry.Pairs,
		Terms:      entry.Terms,
		FromCache:  true,
	}, nil
}

func (a *Analyzer) compute(log *slog.Logger, path string, translated bool) (*Document, error) {
	if a.Extractor == nil {
		return nil, errors.New("analysis: no extractor configured")
	}
	wb, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Translated: translated}
	for i := range wb.Sheets {
		g := &wb.Sheets[i]
		sheetLog := log.With(slog.String("sheet", g.Name))
		if translated {
			res, err := sheet.DetectPairs(g)
			if err != nil {
				serr := &sheet.SheetError{Path: path, Sheet: g.Name, Err: err}
				doc.Problems = append(doc.Problems, serr)
				sheetLog.Warn("skipping sheet", "error", err)
			} else {
				doc.Pairs = append(doc.Pairs, res.Pairs...)
				sheetLog.Debug("paired columns detected",
					"source", res.SourceColumn,
					"translation", res.TranslationColumn,
					"pairs", len(res.Pairs))
			}
		} else {
			res := sheet.DetectSource(g)
			if res.Accepted {
				doc.Pairs = append(doc.Pairs, res.Pairs...)
				sheetLog.Debug("source column detected", "column", res.Column, "pairs", len(res.Pairs))
			} else {
				sheetLog.Debug("no confident source column", "candidates", len(res.Scores))
			}
		}
		if a.OnProgress != nil {
			a.OnProgress(i+1, len(wb.Sheets))
		}
	}

	ext, err := a.Extractor.Extract(doc.Pairs)
	if err != nil {
		return nil, fmt.Errorf("extract terms from %s: %w", path, err)
	}
	doc.Terms = ext.Terms
	log.Info("document analyzed",
		slog.Int("pairs", len(doc.Pairs)),
		slog.Int("terms", len(doc.Terms)),
		slog.Int("retries", ext.Retries),
		slog.Int("skipped", ext.Skipped),
		slog.Int("problems", len(doc.Problems)))

	if a.UseCache {
		if err := cache.Save(path, cache.Entry{Pairs: doc.Pairs, Terms: doc.Terms}); err != nil {
			log.Warn("failed to write cache", slog.Any("error", err))
		}
	}
	return doc, nil
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
