package terms

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/japaniel/nichiei/pkg/morph"
	"github.com/japaniel/nichiei/pkg/sheet"
)

// DefaultMaxRetries is how many times extraction is retried after the first
// attempt when the tokenizer fails to initialize.
const DefaultMaxRetries = 10

// ErrTokenizerInit wraps tokenizer construction failures, the only failures
// Extract retries. Configuration errors such as morph.ErrCharset are
// returned as is.
var ErrTokenizerInit = errors.New("tokenizer failed to initialize")

// OpenFunc acquires a fresh tokenizer for one extraction attempt.
type OpenFunc func() (morph.Tokenizer, error)

// Extractor builds term indexes from pair sequences.
type Extractor struct {
	Open OpenFunc
	// MaxRetries bounds the retries after a failed initialization. Zero
	// means DefaultMaxRetries; a negative value disables retrying.
	MaxRetries int
	// Logger is used for retry warnings. nil means slog.Default().
	Logger *slog.Logger
}

// NewExtractor returns an Extractor backed by the kagome analyzer.
func NewExtractor(cfg morph.Config) *Extractor {
	return &Extractor{
		Open: func() (morph.Tokenizer, error) { return morph.Open(cfg) },
	}
}

// Extraction is the result of a successful Extract.
type Extraction struct {
	Terms Index
	// Retries is the number of failed initializations absorbed.
	Retries int
	// Skipped counts morphemes whose feature lists could not be parsed.
	Skipped int
}

// Extract tokenizes the source text of every pair and indexes the useful
// terms by pair position. The whole extraction is rerun when the tokenizer
// fails to initialize, up to MaxRetries times.
func (e *Extractor) Extract(pairs []sheet.Pair) (*Extraction, error) {
	budget := e.MaxRetries
	if budget == 0 {
		budget = DefaultMaxRetries
	}
	if budget < 0 {
		budget = 0
	}

	retries := 0
	for {
		res, err := e.extractOnce(pairs)
		if err == nil {
			res.Retries = retries
			return res, nil
		}
		if !errors.Is(err, ErrTokenizerInit) || retries >= budget {
			return nil, err
		}
		retries++
		e.logger().Warn("tokenizer failed to init, retrying",
			slog.Int("remaining", budget-retries+1),
			slog.Any("error", err))
	}
}

func (e *Extractor) extractOnce(pairs []sheet.Pair) (*Extraction, error) {
	tok, err := e.Open()
	if errors.Is(err, morph.ErrCharset) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenizerInit, err)
	}
	defer tok.Close()

	res := &Extraction{Terms: make(Index)}
	for pos, pair := range pairs {
		for _, node := range tok.Tokenize(pair.Source) {
			f, err := morph.ParseFeatures(node.Fields)
			if err != nil {
				res.Skipped++
				continue
			}
			if !IsUseful(f) {
				continue
			}
			key := Key{Root: f.BaseForm, Pronunciation: f.Pronunciation}
			if !key.Valid() {
				res.Skipped++
				continue
			}
			res.Terms.Add(key, pos)
		}
	}
	return res, nil
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
