package morph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// DefaultCharset is the only character encoding the kagome dictionaries use.
const DefaultCharset = "UTF-8"

// ErrCharset is returned when the configured character encoding is not UTF-8.
var ErrCharset = errors.New("unsupported tokenizer charset")

// Config controls tokenizer construction.
type Config struct {
	// Charset must name UTF-8; an empty value means DefaultCharset.
	Charset string
}

// Node is one morpheme as produced by the tokenizer, before its features are
// interpreted.
type Node struct {
	Surface string
	// Fields is the raw IPA feature list (see Features).
	Fields []string
}

// Tokenizer splits text into morphemes. It is a scoped resource: callers
// acquire one per unit of work and Close it when done.
type Tokenizer interface {
	Tokenize(text string) []Node
	Close() error
}

// Analyzer is the kagome-backed Tokenizer using the IPA dictionary.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a new tokenizer instance.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	charset := cfg.Charset
	if charset == "" {
		charset = DefaultCharset
	}
	if !isUTF8(charset) {
		return nil, fmt.Errorf("%w: %q", ErrCharset, cfg.Charset)
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Open is NewAnalyzer returning the Tokenizer interface.
func Open(cfg Config) (Tokenizer, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Tokenize breaks text into morphemes. Sentence markers and whitespace-only
// tokens are dropped.
func (a *Analyzer) Tokenize(text string) []Node {
	tokens := a.t.Tokenize(text)
	var result []Node

	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		result = append(result, Node{
			Surface: token.Surface,
			Fields:  token.Features(),
		})
	}
	return result
}

// Close releases the dictionary reference. The Analyzer must not be used
// afterwards.
func (a *Analyzer) Close() error {
	a.t = nil
	return nil
}

func isUTF8(charset string) bool {
	return strings.EqualFold(strings.ReplaceAll(charset, "-", ""), "UTF8")
}
