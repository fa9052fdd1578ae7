// Package cache persists document analyses next to the spreadsheet they were
// computed from, so a document is only tokenized once.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
	"github.com/samber/mo"
)

// ErrMalformed is returned by Load when a cache file exists but cannot be
// trusted.
var ErrMalformed = errors.New("malformed analysis cache")

// Entry is the cached part of a document analysis.
type Entry struct {
	Pairs []sheet.Pair
	Terms terms.Index
}

// file is the on-disk shape: pairs as two-element arrays, terms keyed by
// their bracketed composite.
type file struct {
	Pairs [][2]string      `json:"pairs"`
	Terms map[string][]int `json:"terms"`
}

// PathFor returns the cache location for doc: the same path with the
// extension replaced by .json.
func PathFor(doc string) string {
	return strings.TrimSuffix(doc, filepath.Ext(doc)) + ".json"
}

// Load reads the cache for doc. A missing cache file is not an error and
// yields mo.None.
func Load(doc string) (mo.Option[Entry], error) {
	path := PathFor(doc)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return mo.None[Entry](), nil
	}
	if err != nil {
		return mo.None[Entry](), fmt.Errorf("read cache %s: %w", path, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return mo.None[Entry](), fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}

	e := Entry{
		Pairs: make([]sheet.Pair, 0, len(f.Pairs)),
		Terms: make(terms.Index, len(f.Terms)),
	}
	for _, p := range f.Pairs {
		e.Pairs = append(e.Pairs, sheet.Pair{Source: p[0], Translation: p[1]})
	}
	for s, positions := range f.Terms {
		k, err := terms.ParseKey(s)
		if err != nil {
			return mo.None[Entry](), fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
		}
		for _, pos := range positions {
			if pos < 0 || pos >= len(e.Pairs) {
				return mo.None[Entry](), fmt.Errorf("%w: %s: term %s points at pair %d of %d",
					ErrMalformed, path, s, pos, len(e.Pairs))
			}
		}
		e.Terms[k] = positions
	}
	return mo.Some(e), nil
}

// Save writes e as the cache for doc, replacing any previous cache
// atomically.
func Save(doc string, e Entry) error {
	f := file{
		Pairs: make([][2]string, 0, len(e.Pairs)),
		Terms: make(map[string][]int, len(e.Terms)),
	}
	for _, p := range e.Pairs {
		f.Pairs = append(f.Pairs, [2]string{p.Source, p.Translation})
	}
	for k, positions := range e.Terms {
		if !k.Valid() {
			return fmt.Errorf("save cache: key %s cannot be encoded", k)
		}
		f.Terms[k.String()] = positions
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return writeAtomic(PathFor(doc), buf.Bytes())
}

func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".nichiei-*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp cache: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace cache %s: %w", dest, err)
	}
	return nil
}
