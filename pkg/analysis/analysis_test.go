package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/nichiei/pkg/cache"
	"github.com/japaniel/nichiei/pkg/morph"
	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	jaLines = []string{"猫が庭にいる。", "今日は晴れです。", "毎朝パンを食べる。", "駅まで歩いた。", "本を読みましょう。"}
	enLines = []string{"A cat is in the garden.", "It is sunny today.", "I eat bread every morning.", "I walked to the station.", "Let us read a book."}
)

// countingExtractor indexes every pair under its own source text.
type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Extract(pairs []sheet.Pair) (*terms.Extraction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	ix := make(terms.Index)
	for i, p := range pairs {
		ix.Add(terms.Key{Root: p.Source, Pronunciation: "x"}, i)
	}
	return &terms.Extraction{Terms: ix}, nil
}

type fakeRecorder struct {
	paths []string
	err   error
}

func (r *fakeRecorder) Record(_ context.Context, path string, _ bool, _ []sheet.Pair, _ terms.Index) (string, error) {
	r.paths = append(r.paths, path)
	return "rev-1", r.err
}

// scriptColumns lays lines out as an untranslated script: the body in the
// first column and a single Japanese note two rows below it in the second.
func scriptColumns(lines []string) [][]string {
	notes := make([]string, len(lines)+2)
	notes[len(notes)-1] = "確認済み"
	return [][]string{lines, notes}
}

// writeWorkbook saves sheets of column-major cell values to dir/name.
func writeWorkbook(t *testing.T, dir, name string, sheets map[string][][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f := excelize.NewFile()
	for sheetName, cols := range sheets {
		if sheetName != "Sheet1" {
			_, err := f.NewSheet(sheetName)
			require.NoError(t, err)
		}
		for c, col := range cols {
			for r, v := range col {
				require.NoError(t, f.SetCellValue(sheetName, sheet.CellName(c+1, r+1), v))
			}
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestAnalyzeTranslatedRecordsBadSheets(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "translated.xlsx", map[string][][]string{
		"Sheet1": {jaLines, enLines},
		"Broken": {jaLines, enLines, jaLines},
	})
	ex := &countingExtractor{}
	a := NewAnalyzer(ex)
	var progress []int
	a.OnProgress = func(done, total int) {
		assert.Equal(t, 2, total)
		progress = append(progress, done)
	}

	doc, err := a.Analyze(context.Background(), path, true)
	require.NoError(t, err)

	assert.False(t, doc.FromCache)
	assert.Equal(t, []int{1, 2}, progress)
	require.Len(t, doc.Pairs, 5)
	assert.Equal(t, sheet.Pair{Source: jaLines[2], Translation: enLines[2]}, doc.Pairs[2])
	assert.Len(t, doc.Terms, 5)

	require.Len(t, doc.Problems, 1)
	var serr *sheet.SheetError
	require.True(t, errors.As(doc.Problems[0], &serr))
	assert.Equal(t, "Broken", serr.Sheet)
	assert.Equal(t, path, serr.Path)
	assert.ErrorIs(t, serr, sheet.ErrColumnCount)

	_, err = os.Stat(cache.PathFor(path))
	assert.NoError(t, err)
}

func TestAnalyzeCacheHitSkipsExtraction(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "translated.xlsx", map[string][][]string{"Sheet1": {jaLines, enLines}})

	first, err := NewAnalyzer(&countingExtractor{}).Analyze(context.Background(), path, true)
	require.NoError(t, err)

	ex := &countingExtractor{}
	second, err := NewAnalyzer(ex).Analyze(context.Background(), path, true)
	require.NoError(t, err)

	assert.Zero(t, ex.calls)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Pairs, second.Pairs)
	assert.Equal(t, first.Terms, second.Terms)
}

func TestAnalyzeCacheHitWithoutWorkbook(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "gone.xlsx")
	require.NoError(t, cache.Save(doc, cache.Entry{
		Pairs: []sheet.Pair{{Source: "猫"}},
		Terms: terms.Index{{Root: "猫", Pronunciation: "ネコ"}: {0}},
	}))

	ex := &countingExtractor{}
	got, err := NewAnalyzer(ex).Analyze(context.Background(), doc, false)
	require.NoError(t, err)
	assert.True(t, got.FromCache)
	assert.Zero(t, ex.calls)
}

func TestAnalyzeDiscardsMalformedCache(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "translated.xlsx", map[string][][]string{"Sheet1": {jaLines, enLines}})
	require.NoError(t, os.WriteFile(cache.PathFor(path), []byte(`{"pairs": [], "terms": {"[a][b]": [3]}}`), 0o644))

	ex := &countingExtractor{}
	doc, err := NewAnalyzer(ex).Analyze(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, ex.calls)
	assert.False(t, doc.FromCache)

	reloaded, err := cache.Load(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.MustGet().Pairs, 5)
}

func TestAnalyzeWithoutCache(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "source.xlsx", map[string][][]string{"Sheet1": scriptColumns(jaLines)})

	a := NewAnalyzer(&countingExtractor{})
	a.UseCache = false
	doc, err := a.Analyze(context.Background(), path, false)
	require.NoError(t, err)

	require.Len(t, doc.Pairs, len(jaLines))
	for i, p := range doc.Pairs {
		assert.Equal(t, jaLines[i], p.Source)
		assert.Empty(t, p.Translation)
	}
	_, err = os.Stat(cache.PathFor(path))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "source.xlsx", map[string][][]string{"Sheet1": scriptColumns(jaLines)})

	_, err := NewAnalyzer(&countingExtractor{err: terms.ErrTokenizerInit}).Analyze(context.Background(), path, false)
	assert.ErrorIs(t, err, terms.ErrTokenizerInit)
	_, statErr := os.Stat(cache.PathFor(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAnalyzeMissingWorkbook(t *testing.T) {
	_, err := NewAnalyzer(&countingExtractor{}).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"), true)
	assert.Error(t, err)
}

func TestAnalyzeRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "source.xlsx", map[string][][]string{"Sheet1": scriptColumns(jaLines)})

	rec := &fakeRecorder{}
	a := NewAnalyzer(&countingExtractor{})
	a.Recorder = rec
	doc, err := a.Analyze(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, "rev-1", doc.Revision)
	assert.Equal(t, []string{path}, rec.paths)

	rec.err = errors.New("disk full")
	_, err = a.Analyze(context.Background(), path, false)
	assert.ErrorContains(t, err, "disk full")
}

func TestDocumentValidate(t *testing.T) {
	d := &Document{
		Pairs: []sheet.Pair{{Source: "猫"}},
		Terms: terms.Index{{Root: "猫", Pronunciation: "ネコ"}: {0}},
	}
	assert.NoError(t, d.Validate())

	d.Terms[terms.Key{Root: "犬", Pronunciation: "イヌ"}] = []int{1}
	assert.ErrorIs(t, d.Validate(), ErrInvalid)
}

func TestAnalyzeAndCorrelateWithKagome(t *testing.T) {
	dir := t.TempDir()
	translated := writeWorkbook(t, dir, "translated.xlsx", map[string][][]string{"Sheet1": {jaLines, enLines}})
	untranslated := writeWorkbook(t, dir, "untranslated.xlsx", map[string][][]string{
		"Sheet1": scriptColumns([]string{"弟はりんごを食べる。", "雨が降っている。", "猫が好きです。"}),
	})

	a := NewAnalyzer(terms.NewExtractor(morph.Config{Charset: morph.DefaultCharset}))
	u, err := a.Analyze(context.Background(), untranslated, false)
	require.NoError(t, err)
	tr, err := a.Analyze(context.Background(), translated, true)
	require.NoError(t, err)

	m := terms.Correlate(u.Terms, tr.Terms)
	eat := terms.Key{Root: "食べる", Pronunciation: "タベル"}
	require.Contains(t, m, eat)
	ui, ti := m[eat].First()
	assert.Equal(t, "弟はりんごを食べる。", u.Pairs[ui].Source)
	assert.Equal(t, "I eat bread every morning.", tr.Pairs[ti].Translation)

	cat := terms.Key{Root: "猫", Pronunciation: "ネコ"}
	require.Contains(t, m, cat)
	_, ti = m[cat].First()
	assert.Equal(t, "A cat is in the garden.", tr.Pairs[ti].Translation)
}
