package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/data/script.json", PathFor("/data/script.xlsx"))
	assert.Equal(t, "ep01.v2.json", PathFor("ep01.v2.xlsx"))
	assert.Equal(t, "noext.json", PathFor("noext"))
}

func TestLoadMissingIsNone(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "script.xlsx")
	cat := terms.Key{Root: "猫", Pronunciation: "ネコ"}
	eat := terms.Key{Root: "食べる", Pronunciation: "タベル"}
	in := Entry{
		Pairs: []sheet.Pair{
			{Source: "猫が食べる", Translation: "The cat eats"},
			{Source: "猫だ", Translation: ""},
		},
		Terms: terms.Index{cat: {0, 1}, eat: {0}},
	}
	require.NoError(t, Save(doc, in))

	got, err := Load(doc)
	require.NoError(t, err)
	out, ok := got.Get()
	require.True(t, ok)

	assert.Equal(t, in.Pairs, out.Pairs)
	require.Len(t, out.Terms, len(in.Terms))
	for k, positions := range in.Terms {
		assert.ElementsMatch(t, positions, out.Terms[k], k.String())
	}
}

func TestSaveFormat(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "script.xlsx")
	require.NoError(t, Save(doc, Entry{
		Pairs: []sheet.Pair{{Source: "猫", Translation: "<cat>"}},
		Terms: terms.Index{{Root: "猫", Pronunciation: "ネコ"}: {0}},
	}))

	data, err := os.ReadFile(PathFor(doc))
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"[猫][ネコ]"`)
	assert.Contains(t, s, `"<cat>"`)
	assert.Contains(t, s, "\n    \"pairs\"")

	entries, err := os.ReadDir(filepath.Dir(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSaveReplacesExisting(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "script.xlsx")
	require.NoError(t, Save(doc, Entry{Pairs: []sheet.Pair{{Source: "一"}, {Source: "二"}}}))
	require.NoError(t, Save(doc, Entry{Pairs: []sheet.Pair{{Source: "三"}}}))

	got, err := Load(doc)
	require.NoError(t, err)
	assert.Equal(t, []sheet.Pair{{Source: "三"}}, got.MustGet().Pairs)
}

func TestSaveRejectsBracketedKeys(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "script.xlsx")
	err := Save(doc, Entry{
		Pairs: []sheet.Pair{{Source: "x"}},
		Terms: terms.Index{{Root: "[x]", Pronunciation: "y"}: {0}},
	})
	assert.Error(t, err)
	_, statErr := os.Stat(PathFor(doc))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keyErr  bool
	}{
		{"not json", "{pairs", false},
		{"bad key", `{"pairs": [["猫", ""]], "terms": {"猫ネコ": [0]}}`, true},
		{"ambiguous key", `{"pairs": [["猫", ""]], "terms": {"[猫]][ネコ]": [0]}}`, true},
		{"index past end", `{"pairs": [["猫", ""]], "terms": {"[猫][ネコ]": [1]}}`, false},
		{"negative index", `{"pairs": [["猫", ""]], "terms": {"[猫][ネコ]": [-1]}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := filepath.Join(t.TempDir(), "script.xlsx")
			require.NoError(t, os.WriteFile(PathFor(doc), []byte(tt.content), 0o644))

			got, err := Load(doc)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.True(t, got.IsAbsent())
			if tt.keyErr {
				assert.ErrorIs(t, err, terms.ErrMalformedKey)
			}
		})
	}
}

func TestLoadEmptyTerms(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "script.xlsx")
	require.NoError(t, os.WriteFile(PathFor(doc), []byte(`{"pairs": [], "terms": {}}`), 0o644))

	got, err := Load(doc)
	require.NoError(t, err)
	e := got.MustGet()
	assert.Empty(t, e.Pairs)
	assert.Empty(t, e.Terms)
}
