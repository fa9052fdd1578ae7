package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

const dictContent = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog", "lang": "eng"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r"]}]
    },
    {
      "id": "3",
      "kanji": [{"text": "猫", "common": true}],
      "kana": [{"text": "ねこ", "common": true}],
      "sense": [
        {"gloss": [{"text": "cat"}, {"text": "feline"}], "partOfSpeech": ["n"]},
        {"gloss": [{"text": "shamisen"}, {"text": "geisha"}], "partOfSpeech": ["n"]}
      ]
    },
    {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    },
    {
      "id": "5",
      "kanji": [{"text": "東京", "common": true}],
      "kana": [{"text": "とうきょう", "common": true}],
      "sense": [{"gloss": [{"text": "Tokyo"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "6",
      "kanji": [{"text": "猫", "common": false}],
      "kana": [{"text": "びょう", "common": false}],
      "sense": [{"gloss": [{"text": "Katze", "lang": "ger"}, {"text": "cat (archaic)"}], "partOfSpeech": ["n"]}]
    }
  ]
}
`

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func loadGlossary(t *testing.T) *Glossary {
	t.Helper()
	entries, err := LoadJMdictSimplified(writeDict(t, dictContent))
	if err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(entries))
	}
	return NewGlossary(entries)
}

func TestLoadJMdictSimplifiedArray(t *testing.T) {
	path := writeDict(t, `[{"id": "9", "kanji": [], "kana": [{"text": "ねこ"}], "sense": []}]`)
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].Id != "9" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoadJMdictSimplifiedErrors(t *testing.T) {
	if _, err := LoadJMdictSimplified(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadJMdictSimplified(writeDict(t, "not json")); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestGlossaryLookup(t *testing.T) {
	g := loadGlossary(t)

	tests := []struct {
		lemma, pron string
		wantIDs     []string
	}{
		{"犬", "イヌ", []string{"1"}},
		{"走る", "ハシル", []string{"2"}},
		{"テスト", "テスト", []string{"4"}},
		{"猫", "ネコ", []string{"3"}},
		{"猫", "ビョウ", []string{"6"}},
		// No reading matches: every entry spelled 猫.
		{"猫", "ニャン", []string{"3", "6"}},
		{"猫", "", []string{"3", "6"}},
		// IPA long vowel pronunciation falls back to the spelling.
		{"東京", "トーキョー", []string{"5"}},
		{"未知", "ミチ", nil},
		{"", "イヌ", nil},
	}
	for _, tt := range tests {
		got := g.Lookup(tt.lemma, tt.pron)
		var ids []string
		for _, e := range got {
			ids = append(ids, e.Id)
		}
		if len(ids) != len(tt.wantIDs) {
			t.Errorf("Lookup(%q, %q) = %v; want %v", tt.lemma, tt.pron, ids, tt.wantIDs)
			continue
		}
		for i := range ids {
			if ids[i] != tt.wantIDs[i] {
				t.Errorf("Lookup(%q, %q) = %v; want %v", tt.lemma, tt.pron, ids, tt.wantIDs)
				break
			}
		}
	}
}

func TestGlossaryGloss(t *testing.T) {
	g := loadGlossary(t)
	tests := []struct {
		lemma, pron, want string
	}{
		{"犬", "イヌ", "dog"},
		{"猫", "ネコ", "cat; feline; shamisen"},
		{"猫", "ビョウ", "cat (archaic)"},
		{"未知", "ミチ", ""},
	}
	for _, tt := range tests {
		if got := g.Gloss(tt.lemma, tt.pron); got != tt.want {
			t.Errorf("Gloss(%q, %q) = %q; want %q", tt.lemma, tt.pron, got, tt.want)
		}
	}
}

func TestGlossaryReading(t *testing.T) {
	g := loadGlossary(t)
	if got := g.Reading("東京", "トーキョー"); got != "とうきょう" {
		t.Errorf("Reading(東京) = %q; want とうきょう", got)
	}
	if got := g.Reading("未知", "ミチ"); got != "みち" {
		t.Errorf("Reading(未知) = %q; want みち", got)
	}
	if g.Len() == 0 {
		t.Errorf("expected indexed spellings")
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"イ", "い"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestGlossaryEmpty(t *testing.T) {
	g := NewGlossary(nil)
	if g.Len() != 0 {
		t.Fatalf("expected empty index, got %d", g.Len())
	}
	if got := g.Lookup("猫", "ネコ"); got != nil {
		t.Fatalf("expected no entries, got %v", got)
	}
	if got := g.Gloss("猫", "ネコ"); got != "" {
		t.Fatalf("expected no gloss, got %q", got)
	}
	if got := g.Reading("猫", "ネコ"); got != "ねこ" {
		t.Fatalf("expected converted pronunciation, got %q", got)
	}
}
