package dictionary

import (
	"sort"
	"strings"
)

// maxGlosses bounds the glosses Gloss joins for one term.
const maxGlosses = 3

// Glossary answers English gloss lookups for extracted terms. It is
// read-only after NewGlossary.
type Glossary struct {
	// index maps every kanji and kana spelling to the entries that use it.
	index map[string][]JMdictEntry
}

// NewGlossary builds an in-memory index of the provided dictionary.
func NewGlossary(entries []JMdictEntry) *Glossary {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	return &Glossary{index: idx}
}

// Len reports the number of indexed spellings.
func (g *Glossary) Len() int {
	return len(g.index)
}

// Lookup finds the entries spelled lemma. Entries whose kana match the
// katakana pronunciation are preferred; when none do, every entry with the
// spelling is returned, since IPA pronunciations write long vowels with ー
// where JMdict spells them out. Results are ordered by entry id.
func (g *Glossary) Lookup(lemma, pronunciation string) []JMdictEntry {
	if lemma == "" {
		return nil
	}
	candidates := g.index[lemma]

	seen := make(map[string]bool, len(candidates))
	var spelled, read []JMdictEntry
	for _, e := range candidates {
		if seen[e.Id] {
			continue
		}
		seen[e.Id] = true
		spelled = append(spelled, e)
		if pronunciation != "" && hasReading(e, pronunciation) {
			read = append(read, e)
		}
	}

	results := spelled
	if len(read) > 0 {
		results = read
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})
	return results
}

// Gloss returns the first English glosses of the best entry for a term, or
// "" when the term is not in the dictionary.
func (g *Glossary) Gloss(lemma, pronunciation string) string {
	matches := g.Lookup(lemma, pronunciation)
	if len(matches) == 0 {
		return ""
	}
	var glosses []string
	for _, s := range matches[0].Sense {
		for _, gl := range s.Gloss {
			if gl.Lang != "" && gl.Lang != "eng" {
				continue
			}
			glosses = append(glosses, gl.Text)
			if len(glosses) == maxGlosses {
				return strings.Join(glosses, "; ")
			}
		}
	}
	return strings.Join(glosses, "; ")
}

// Reading returns the hiragana reading of a term: the dictionary's common
// kana when the term is known, the converted pronunciation otherwise.
func (g *Glossary) Reading(lemma, pronunciation string) string {
	matches := g.Lookup(lemma, pronunciation)
	if len(matches) > 0 && len(matches[0].Kana) > 0 {
		for _, k := range matches[0].Kana {
			if k.Common {
				return ToHiragana(k.Text)
			}
		}
		return ToHiragana(matches[0].Kana[0].Text)
	}
	return ToHiragana(pronunciation)
}

func hasReading(entry JMdictEntry, pronunciation string) bool {
	normalizedPron := ToHiragana(pronunciation)
	for _, k := range entry.Kana {
		if ToHiragana(k.Text) == normalizedPron {
			return true
		}
	}
	return false
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
