package terms

import (
	"strings"
	"unicode/utf8"

	"github.com/japaniel/nichiei/pkg/morph"
)

// IPA part-of-speech labels consulted by IsUseful.
const (
	posNoun      = "名詞"
	posAdverb    = "副詞"
	posAuxVerb   = "助動詞"
	posVerb      = "動詞"
	subDependent = "非自立"
	subSuffix    = "接尾"
)

// verbInflections are the regular conjugation classes worth indexing.
var verbInflections = []string{"一段", "五段"}

// IsUseful reports whether a morpheme is worth a term entry. Nouns always
// are; short adverbs and auxiliaries, irregular or suffix verbs, particles
// and symbols are not.
func IsUseful(f morph.Features) bool {
	if strings.Contains(f.Subclass1, subDependent) {
		return false
	}
	switch {
	case strings.Contains(f.POS, posNoun):
		return true
	// 助動詞 contains 動詞, so it has to be checked before verbs.
	case strings.Contains(f.POS, posAdverb), strings.Contains(f.POS, posAuxVerb):
		return utf8.RuneCountInString(f.Pronunciation) > 2
	case strings.Contains(f.POS, posVerb):
		return containsAny(f.Inflection, verbInflections) && !strings.Contains(f.Subclass1, subSuffix)
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
