package terms

// Match holds the pair positions of one shared term in each document.
type Match struct {
	Untranslated []int
	Translated   []int
}

// First returns the earliest recorded position on each side.
func (m Match) First() (untranslated, translated int) {
	return m.Untranslated[0], m.Translated[0]
}

// Matches maps every shared term to its occurrences.
type Matches map[Key]Match

// Keys returns the matched terms ordered by root form, then pronunciation.
func (m Matches) Keys() []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Correlate finds the terms present in both indexes. Keys must be equal on
// both root form and pronunciation.
func Correlate(untranslated, translated Index) Matches {
	out := make(Matches)
	for k, a := range untranslated {
		b, ok := translated[k]
		if !ok || len(a) == 0 || len(b) == 0 {
			continue
		}
		out[k] = Match{Untranslated: a, Translated: b}
	}
	return out
}
