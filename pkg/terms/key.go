package terms

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrMalformedKey is returned by ParseKey for strings that are not of the
// form "[root][pronunciation]".
var ErrMalformedKey = errors.New("malformed term key")

// Key identifies a term by dictionary form and pronunciation, so inflected
// surfaces of the same word share a key.
type Key struct {
	Root          string
	Pronunciation string
}

// String renders the bracketed composite used in cache files.
func (k Key) String() string {
	return "[" + k.Root + "][" + k.Pronunciation + "]"
}

// Valid reports whether k can round-trip through String and ParseKey.
func (k Key) Valid() bool {
	return !strings.ContainsAny(k.Root, "[]") && !strings.ContainsAny(k.Pronunciation, "[]")
}

var keyPattern = regexp.MustCompile(`^\[([^\[\]]*)\]\[([^\[\]]*)\]$`)

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return Key{Root: m[1], Pronunciation: m[2]}, nil
}

// Index maps each term to the positions of the pairs it was seen in. A term
// seen twice in one pair lists that position twice.
type Index map[Key][]int

// Add records that k occurs in the pair at pos.
func (ix Index) Add(k Key, pos int) {
	ix[k] = append(ix[k], pos)
}

// Keys returns the index keys ordered by root form, then pronunciation.
func (ix Index) Keys() []Key {
	keys := make([]Key, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Root != keys[j].Root {
			return keys[i].Root < keys[j].Root
		}
		return keys[i].Pronunciation < keys[j].Pronunciation
	})
}
