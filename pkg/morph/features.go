package morph

import (
	"errors"
	"fmt"
	"strings"
)

// FeatureCount is the number of fields in an IPA dictionary feature list.
const FeatureCount = 9

// ErrFeatureCount is returned when a feature list does not have FeatureCount
// fields. Unknown words from kagome carry only seven.
var ErrFeatureCount = errors.New("unexpected feature count")

// Features is the IPA feature list of a morpheme:
//
//	0: part of speech        (名詞, 動詞, ...)
//	1-3: part of speech subclasses
//	4: conjugation type      (一段, 五段・ラ行, ...)
//	5: conjugation form      (基本形, 連用形, ...)
//	6: base form             (食べる)
//	7: reading               (タベル)
//	8: pronunciation         (タベル)
type Features struct {
	POS           string
	Subclass1     string
	Subclass2     string
	Subclass3     string
	Inflection    string
	Conjugation   string
	BaseForm      string
	Reading       string
	Pronunciation string
}

// ParseFeatures maps a raw feature list onto Features.
func ParseFeatures(fields []string) (Features, error) {
	if len(fields) != FeatureCount {
		return Features{}, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(fields), FeatureCount)
	}
	return Features{
		POS:           fields[0],
		Subclass1:     fields[1],
		Subclass2:     fields[2],
		Subclass3:     fields[3],
		Inflection:    fields[4],
		Conjugation:   fields[5],
		BaseForm:      fields[6],
		Reading:       fields[7],
		Pronunciation: fields[8],
	}, nil
}

// ParseFeatureString parses the comma-delimited form MeCab prints, e.g.
// "動詞,自立,*,*,一段,基本形,食べる,タベル,タベル".
func ParseFeatureString(s string) (Features, error) {
	return ParseFeatures(strings.Split(s, ","))
}
