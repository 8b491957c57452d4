package station

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var byName map[string]int

func buildNameIndex() {
	byName = make(map[string]int, Count*3)
	for i, s := range stations {
		byName[normalizeName(s.Code)] = i
		byName[normalizeName(s.Name.Local)] = i
		byName[normalizeName(s.Name.Romanized)] = i
	}
}

// normalizeName folds case, composes Hangul and drops separators so that
// "시청 용인대", "CITYHALL·YONGIN UNIV" and "cityhall-yongin univ" agree.
func normalizeName(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '-', '_', '.', '·', '・':
			return -1
		}
		return r
	}, s)
}

// Find resolves a station by code, local name or romanized name.
func Find(query string) (Station, error) {
	i, ok := byName[normalizeName(query)]
	if !ok {
		return Station{}, fmt.Errorf("%w: no station named %q", ErrUnknownStationCode, query)
	}
	return stations[i], nil
}
