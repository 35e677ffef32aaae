package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader folds a header for alias lookup: case-folded, diacritics
// removed, whitespace collapsed. "Etkinlik  Adı" and "etkinlik adi" match.
func NormalizeHeader(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r == 'ı' {
				return 'i'
			}
			return r
		}),
		norm.NFC,
	)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// cleanHeader trims and collapses whitespace but keeps the original spelling.
func cleanHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
