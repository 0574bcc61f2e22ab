package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameFolder strips combining marks so "Curaçao" and "Curacao" compare
// equal. Built once; transform.Chain values are stateless and safe to reuse
// through transform.String.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lower-cases and de-accents a country or place name for filter
// comparison. Transform failures fall back to plain lower-casing, which only
// costs a missed diacritic match.
func foldName(s string) string {
	folded, _, err := transform.String(nameFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
