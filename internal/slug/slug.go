// Package slug derives filesystem-safe directory and file names.
package slug

import (
	"strings"
	"unicode"
)

var replacements = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
)

// Make lowercases s, transliterates umlauts, and collapses every other
// non-alphanumeric run into a single dash.
func Make(s string) string {
	s = replacements.Replace(s)

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		} else {
			dash = true
		}
	}
	return b.String()
}
