// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// apostrophes are dropped rather than treated as separators, so "Men's" and
// the Uzbek "O‘zbekiston" stay one word.
var apostrophes = strings.NewReplacer(
	"'", "",
	"`", "",
	"\u2018", "", // left single quotation mark
	"\u2019", "", // right single quotation mark
	"\u02BB", "", // modifier letter turned comma, Uzbek Latin
	"\u02BC", "", // modifier letter apostrophe
)

// Make returns the lowercase, hyphen-separated slug for name.
//
// Non-Latin scripts are transliterated to ASCII ("Электроника" yields
// "elektronika") and accents are folded. Whitespace, hyphens, underscores and
// dots become a single hyphen; every other non-alphanumeric rune is dropped.
// "Home & Garden" yields "home-garden". The result is not unique by
// construction; callers rely on the store's unique index for that.
func Make(name string) string {
	ascii := unidecode.Unidecode(apostrophes.Replace(norm.NFKC.String(name)))

	var b strings.Builder
	b.Grow(len(ascii))
	pendingSep := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			pendingSep = true
		}
	}
	return b.String()
}
