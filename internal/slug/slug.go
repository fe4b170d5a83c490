// Package slug turns display names into URL path segments.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 96

var pattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// replacements covers letters that do not decompose into ASCII plus a combining mark.
var replacements = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"Æ", "ae",
	"ø", "o",
	"Ø", "o",
	"œ", "oe",
	"Œ", "oe",
	"ł", "l",
	"Ł", "l",
	"đ", "d",
	"Đ", "d",
	"&", " and ",
	"'", "",
	"’", "",
)

// Make lowercases s, folds accents and joins the remaining alphanumeric runs with single hyphens.
func Make(s string) string {
	folded := fold(replacements.Replace(s))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], "-")
	}
	return out
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	return len(s) <= maxLength && pattern.MatchString(s)
}

// Pick returns the normalized explicit slug when one was given, otherwise one derived from fallback.
func Pick(explicit, fallback string) string {
	if strings.TrimSpace(explicit) != "" {
		return Make(explicit)
	}
	return Make(fallback)
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
