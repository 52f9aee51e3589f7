package nameparse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	illegalRe        = regexp.MustCompile(`[^A-Za-z0-9\-'.&/, ]`)
	illegalEscapedRe = regexp.MustCompile(`[^A-Za-z0-9\-'.&/, ;]`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// Clean replaces characters outside the allowed set (ASCII letters, digits,
// hyphen, apostrophe, period, ampersand, slash, comma and space) with spaces,
// collapses whitespace runs and trims the result. Clean is idempotent.
func Clean(raw string) string {
	return cleanWith(raw, illegalRe)
}

func cleanWith(raw string, illegal *regexp.Regexp) string {
	s := illegal.ReplaceAllString(raw, " ")
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// FoldDiacritics strips combining marks so "José" becomes "Jose".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
