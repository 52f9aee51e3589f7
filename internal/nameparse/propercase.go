package nameparse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CaseFunc renders a name for presentation.
type CaseFunc func(string) string

var (
	macRe = regexp.MustCompile(`\b(Mac|mac)([a-z]+)\b`)
	mcRe  = regexp.MustCompile(`\b(Mc|mc)([a-z]+)`)
)

// Letters that, ending a "Mac" name, mark it as probably not Gaelic
// (Machado, Macchia, Macaluso).
const macExcludedEndings = "acijoz"

// ProperCase lowercases name, capitalizes the first letter of every
// space-separated token and then applies the Mac/Mc prefix heuristic.
// Only one prefix class is applied; Mac wins over Mc.
func ProperCase(name string) string {
	words := strings.Split(strings.ToLower(name), " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	fixed := strings.Join(words, " ")

	if macRe.MatchString(fixed) && hasGaelicMac(fixed) {
		return macRe.ReplaceAllStringFunc(fixed, func(m string) string {
			rest := m[3:]
			if !gaelicMacRest(rest) {
				return m
			}
			return "Mac" + capitalize(rest)
		})
	}

	if mcRe.MatchString(fixed) {
		return mcRe.ReplaceAllStringFunc(fixed, func(m string) string {
			return "Mc" + capitalize(m[2:])
		})
	}

	return fixed
}

func hasGaelicMac(s string) bool {
	for _, m := range macRe.FindAllStringSubmatch(s, -1) {
		if gaelicMacRest(m[2]) {
			return true
		}
	}
	return false
}

// gaelicMacRest reports whether the letters after "Mac" are at least two
// letters followed by one final letter outside the excluded set.
func gaelicMacRest(rest string) bool {
	if len(rest) < 3 {
		return false
	}
	return !strings.ContainsRune(macExcludedEndings, rune(rest[len(rest)-1]))
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
