// Package heuristic holds the deterministic classifier used when the remote model is unavailable.
package heuristic

import (
	"regexp"
	"strings"
	"unicode"
)

// A URL runs until the first Unicode space. RE2's \S alone only stops at ASCII whitespace.
var urlPattern = regexp.MustCompile(`https?://[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)

// Portuguese letters kept alongside ASCII letters and digits.
const accentedLetters = "çãõáéíóúâêîôûà"

var stopWords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "é": {}, "de": {}, "do": {}, "da": {}, "em": {}, "um": {}, "uma": {},
	"para": {}, "com": {}, "por": {}, "que": {}, "se": {}, "os": {}, "as": {}, "no": {}, "na": {},
	"ao": {}, "à": {}, "às": {}, "dos": {}, "das": {}, "este": {}, "esta": {}, "esse": {}, "essa": {},
	"sou": {}, "tenho": {}, "temos": {}, "foi": {}, "ser": {}, "são": {}, "eu": {}, "vc": {}, "você": {},
}

// IsStopWord reports whether token is dropped during normalization.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// Normalize lower-cases text, strips URLs and unsupported characters, and drops stop words. The
// result is a single line of tokens joined by one space.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = urlPattern.ReplaceAllString(text, " ")
	text = strings.Map(keepRune, text)

	fields := strings.Fields(text)
	tokens := fields[:0]
	for _, f := range fields {
		if !IsStopWord(f) {
			tokens = append(tokens, f)
		}
	}
	return strings.Join(tokens, " ")
}

func keepRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return r
	case unicode.IsSpace(r):
		return r
	case strings.ContainsRune(accentedLetters, r):
		return r
	}
	return ' '
}
