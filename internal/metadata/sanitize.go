package metadata

import (
	"strings"
	"unicode"
)

// SanitizeTitle replaces every character that is not an ASCII letter, digit,
// underscore or whitespace with an underscore, so the result can be used as a
// single path component. Applying it twice yields the same string.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		case r == '\u0085': // NEL is not whitespace here
			return '_'
		case unicode.IsSpace(r), r == '\ufeff':
			return r
		default:
			return '_'
		}
	}, title)
}
