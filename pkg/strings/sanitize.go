// Package strings holds helpers for putting untrusted text into logs and
// responses.
package strings

import (
	"strings"
	"unicode"
)

// DefaultParamMaxLen caps provider-supplied callback parameters.
const DefaultParamMaxLen = 200

// minMaxLen leaves room for one character plus "...".
const minMaxLen = 4

// SingleLine collapses all whitespace runs to one space, drops other control
// characters and truncates to maxLen runes, ending in "..." when cut.
func SingleLine(s string, maxLen int) string {
	if maxLen < minMaxLen {
		maxLen = minMaxLen
	}

	s = strings.Join(strings.Fields(s), " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
