package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes, appending "..." when it cut
// anything. It never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	cut := 0
	for i := range s {
		if maxLen == 0 {
			cut = i
			break
		}
		maxLen--
	}
	return s[:cut] + "..."
}
