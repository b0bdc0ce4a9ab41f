package utils

import "strings"

// HasBadWord reports whether s contains any of words, ignoring case
func HasBadWord(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
