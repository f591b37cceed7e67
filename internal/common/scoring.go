package common

import (
	"strings"
)

// KeywordOverlap counts how many keywords occur as case-insensitive substrings
// of text. The score is matched/len(keywords); matched keeps the keyword order
// of the query. An empty keyword list scores zero.
func KeywordOverlap(text string, keywords []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	lowered := strings.ToLower(text)
	var matched []string
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}

	return float64(len(matched)) / float64(len(keywords)), matched
}

// ContainsAny reports whether text contains any of the phrases
func ContainsAny(text string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// DeduplicateStrings removes repeated values, keeping first occurrences in order
func DeduplicateStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))

	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
	}

	return result
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
