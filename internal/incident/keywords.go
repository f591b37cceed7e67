package incident

import (
	"strings"
)

// Vocabulary is the domain keyword list scanned for in incident text
var Vocabulary = []string{
	"duplicate", "error", "failed", "timeout", "stuck",
	"inconsistency", "mismatch", "conflict", "invalid",
	"missing", "not found", "unable", "cannot",
	"vessel", "container", "edi", "api", "database",
	"booking", "advice", "message", "acknowledgment",
}

// ExtractKeywords returns the vocabulary terms present in text followed by
// any literal error codes. The result has no duplicates; its order is the
// vocabulary order and then first appearance, so repeated calls agree.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	var keywords []string
	for _, term := range Vocabulary {
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
		}
	}
	keywords = append(keywords, ExtractErrorCodes(text)...)

	return dedupe(keywords)
}
