package docstore

import (
	"regexp"
	"strings"
	"unicode"
)

var numberedHeading = regexp.MustCompile(`^\d+(\.\d+)+\s+\S|^\d+\s+[A-Z]`)

// SplitParagraphs splits plain text, one paragraph per non-blank line, into
// sections. A paragraph is a heading when it is short, carries no closing
// punctuation, and is either all upper case, numbered like "3.2 Title", or
// Title Case. Paragraphs before the first heading belong to no section.
func SplitParagraphs(text string) []*Section {
	var sections []*Section
	var current *Section
	var body []string

	flush := func(endLine int) {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		current.EndLine = endLine
		current.WordCount = len(strings.Fields(current.Content))
		sections = append(sections, current)
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		para := strings.TrimSpace(line)
		if para == "" {
			continue
		}
		if !IsHeading(para) {
			if current != nil {
				body = append(body, para)
			}
			continue
		}
		flush(i)
		current = &Section{Heading: para, Level: 1, StartLine: i + 1}
		body = nil
	}
	flush(len(lines))

	return sections
}

// IsHeading applies the plain text heading heuristics to one paragraph
func IsHeading(para string) bool {
	words := strings.Fields(para)
	if len(words) == 0 || len(words) > 10 || len(para) > 80 {
		return false
	}
	if strings.ContainsAny(para[len(para)-1:], ".,;:!?") {
		return false
	}
	if numberedHeading.MatchString(para) {
		return true
	}

	hasLetter := false
	allUpper := true
	for _, r := range para {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				allUpper = false
			}
		}
	}
	if !hasLetter {
		return false
	}
	if allUpper {
		return true
	}

	for _, w := range words {
		first := []rune(w)[0]
		if unicode.IsLetter(first) && !unicode.IsUpper(first) && !isMinorWord(w) {
			return false
		}
	}
	return len(words) >= 2
}

func isMinorWord(w string) bool {
	switch w {
	case "a", "an", "and", "the", "of", "for", "in", "on", "to", "or", "with":
		return true
	}
	return false
}
