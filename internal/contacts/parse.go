package contacts

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern  = regexp.MustCompile(`\+65\s*\d{4}\s*\d{4}`)
	headerPattern = regexp.MustCompile(`(?i)module:|team:|edi|vessel|container|database|infrastructure|management`)
	headerPrefix  = regexp.MustCompile(`(?i)^(module|team):\s*`)
	roleSeparator = regexp.MustCompile(`\s*(?:\(|\s-\s|,|\|)\s*`)
)

// roleIndicators locate the role inside "Name Role" text without separators
var roleIndicators = []string{"L3", "Lead", "Engineer", "Specialist", "Manager", "Owner", "DBA"}

var roleQualifiers = map[string]bool{
	"Senior": true, "Principal": true, "Product": true, "Team": true,
	"Support": true, "Duty": true, "Database": true, "Module": true,
}

// ParseText reads a contact directory from extracted document text. Lines
// with an email are contacts of the most recent module header; header lines
// look like "Module: EDI/API" or mention a known team. Contacts seen before
// any header are dropped.
func ParseText(text string) []Group {
	var groups []Group
	index := make(map[string]int)
	current := -1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if contact, ok := parseContactLine(line); ok {
			if current >= 0 {
				groups[current].Contacts = append(groups[current].Contacts, contact)
			}
			continue
		}

		if headerPattern.MatchString(line) {
			module := strings.TrimSpace(headerPrefix.ReplaceAllString(line, ""))
			if module == "" {
				continue
			}
			i, ok := index[module]
			if !ok {
				i = len(groups)
				index[module] = i
				groups = append(groups, Group{Module: module})
			}
			current = i
		}
	}

	return groups
}

func parseContactLine(line string) (Contact, bool) {
	email := emailPattern.FindString(line)
	if email == "" {
		return Contact{}, false
	}

	contact := Contact{
		Email: email,
		Phone: phonePattern.FindString(line),
		Role:  "Unknown",
	}

	namePart := strings.TrimSpace(strings.SplitN(line, email, 2)[0])
	namePart = strings.TrimRight(namePart, " -:|,<")

	if loc := roleSeparator.FindStringIndex(namePart); loc != nil {
		contact.Name = strings.TrimSpace(namePart[:loc[0]])
		role := strings.Trim(namePart[loc[1]:], " )")
		if role != "" {
			contact.Role = role
		}
		return contact, true
	}

	words := strings.Fields(namePart)
	for i, w := range words {
		if isRoleWord(w) {
			for i > 0 && roleQualifiers[words[i-1]] {
				i--
			}
			contact.Name = strings.Join(words[:i], " ")
			contact.Role = strings.Join(words[i:], " ")
			return contact, true
		}
	}

	contact.Name = namePart
	return contact, true
}

func isRoleWord(w string) bool {
	for _, indicator := range roleIndicators {
		if strings.Contains(w, indicator) {
			return true
		}
	}
	return false
}
