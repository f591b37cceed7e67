package incident

import (
	"regexp"
)

// entityPatterns holds one compiled pattern per entity type. Container,
// vessel and error code patterns are case-sensitive; the rest ignore case.
var entityPatterns = map[EntityType]*regexp.Regexp{
	EntityContainer: regexp.MustCompile(`\b[A-Z]{4}\d{7}\b`),
	EntityVessel:    regexp.MustCompile(`\bMV\s+[A-Z]+(?:[ \t]+[A-Z]+)*(?:/[A-Z0-9]+)?\b`),
	EntityErrorCode: regexp.MustCompile(`[A-Z_]+ERR[_-]\d+`),
	EntityReference: regexp.MustCompile(`(?i)\b(?:REF|TCK|INC|ALR|SMS)-[A-Z0-9@-]+`),
	EntityEmail:     regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`),
	EntityBooking:   regexp.MustCompile(`(?i)\bBK-[A-Z0-9]+`),
}

// ExtractEntities applies every entity pattern to text
func ExtractEntities(text string) Entities {
	entities := make(Entities)

	for _, t := range EntityTypes {
		matches := entityPatterns[t].FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		entities[t] = dedupe(matches)
	}

	return entities
}

// ExtractErrorCodes returns the literal error codes found in text
func ExtractErrorCodes(text string) []string {
	return dedupe(entityPatterns[EntityErrorCode].FindAllString(text, -1))
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
