package incident

import (
	"fmt"
	"strings"
	"time"
)

// Parse runs entity extraction, classification and keyword extraction over
// one incident report
func Parse(text string) *ParsedIncident {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an explicit parse time
func ParseAt(text string, at time.Time) *ParsedIncident {
	entities := ExtractEntities(text)

	return &ParsedIncident{
		RawText:  text,
		Entities: entities,
		Type:     Classify(text, entities),
		Module:   IdentifyModule(text, entities),
		Severity: EstimateSeverity(text),
		Keywords: ExtractKeywords(text),
		ParsedAt: at,
	}
}

// SearchTerms returns entity values followed by keywords, without duplicates
func SearchTerms(p *ParsedIncident) []string {
	if p == nil {
		return nil
	}
	terms := append(p.Entities.Values(), p.Keywords...)
	return dedupe(terms)
}

// FormatSummary renders a short human-readable summary of a parsed incident
func FormatSummary(p *ParsedIncident) string {
	var b strings.Builder

	b.WriteString("Incident Summary\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Type: %s\n", p.Type)
	fmt.Fprintf(&b, "Module: %s\n", p.Module)
	fmt.Fprintf(&b, "Severity: %s\n", p.Severity)
	b.WriteString("\nEntities Found:\n")

	for _, t := range EntityTypes {
		if values := p.Entities[t]; len(values) > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", t, strings.Join(values, ", "))
		}
	}

	if len(p.Keywords) > 0 {
		keywords := p.Keywords
		if len(keywords) > 10 {
			keywords = keywords[:10]
		}
		fmt.Fprintf(&b, "\nKeywords: %s\n", strings.Join(keywords, ", "))
	}

	return b.String()
}
