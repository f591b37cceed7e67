package correlation

import (
	"fmt"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
)

// FormatForAnalysis renders the context as markdown for the downstream
// analysis layer: log figures with the top error messages, the top three
// similar cases and the top two knowledge-base articles.
func (c *Context) FormatForAnalysis() string {
	var b strings.Builder
	b.WriteString("# Context Information\n\n")

	if !c.Logs.Results.Empty() && c.LogAnalysis != nil {
		b.WriteString("## Application Logs\n")
		fmt.Fprintf(&b, "- Total entries: %d\n", c.Logs.Stats.TotalEntries)
		fmt.Fprintf(&b, "- Errors: %d\n", c.LogAnalysis.ErrorCount)
		fmt.Fprintf(&b, "- Affected services: %s\n", strings.Join(c.LogAnalysis.AffectedServices, ", "))

		if msgs := c.LogAnalysis.ErrorMessages; len(msgs) > 0 {
			b.WriteString("\n### Key Error Messages:\n")
			for i, m := range msgs {
				if i == 3 {
					break
				}
				fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, m.Service, m.Message)
			}
		}
		b.WriteString("\n")
	}

	if similar := c.HistoricalCases.Similar; len(similar) > 0 {
		b.WriteString("## Similar Historical Cases\n")
		for i, m := range similar {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "\n### Case %d (Similarity: %.0f%%)\n", i+1, m.Similarity*100)
			fmt.Fprintf(&b, "Module: %s\n", orNA(m.Case.Module()))
			fmt.Fprintf(&b, "Problem: %s...\n", common.Truncate(orNA(m.Case.Problem()), 200))
			fmt.Fprintf(&b, "Solution: %s...\n", common.Truncate(orNA(m.Case.Solution()), 200))
		}
		b.WriteString("\n")
	}

	if articles := c.KnowledgeBase.Articles; len(articles) > 0 {
		b.WriteString("## Knowledge Base Articles\n")
		for i, a := range articles {
			if i == 2 {
				break
			}
			fmt.Fprintf(&b, "\n### Article %d: %s\n", i+1, a.SectionTitle)
			fmt.Fprintf(&b, "%s...\n", common.Truncate(a.Content, 300))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
