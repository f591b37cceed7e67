package prompt

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/incident"
)

// SystemRole is the system prompt shared by every PortTriage prompt
const SystemRole = "You are an expert technical analyst for PORTNET maritime port operations. " +
	"Provide clear, actionable analysis and recommendations."

// IncidentAnalysisPattern creates the root cause prompt for a correlated incident
type IncidentAnalysisPattern struct {
	promptfmt.BasePattern
	Incident      *incident.ParsedIncident
	Context       *correlation.Context
	MaxErrors     int
	MaxCases      int
	MaxArticles   int
	ExcerptLength int
}

// IncidentAnalysis returns an incident analysis pattern with default limits
func IncidentAnalysis() *IncidentAnalysisPattern {
	return &IncidentAnalysisPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Analyzes a port operations incident against correlated logs, cases and knowledge",
			Tags:        []string{"incident-analysis", "root-cause", "port-ops"},
		},
		MaxErrors:     3,
		MaxCases:      3,
		MaxArticles:   2,
		ExcerptLength: 200,
	}
}

func (p *IncidentAnalysisPattern) WithIncident(in *incident.ParsedIncident) *IncidentAnalysisPattern {
	p.Incident = in
	return p
}

func (p *IncidentAnalysisPattern) WithContext(ctx *correlation.Context) *IncidentAnalysisPattern {
	p.Context = ctx
	return p
}

func (p *IncidentAnalysisPattern) WithExcerptLength(n int) *IncidentAnalysisPattern {
	p.ExcerptLength = n
	return p
}

// Build renders the prompt. Context sections are only added when the
// context has something for them.
func (p *IncidentAnalysisPattern) Build() *promptfmt.Prompt {
	if p.Incident == nil {
		return promptfmt.New().
			System(SystemRole).
			User("Please analyze the reported incident and identify its root cause, impact and supporting evidence.").
			Build()
	}

	pb := promptfmt.New().
		System(SystemRole).
		User("Analyze this incident:\n\nType: %s\nModule: %s\nSeverity: %s\n\nIncident Description:\n%s\n\n"+
			"Provide the root cause (2-3 sentences), the impact on systems and business (2-3 sentences), "+
			"the evidence from the context that supports it, and a confidence level of HIGH, MEDIUM or LOW.",
			p.Incident.Type, p.Incident.Module, p.Incident.Severity, strings.TrimSpace(p.Incident.RawText))

	if entities := p.Incident.Entities.Values(); len(entities) > 0 {
		pb.AddContext("entities", strings.Join(entities, ", "))
	}

	if p.Context != nil {
		p.addLogContext(pb)
		p.addCaseContext(pb)
		p.addKnowledgeContext(pb)
		p.addContactContext(pb)
	}

	return pb.ExpectJSON(&Analysis{}).Build()
}

func (p *IncidentAnalysisPattern) addLogContext(pb *promptfmt.PromptBuilder) {
	results := p.Context.Logs.Results
	if results.Empty() {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Application Logs:\n- Total entries: %d\n", results.Total())
	if a := p.Context.LogAnalysis; a != nil {
		fmt.Fprintf(&b, "- Errors: %d\n- Affected services: %s\n", a.ErrorCount, strings.Join(a.AffectedServices, ", "))
		for _, pattern := range a.Patterns {
			fmt.Fprintf(&b, "- Pattern: %s\n", pattern)
		}
		if len(a.ErrorMessages) > 0 {
			b.WriteString("\nKey Error Messages:\n")
			for i, e := range a.ErrorMessages {
				if i >= p.MaxErrors {
					break
				}
				fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, e.Service, e.Message)
			}
		}
	}

	pb.AddContext("logs", b.String())
}

func (p *IncidentAnalysisPattern) addCaseContext(pb *promptfmt.PromptBuilder) {
	similar := p.Context.HistoricalCases.Similar
	if len(similar) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Similar Historical Cases:\n")
	for i, m := range similar {
		if i >= p.MaxCases {
			break
		}
		fmt.Fprintf(&b, "\nCase %d (Similarity: %.0f%%)\nModule: %s\nProblem: %s\nSolution: %s\n",
			i+1, m.Similarity*100,
			orNA(m.Case.Module()),
			orNA(common.Truncate(m.Case.Problem(), p.ExcerptLength)),
			orNA(common.Truncate(m.Case.Solution(), p.ExcerptLength)))
	}

	pb.AddContext("historical_cases", b.String())
}

func (p *IncidentAnalysisPattern) addKnowledgeContext(pb *promptfmt.PromptBuilder) {
	articles := p.Context.KnowledgeBase.Articles
	if len(articles) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Knowledge Base Articles:\n")
	for i, a := range articles {
		if i >= p.MaxArticles {
			break
		}
		fmt.Fprintf(&b, "\nArticle %d: %s\n%s\n", i+1, a.SectionTitle, common.Truncate(a.Content, p.ExcerptLength))
	}

	pb.AddContext("knowledge_base", b.String())
}

func (p *IncidentAnalysisPattern) addContactContext(pb *promptfmt.PromptBuilder) {
	contacts := p.Context.EscalationContacts.Contacts
	if len(contacts) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Escalation Contacts:\n")
	for _, c := range contacts {
		fmt.Fprintf(&b, "- %s (%s, %s) %s\n", c.Name, c.Role, c.Module, c.Email)
	}

	pb.AddContext("escalation_contacts", b.String())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
