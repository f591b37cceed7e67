package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/prompt"
)

const markdownExcerpt = 300

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	timestampFormat string
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(o Options) Formatter {
	return &markdownFormatter{timestampFormat: o.TimestampFormat}
}

func (f *markdownFormatter) Format(r *Report) ([]byte, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	var b strings.Builder

	b.WriteString("# Incident Triage Report\n\n")
	fmt.Fprintf(&b, "Report: `%s`  \nGenerated: %s\n", r.ID, r.GeneratedAt.Format(f.timestampFormat))
	if r.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n", r.Source)
	}
	b.WriteString("\n")

	f.writeTableOfContents(&b, r)
	f.writeSummaryTable(&b, r.Incident)
	f.writeDescription(&b, r.Incident)

	if ctx := r.Context; ctx != nil {
		f.writeLogEvidence(&b, ctx)
		f.writeCases(&b, ctx.HistoricalCases)
		f.writeKnowledge(&b, ctx.KnowledgeBase)
		f.writeContacts(&b, ctx.EscalationContacts)
	}

	if r.Analysis != nil {
		f.writeAnalysis(&b, r.Analysis)
	}

	b.WriteString("---\n")
	if r.Context != nil {
		fmt.Fprintf(&b, "*%s*\n", r.Context.Summary())
	}
	b.WriteString("*Report generated by PortTriage*\n")

	return []byte(b.String()), nil
}

// writeTableOfContents lists the sections present in the report
func (f *markdownFormatter) writeTableOfContents(b *strings.Builder, r *Report) {
	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Summary](#summary)\n")
	b.WriteString("- [Description](#description)\n")

	if ctx := r.Context; ctx != nil {
		b.WriteString("- [Log Evidence](#log-evidence)\n")
		if len(ctx.HistoricalCases.Similar) > 0 || len(ctx.HistoricalCases.ModuleCases) > 0 {
			b.WriteString("- [Historical Cases](#historical-cases)\n")
		}
		if len(ctx.KnowledgeBase.Articles) > 0 || len(ctx.KnowledgeBase.Procedures) > 0 {
			b.WriteString("- [Knowledge Base](#knowledge-base)\n")
		}
		if len(ctx.EscalationContacts.Contacts) > 0 {
			b.WriteString("- [Escalation Contacts](#escalation-contacts)\n")
		}
	}
	if r.Analysis != nil {
		b.WriteString("- [Analysis](#analysis)\n")
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, in *incident.ParsedIncident) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| Type | %s |\n", in.Type)
	fmt.Fprintf(b, "| Module | %s |\n", in.Module)
	fmt.Fprintf(b, "| Severity | **%s** |\n", in.Severity)
	for _, t := range incident.EntityTypes {
		if values := in.Entities[t]; len(values) > 0 {
			fmt.Fprintf(b, "| %s | %s |\n", t, tableCell(strings.Join(values, ", ")))
		}
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeDescription(b *strings.Builder, in *incident.ParsedIncident) {
	b.WriteString("## Description\n\n")
	for _, line := range strings.Split(strings.TrimSpace(in.RawText), "\n") {
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeLogEvidence(b *strings.Builder, ctx *correlation.Context) {
	b.WriteString("## Log Evidence\n\n")

	lc := ctx.Logs
	if lc.Results.Empty() {
		b.WriteString("No matching log entries.\n\n")
		return
	}

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Matching Entries | %s |\n", formatNumber(lc.Results.Total()))
	fmt.Fprintf(b, "| Errors | %s |\n", formatNumber(lc.Stats.ErrorCount))
	fmt.Fprintf(b, "| Warnings | %s |\n", formatNumber(lc.Stats.WarningCount))
	fmt.Fprintf(b, "| Affected Services | %s |\n\n", tableCell(strings.Join(lc.AffectedServices, ", ")))

	if la := ctx.LogAnalysis; la != nil {
		if len(la.Patterns) > 0 {
			b.WriteString("**Patterns**: " + strings.Join(la.Patterns, "; ") + "\n\n")
		}
		if len(la.ErrorMessages) > 0 {
			b.WriteString("### Key Error Messages\n\n")
			for i, m := range la.ErrorMessages {
				fmt.Fprintf(b, "%d. `%s` %s\n", i+1, m.Service, m.Message)
			}
			b.WriteString("\n")
		}
	}

	if len(lc.Timeline) > 0 {
		b.WriteString("### Timeline\n\n")
		b.WriteString("```\n")
		for _, e := range lc.Timeline {
			fmt.Fprintf(b, "[%s] %s\n", e.Service, e.Raw)
		}
		b.WriteString("```\n\n")
	}
}

func (f *markdownFormatter) writeCases(b *strings.Builder, cc correlation.CaseContext) {
	if len(cc.Similar) == 0 && len(cc.ModuleCases) == 0 {
		return
	}

	b.WriteString("## Historical Cases\n\n")

	for _, m := range cc.Similar {
		fmt.Fprintf(b, "### Case #%d (Similarity: %s)\n", m.Case.ID, percent(m.Similarity))
		fmt.Fprintf(b, "**Module**: %s  \n", orNA(m.Case.Module()))
		fmt.Fprintf(b, "**Matched**: %s\n\n", strings.Join(m.MatchedKeywords, ", "))
		fmt.Fprintf(b, "**Problem**: %s\n\n", orNA(common.Truncate(m.Case.Problem(), markdownExcerpt)))
		fmt.Fprintf(b, "**Solution**: %s\n\n", orNA(common.Truncate(m.Case.Solution(), markdownExcerpt)))
		if sop := m.Case.SOP(); sop != "" {
			fmt.Fprintf(b, "**SOP**: %s\n\n", sop)
		}
	}

	if len(cc.ModuleCases) > 0 {
		b.WriteString("### Other Cases In Module\n\n")
		for _, c := range cc.ModuleCases {
			fmt.Fprintf(b, "- #%d %s\n", c.ID, singleLine(orNA(c.Problem()), 120))
		}
		b.WriteString("\n")
	}
}

func (f *markdownFormatter) writeKnowledge(b *strings.Builder, kc correlation.KnowledgeContext) {
	if len(kc.Articles) == 0 && len(kc.Procedures) == 0 {
		return
	}

	b.WriteString("## Knowledge Base\n\n")
	for _, a := range kc.Articles {
		fmt.Fprintf(b, "### %s (Relevance: %s)\n\n", a.SectionTitle, percent(a.Relevance))
		b.WriteString(common.Truncate(strings.TrimSpace(a.Content), markdownExcerpt) + "\n\n")
	}

	if len(kc.Procedures) > 0 {
		b.WriteString("### Procedures\n\n")
		for _, p := range kc.Procedures {
			b.WriteString("- " + p.SectionTitle + "\n")
		}
		b.WriteString("\n")
	}
}

func (f *markdownFormatter) writeContacts(b *strings.Builder, cc correlation.ContactContext) {
	if len(cc.Contacts) == 0 {
		return
	}

	b.WriteString("## Escalation Contacts\n\n")
	b.WriteString("| Name | Role | Module | Email | Phone |\n")
	b.WriteString("|------|------|--------|-------|-------|\n")
	for _, c := range cc.Contacts {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			tableCell(c.Name), tableCell(c.Role), tableCell(c.Module), c.Email, c.Phone)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeAnalysis(b *strings.Builder, a *prompt.Analysis) {
	b.WriteString("## Analysis\n\n")
	fmt.Fprintf(b, "**Confidence**: %s\n\n", orNA(a.Confidence))
	fmt.Fprintf(b, "### Root Cause\n\n%s\n\n", orNA(a.RootCause))
	fmt.Fprintf(b, "### Impact\n\n%s\n\n", orNA(a.Impact))
	if len(a.Evidence) > 0 {
		b.WriteString("### Evidence\n\n")
		for _, e := range a.Evidence {
			b.WriteString("- " + e + "\n")
		}
		b.WriteString("\n")
	}
}

// tableCell keeps a value from breaking the markdown table
func tableCell(s string) string {
	return strings.ReplaceAll(singleLine(s, 0), "|", "\\|")
}
