package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/prompt"
)

const (
	terminalTimeline = 10
	terminalExcerpt  = 120
)

// terminalFormatter formats a report for terminal display using go-termfmt
// trees and lipgloss styling
type terminalFormatter struct {
	opts            *termfmt.TerminalOptions
	styles          styles
	timestampFormat string
}

// NewTerminal creates a terminal formatter
func NewTerminal(o Options) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = o.Color
	opts.Emoji = o.Emoji
	return &terminalFormatter{
		opts:            opts,
		styles:          newStyles(o.Color),
		timestampFormat: o.TimestampFormat,
	}
}

func (f *terminalFormatter) Format(r *Report) ([]byte, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	var b strings.Builder

	f.writeHeader(&b, r)
	f.writeIncident(&b, r.Incident)
	f.writeEntities(&b, r.Incident)

	if ctx := r.Context; ctx != nil {
		f.writeLogEvidence(&b, ctx)
		f.writeCases(&b, ctx.HistoricalCases)
		f.writeKnowledge(&b, ctx.KnowledgeBase)
		f.writeContacts(&b, ctx.EscalationContacts)
	}

	if r.Analysis != nil {
		f.writeAnalysis(&b, r.Analysis)
	}

	if r.Context != nil {
		fmt.Fprintf(&b, "%s Context: %s\n", termfmt.GetEmoji("summary", f.opts), r.Context.Summary())
	}

	return []byte(b.String()), nil
}

// writeHeader writes the report title box
func (f *terminalFormatter) writeHeader(b *strings.Builder, r *Report) {
	header := "Incident Triage Report"
	if f.opts.Color {
		b.WriteString(f.styles.header.Render(header) + "\n")
	} else {
		headerLen := len(header)
		b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
		b.WriteString("║ " + header + " ║\n")
		b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n")
	}

	line := fmt.Sprintf("Report %s, generated %s", r.ID, r.GeneratedAt.Format(f.timestampFormat))
	if r.Source != "" {
		line += " from " + r.Source
	}
	b.WriteString(f.styles.muted.Render(line) + "\n\n")
}

func (f *terminalFormatter) section(b *strings.Builder, emojiKey, title string) {
	b.WriteString(termfmt.GetEmoji(emojiKey, f.opts) + " " + f.styles.section.Render(title) + "\n")
}

func (f *terminalFormatter) writeTree(b *strings.Builder, items []termfmt.TreeItem) {
	if len(items) == 0 {
		return
	}
	items[len(items)-1].Last = true
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeIncident(b *strings.Builder, in *incident.ParsedIncident) {
	f.section(b, "target", "Incident")

	items := []termfmt.TreeItem{
		{Label: "Type", Value: string(in.Type)},
		{Label: "Module", Value: string(in.Module)},
		{Label: "Severity", Value: severityEmoji(in.Severity, f.opts) + " " + f.styles.severity(in.Severity)},
	}
	if len(in.Keywords) > 0 {
		keywords := in.Keywords
		if len(keywords) > 10 {
			keywords = keywords[:10]
		}
		items = append(items, termfmt.TreeItem{Label: "Keywords", Value: strings.Join(keywords, ", ")})
	}
	f.writeTree(b, items)
}

func (f *terminalFormatter) writeEntities(b *strings.Builder, in *incident.ParsedIncident) {
	var items []termfmt.TreeItem
	for _, t := range incident.EntityTypes {
		if values := in.Entities[t]; len(values) > 0 {
			items = append(items, termfmt.TreeItem{Label: string(t), Value: strings.Join(values, ", ")})
		}
	}
	if len(items) == 0 {
		return
	}

	f.section(b, "tag", "Entities")
	f.writeTree(b, items)
}

func (f *terminalFormatter) writeLogEvidence(b *strings.Builder, ctx *correlation.Context) {
	f.section(b, "statistics", "Log Evidence")

	lc := ctx.Logs
	if lc.Results.Empty() {
		b.WriteString(f.styles.muted.Render("No matching log entries") + "\n\n")
		return
	}

	items := []termfmt.TreeItem{
		{Label: "Matching Entries", Value: formatNumber(lc.Results.Total())},
		{Label: "Errors", Value: formatNumber(lc.Stats.ErrorCount)},
		{Label: "Warnings", Value: formatNumber(lc.Stats.WarningCount)},
		{Label: "Affected Services", Value: strings.Join(lc.AffectedServices, ", ")},
	}
	f.writeTree(b, items)

	if la := ctx.LogAnalysis; la != nil && len(la.ErrorMessages) > 0 {
		f.section(b, "error", "Key Error Messages")
		errItems := make([]termfmt.TreeItem, 0, len(la.ErrorMessages))
		for _, m := range la.ErrorMessages {
			label := m.Service
			if m.Timestamp != "" {
				label += " " + m.Timestamp
			}
			errItems = append(errItems, termfmt.TreeItem{Label: label, Value: singleLine(m.Message, terminalExcerpt)})
		}
		f.writeTree(b, errItems)
	}

	if la := ctx.LogAnalysis; la != nil && len(la.Patterns) > 0 {
		f.section(b, "pattern", "Patterns")
		for _, p := range la.Patterns {
			b.WriteString("• " + p + "\n")
		}
		b.WriteString("\n")
	}

	if len(lc.Timeline) > 0 {
		f.section(b, "help", "Timeline")
		n := len(lc.Timeline)
		if n > terminalTimeline {
			n = terminalTimeline
		}
		items := make([]termfmt.TreeItem, 0, n)
		for _, e := range lc.Timeline[:n] {
			ts := e.Timestamp
			if ts == "" {
				ts = "--"
			}
			items = append(items, termfmt.TreeItem{
				Label: fmt.Sprintf("%s %s %s", levelEmoji(e.Level, f.opts), ts, e.Service),
				Value: singleLine(e.Message, terminalExcerpt),
			})
		}
		if more := len(lc.Timeline) - n; more > 0 {
			items = append(items, termfmt.TreeItem{Label: fmt.Sprintf("... %d more", more)})
		}
		f.writeTree(b, items)
	}
}

func (f *terminalFormatter) writeCases(b *strings.Builder, cc correlation.CaseContext) {
	if len(cc.Similar) == 0 && len(cc.ModuleCases) == 0 {
		return
	}

	if len(cc.Similar) > 0 {
		f.section(b, "insights", "Similar Cases")
		items := make([]termfmt.TreeItem, 0, len(cc.Similar))
		for _, m := range cc.Similar {
			bar := termfmt.CreateConfidenceBar(m.Similarity, f.opts)
			items = append(items, termfmt.TreeItem{
				Label: fmt.Sprintf("Case #%d [%s]", m.Case.ID, orNA(m.Case.Module())),
				Value: fmt.Sprintf("(%s similar)", percent(m.Similarity)),
				Children: []termfmt.TreeItem{
					{Label: bar + " " + singleLine(orNA(m.Case.Problem()), terminalExcerpt)},
					{Label: "Solution", Value: singleLine(orNA(m.Case.Solution()), terminalExcerpt), Last: true},
				},
			})
		}
		f.writeTree(b, items)
	}

	if len(cc.ModuleCases) > 0 {
		f.section(b, "number", "Cases In Module")
		items := make([]termfmt.TreeItem, 0, len(cc.ModuleCases))
		for _, c := range cc.ModuleCases {
			items = append(items, termfmt.TreeItem{
				Label: fmt.Sprintf("Case #%d", c.ID),
				Value: singleLine(orNA(c.Problem()), terminalExcerpt),
			})
		}
		f.writeTree(b, items)
	}
}

func (f *terminalFormatter) writeKnowledge(b *strings.Builder, kc correlation.KnowledgeContext) {
	if len(kc.Articles) > 0 {
		f.section(b, "info", "Knowledge Base")
		items := make([]termfmt.TreeItem, 0, len(kc.Articles))
		for _, a := range kc.Articles {
			items = append(items, termfmt.TreeItem{
				Label: a.SectionTitle,
				Value: fmt.Sprintf("%s %s", termfmt.CreateConfidenceBar(a.Relevance, f.opts), percent(a.Relevance)),
			})
		}
		f.writeTree(b, items)
	}

	if len(kc.Procedures) > 0 {
		f.section(b, "recommendations", "Procedures")
		for _, p := range kc.Procedures {
			b.WriteString("• " + p.SectionTitle + "\n")
		}
		b.WriteString("\n")
	}
}

func (f *terminalFormatter) writeContacts(b *strings.Builder, cc correlation.ContactContext) {
	if len(cc.Contacts) == 0 {
		return
	}

	f.section(b, "door", "Escalation Contacts")
	items := make([]termfmt.TreeItem, 0, len(cc.Contacts))
	for _, c := range cc.Contacts {
		value := c.Email
		if c.Phone != "" {
			value += ", " + c.Phone
		}
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s (%s, %s)", c.Name, orNA(c.Role), c.Module),
			Value: value,
		})
	}
	f.writeTree(b, items)
}

func (f *terminalFormatter) writeAnalysis(b *strings.Builder, a *prompt.Analysis) {
	f.section(b, "insight", "Analysis")

	items := []termfmt.TreeItem{
		{Label: "Root Cause", Value: singleLine(orNA(a.RootCause), 0)},
		{Label: "Impact", Value: singleLine(orNA(a.Impact), 0)},
	}
	if len(a.Evidence) > 0 {
		evidence := termfmt.TreeItem{Label: "Evidence"}
		for i, e := range a.Evidence {
			evidence.Children = append(evidence.Children, termfmt.TreeItem{
				Label: singleLine(e, terminalExcerpt),
				Last:  i == len(a.Evidence)-1,
			})
		}
		items = append(items, evidence)
	}
	items = append(items, termfmt.TreeItem{Label: "Confidence", Value: orNA(a.Confidence)})
	f.writeTree(b, items)
}
