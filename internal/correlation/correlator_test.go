package correlation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logs"
)

func testSources() Sources {
	return Sources{
		Logs: logs.NewCorrelator([]logs.Service{
			{Name: "container", Lines: []string{
				"2025-10-09T08:20:00.000Z INFO container-service Gate in CMAU0000020",
				"2025-10-09T08:29:00.000Z ERROR container-service Duplicate CMAU0000020 in yard",
			}},
			{Name: "edi_advice", Lines: []string{
				"2025-10-09T08:31:02.200Z ERROR edi-advice-service REF-IFT-0007 stuck in ERROR status",
			}},
			{Name: "vessel_registry", Lines: []string{
				"2025-10-09T07:00:00.000Z INFO vessel-registry-service Registry loaded",
			}},
		}),
		Cases: cases.NewStore([]cases.Case{
			{ID: 1, Fields: map[string]string{
				cases.FieldModule:   "Container",
				cases.FieldProblem:  "Duplicate container shown in yard view",
				cases.FieldSolution: "Deleted the duplicate container record",
			}},
			{ID: 2, Fields: map[string]string{
				cases.FieldModule:   "EDI/API",
				cases.FieldProblem:  "EDI message stuck without acknowledgment",
				cases.FieldSolution: "Resent message",
			}},
		}),
		Knowledge: docstore.NewKnowledgeBase([]*docstore.Section{
			{Heading: "Duplicate Container", Content: "Step 1: locate the duplicate container record."},
			{Heading: "EDI Troubleshooting", Content: "Check the EDI message queue."},
		}, ""),
		Contacts: contacts.NewDirectory([]contacts.Group{
			{Module: "Container", Contacts: []contacts.Contact{
				{Name: "Cora", Role: "Team Lead", Email: "cora@port.example"},
				{Name: "Cal", Role: "L3 Engineer", Email: "cal@port.example"},
			}},
			{Module: "EDI/API", Contacts: []contacts.Contact{
				{Name: "Eli", Role: "Engineer", Email: "eli@port.example"},
			}},
			{Module: "Management", Contacts: []contacts.Contact{
				{Name: "Mia", Role: "Manager", Email: "mia@port.example"},
			}},
		}),
	}
}

func TestGatherDuplicateContainer(t *testing.T) {
	engine := NewEngine(testSources())
	p := incident.Parse("Customer reports container CMAU0000020 shows 2 identical containers in the yard view")

	ctx, err := engine.Gather(p)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	if len(ctx.SearchTerms) != 1 || ctx.SearchTerms[0] != "CMAU0000020" {
		t.Errorf("SearchTerms = %v", ctx.SearchTerms)
	}

	if got := ctx.Logs.AffectedServices; len(got) != 1 || got[0] != "container" {
		t.Errorf("AffectedServices = %v", got)
	}
	if ctx.Logs.Summary != "2 entries in 1 services" {
		t.Errorf("log summary = %q", ctx.Logs.Summary)
	}
	if ctx.LogAnalysis == nil {
		t.Fatal("LogAnalysis should be set when logs matched")
	}
	if len(ctx.LogAnalysis.ErrorMessages) != 1 || ctx.LogAnalysis.ErrorMessages[0].Message != "Duplicate CMAU0000020 in yard" {
		t.Errorf("ErrorMessages = %+v", ctx.LogAnalysis.ErrorMessages)
	}
	if len(ctx.LogAnalysis.Patterns) != 0 {
		t.Errorf("Patterns = %v, want none", ctx.LogAnalysis.Patterns)
	}

	if len(ctx.HistoricalCases.Similar) != 1 || ctx.HistoricalCases.Similar[0].Case.ID != 1 {
		t.Errorf("Similar = %+v", ctx.HistoricalCases.Similar)
	}
	if len(ctx.HistoricalCases.ModuleCases) != 1 || ctx.HistoricalCases.ModuleCases[0].ID != 1 {
		t.Errorf("ModuleCases = %+v", ctx.HistoricalCases.ModuleCases)
	}

	if len(ctx.KnowledgeBase.Articles) != 1 || ctx.KnowledgeBase.Articles[0].SectionTitle != "Duplicate Container" {
		t.Errorf("Articles = %+v", ctx.KnowledgeBase.Articles)
	}
	if len(ctx.KnowledgeBase.Procedures) != 1 {
		t.Errorf("Procedures = %+v", ctx.KnowledgeBase.Procedures)
	}

	// MEDIUM severity: module contacts only, L3 Engineer first
	got := ctx.EscalationContacts.Contacts
	if len(got) != 2 || got[0].Name != "Cal" || got[1].Name != "Cora" {
		t.Errorf("Contacts = %+v", got)
	}

	want := "2 entries in 1 services, 1 similar cases found, 1 articles found, 2 contacts for Container"
	if ctx.Summary() != want {
		t.Errorf("Summary() = %q, want %q", ctx.Summary(), want)
	}
}

func TestGatherHighSeverityAddsManagement(t *testing.T) {
	engine := NewEngine(testSources())
	p := incident.Parse("EDI message REF-IFT-0007 stuck in ERROR status, multiple customers waiting")

	if p.Severity != incident.SeverityHigh || p.Module != incident.ModuleEDI {
		t.Fatalf("unexpected classification %s/%s", p.Module, p.Severity)
	}

	ctx, err := engine.Gather(p)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var names []string
	for _, c := range ctx.EscalationContacts.Contacts {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "Eli,Mia" {
		t.Errorf("Contacts = %v, want [Eli Mia]", names)
	}
	if ctx.Logs.Results.Entries("edi_advice") == nil {
		t.Error("expected edi_advice log matches")
	}
}

func TestGatherWithoutEntities(t *testing.T) {
	engine := NewEngine(testSources())
	ctx, err := engine.Gather(incident.Parse("the screen looks odd today"))
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	if len(ctx.SearchTerms) != 0 {
		t.Errorf("SearchTerms = %v", ctx.SearchTerms)
	}
	if !ctx.Logs.Results.Empty() || ctx.Logs.Summary != "No search terms" {
		t.Errorf("Logs = %+v", ctx.Logs)
	}
	if ctx.LogAnalysis != nil {
		t.Error("LogAnalysis should be nil without log matches")
	}
	if ctx.Summary() != "No context found" {
		t.Errorf("Summary() = %q", ctx.Summary())
	}
}

func TestGatherNilIncident(t *testing.T) {
	_, err := NewEngine(testSources()).Gather(nil)
	if !errors.Is(err, ErrNilIncident) {
		t.Errorf("expected ErrNilIncident, got %v", err)
	}
}

func TestGatherEmptySources(t *testing.T) {
	engine := NewEngine(Sources{})
	ctx, err := engine.Gather(incident.Parse("Duplicate container CMAU0000020, production down"))
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if !ctx.Logs.Results.Empty() || len(ctx.HistoricalCases.Similar) != 0 ||
		len(ctx.KnowledgeBase.Articles) != 0 || len(ctx.EscalationContacts.Contacts) != 0 {
		t.Errorf("expected empty context, got %+v", ctx)
	}
	if ctx.Summary() != "No context found" {
		t.Errorf("Summary() = %q", ctx.Summary())
	}
}

func noisySources() Sources {
	long := strings.Repeat("x", 250)
	var services []logs.Service
	for i, name := range []string{"api_event", "berth_application", "container"} {
		services = append(services, logs.Service{Name: name, Lines: []string{
			fmt.Sprintf("2025-10-09T08:0%d:00.000Z ERROR %s TGHU7654321 first %s", i, name, long),
			fmt.Sprintf("2025-10-09T08:1%d:00.000Z ERROR %s TGHU7654321 second", i, name),
		}})
	}
	return Sources{Logs: logs.NewCorrelator(services)}
}

func TestLogAnalysisPatterns(t *testing.T) {
	engine := NewEngine(noisySources())
	ctx, err := engine.Gather(incident.Parse("TGHU7654321 missing"))
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	analysis := ctx.LogAnalysis
	if analysis == nil {
		t.Fatal("expected log analysis")
	}
	want := []string{PatternMultipleErrors, PatternMultipleServices, PatternSequence}
	if strings.Join(analysis.Patterns, "|") != strings.Join(want, "|") {
		t.Errorf("Patterns = %v, want %v", analysis.Patterns, want)
	}
	if analysis.ErrorCount != 6 || len(analysis.ErrorMessages) != 6 {
		t.Errorf("ErrorCount = %d, messages = %d", analysis.ErrorCount, len(analysis.ErrorMessages))
	}
	for _, m := range analysis.ErrorMessages {
		if len(m.Message) > 200 {
			t.Errorf("message not truncated: %d chars", len(m.Message))
		}
	}
}

func TestLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.Timeline = 2
	limits.ErrorsPerService = 1

	engine := NewEngine(noisySources(), WithLimits(limits))
	ctx, err := engine.Gather(incident.Parse("TGHU7654321 missing"))
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	if len(ctx.Logs.Timeline) != 2 {
		t.Errorf("Timeline = %d entries, want 2", len(ctx.Logs.Timeline))
	}
	if len(ctx.LogAnalysis.ErrorMessages) != 3 {
		t.Errorf("ErrorMessages = %d, want 3", len(ctx.LogAnalysis.ErrorMessages))
	}
	for _, p := range ctx.LogAnalysis.Patterns {
		if p == PatternSequence {
			t.Error("sequence flag uses the truncated timeline")
		}
	}
}

func TestFormatForAnalysis(t *testing.T) {
	engine := NewEngine(testSources())
	ctx, err := engine.Gather(incident.Parse("Customer reports container CMAU0000020 shows 2 identical containers in the yard view"))
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	out := ctx.FormatForAnalysis()
	for _, want := range []string{
		"# Context Information",
		"## Application Logs",
		"- Affected services: container",
		"1. [container] Duplicate CMAU0000020 in yard",
		"### Case 1 (Similarity: 100%)",
		"### Article 1: Duplicate Container",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
