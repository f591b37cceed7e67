package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logs"
	"github.com/yildizm/PortTriage/internal/prompt"
)

const duplicateIncident = "Duplicate container CMAU0000020 in yard, urgent"

func testReport(t *testing.T) *Report {
	t.Helper()
	engine := correlation.NewEngine(correlation.Sources{
		Logs: logs.NewCorrelator([]logs.Service{{
			Name: "container",
			Lines: []string{
				"2025-10-09T08:29:00.000Z ERROR container-service Duplicate CMAU0000020 in yard",
				"2025-10-09T08:30:00.000Z WARN container-service Retrying CMAU0000020 update",
			},
		}}),
		Cases: cases.NewStore([]cases.Case{{ID: 42, Fields: map[string]string{
			cases.FieldModule:   "Container",
			cases.FieldProblem:  "Duplicate container in yard",
			cases.FieldSolution: "Remove the duplicate record",
		}}}),
		Knowledge: docstore.NewKnowledgeBase([]*docstore.Section{{
			Heading: "Duplicate Container",
			Content: "Remove the duplicate container from the yard table.",
		}}, ""),
		Contacts: contacts.NewDirectory([]contacts.Group{{
			Module:   "Container",
			Contacts: []contacts.Contact{{Name: "Alice Tan", Role: "L3 Engineer", Email: "alice@port.example"}},
		}}),
	})

	in := incident.Parse(duplicateIncident)
	ctx, err := engine.Gather(in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	return NewReport(in, ctx)
}

func plainOptions() Options {
	opts := DefaultOptions()
	opts.Color = false
	opts.Emoji = false
	return opts
}

func TestNewReport(t *testing.T) {
	r := testReport(t)
	if r.ID == uuid.Nil {
		t.Error("Expected a report ID")
	}
	if r.GeneratedAt.IsZero() {
		t.Error("Expected a generation time")
	}
	if r.Context == nil || r.Incident == nil {
		t.Fatal("Expected incident and context")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"text", false},
		{"TEXT", false},
		{"json", false},
		{"markdown", false},
		{"md", false},
		{"prompt", false},
		{"csv", true},
		{"yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, plainOptions())
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for format %q", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if f == nil {
				t.Fatal("Expected formatter")
			}
		})
	}
}

func TestFormattersRejectEmptyReport(t *testing.T) {
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			f, err := New(format, plainOptions())
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if _, err := f.Format(nil); err == nil {
				t.Error("Expected error for nil report")
			}
			if _, err := f.Format(&Report{}); err == nil {
				t.Error("Expected error for report without incident")
			}
		})
	}
}

func TestTerminalFormat(t *testing.T) {
	r := testReport(t)
	r.Source = "inbox/case-1.txt"

	out, err := NewTerminal(plainOptions()).Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Incident Triage Report",
		r.ID.String(),
		"inbox/case-1.txt",
		"Incident",
		string(incident.TypeDuplicateEntry),
		"[" + string(r.Incident.Severity) + "]",
		"CMAU0000020",
		"Log Evidence",
		"Key Error Messages",
		"Duplicate CMAU0000020 in yard",
		"Timeline",
		"Similar Cases",
		"Case #42",
		"Remove the duplicate record",
		"Knowledge Base",
		"Duplicate Container",
		"Escalation Contacts",
		"alice@port.example",
		r.Context.Summary(),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected terminal output to contain %q:\n%s", want, text)
		}
	}

	if strings.Contains(text, "\x1b[") {
		t.Error("Expected no ANSI escapes with color disabled")
	}
}

func TestTerminalFormatWithoutContext(t *testing.T) {
	r := NewReport(incident.Parse("Gate camera offline"), nil)

	out, err := NewTerminal(plainOptions()).Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	if !strings.Contains(text, "Incident") {
		t.Errorf("Expected incident section:\n%s", text)
	}
	for _, absent := range []string{"Log Evidence", "Similar Cases", "Escalation Contacts"} {
		if strings.Contains(text, absent) {
			t.Errorf("Did not expect %q without context", absent)
		}
	}
}

func TestTerminalFormatWithAnalysis(t *testing.T) {
	r := testReport(t)
	r.Analysis = &prompt.Analysis{
		RootCause:  "Two yard records share one container number",
		Impact:     "Gate-in blocked for the container",
		Evidence:   []string{"ERROR line at 08:29"},
		Confidence: "HIGH",
	}

	out, err := NewTerminal(plainOptions()).Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{"Analysis", "Two yard records share one container number", "ERROR line at 08:29", "HIGH"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	r := testReport(t)

	out, err := NewJSON().Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded struct {
		ID       string `json:"id"`
		Summary  string `json:"summary"`
		Incident struct {
			Type     string `json:"incident_type"`
			Severity string `json:"severity"`
		} `json:"incident"`
		Context struct {
			HistoricalCases struct {
				Similar []struct {
					Similarity float64 `json:"similarity"`
				} `json:"similar_cases"`
			} `json:"historical_cases"`
			EscalationContacts struct {
				Total int `json:"total"`
			} `json:"escalation_contacts"`
		} `json:"context"`
		Analysis *json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, out)
	}

	if decoded.ID != r.ID.String() {
		t.Errorf("Expected id %s, got %s", r.ID, decoded.ID)
	}
	if decoded.Summary != r.Context.Summary() {
		t.Errorf("Expected summary %q, got %q", r.Context.Summary(), decoded.Summary)
	}
	if decoded.Incident.Type != string(incident.TypeDuplicateEntry) {
		t.Errorf("Expected incident type %s, got %s", incident.TypeDuplicateEntry, decoded.Incident.Type)
	}
	if len(decoded.Context.HistoricalCases.Similar) != 1 {
		t.Errorf("Expected 1 similar case, got %d", len(decoded.Context.HistoricalCases.Similar))
	}
	if decoded.Context.EscalationContacts.Total == 0 {
		t.Error("Expected escalation contacts")
	}
	if decoded.Analysis != nil {
		t.Error("Expected analysis to be omitted")
	}
}

func TestMarkdownFormat(t *testing.T) {
	r := testReport(t)

	out, err := NewMarkdown(plainOptions()).Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Incident Triage Report",
		"## Table of Contents",
		"- [Historical Cases](#historical-cases)",
		"| Severity | **" + string(r.Incident.Severity) + "** |",
		"> " + duplicateIncident,
		"## Log Evidence",
		"### Key Error Messages",
		"### Case #42 (Similarity: 100%)",
		"## Knowledge Base",
		"| Alice Tan | L3 Engineer | Container | alice@port.example |",
		"*Report generated by PortTriage*",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected markdown to contain %q:\n%s", want, text)
		}
	}

	if strings.Contains(text, "## Analysis") {
		t.Error("Did not expect an analysis section")
	}
}

func TestPromptFormat(t *testing.T) {
	r := testReport(t)

	out, err := NewPrompt(DefaultOptions()).Format(r)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	if !strings.HasPrefix(text, "SYSTEM:\n"+prompt.SystemRole) {
		t.Errorf("Expected system block first:\n%s", text)
	}
	for _, want := range []string{"USER:", duplicateIncident, "Remove the duplicate record", "alice@port.example"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatNumber(tt.n); got != tt.want {
				t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestTableCell(t *testing.T) {
	got := tableCell("a | b\n  c")
	if got != "a \\| b c" {
		t.Errorf("tableCell = %q", got)
	}
}
