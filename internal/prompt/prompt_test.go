package prompt

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logs"
)

const duplicateIncident = "Duplicate container CMAU0000020 in yard"

func gatherContext(t *testing.T, in *incident.ParsedIncident) *correlation.Context {
	t.Helper()
	engine := correlation.NewEngine(correlation.Sources{
		Logs: logs.NewCorrelator([]logs.Service{{
			Name:  "container",
			Lines: []string{"2025-10-09T08:29:00.000Z ERROR container-service Duplicate CMAU0000020 in yard"},
		}}),
		Cases: cases.NewStore([]cases.Case{{ID: 1, Fields: map[string]string{
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

	ctx, err := engine.Gather(in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	return ctx
}

func TestIncidentAnalysisPrompt(t *testing.T) {
	in := incident.Parse(duplicateIncident)
	ctx := gatherContext(t, in)

	prompt := IncidentAnalysis().WithIncident(in).WithContext(ctx).Build()
	if prompt == nil {
		t.Fatal("Expected non-nil prompt")
	}

	if prompt.SystemPrompt != SystemRole {
		t.Errorf("Expected system role, got %q", prompt.SystemPrompt)
	}
	if prompt.JSONSchema == nil {
		t.Error("Expected a JSON response schema")
	}

	text := prompt.String()
	for _, want := range []string{
		"Type: " + string(in.Type),
		"Module: " + string(in.Module),
		duplicateIncident,
		"CMAU0000020",
		"[container] Duplicate CMAU0000020 in yard",
		"Similarity: 100%",
		"Remove the duplicate record",
		"Article 1: Duplicate Container",
		"alice@port.example",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected prompt to contain %q:\n%s", want, text)
		}
	}
}

func TestIncidentAnalysisPromptWithoutContext(t *testing.T) {
	in := incident.Parse("Something odd happened at the gate")
	text := IncidentAnalysis().WithIncident(in).Build().String()

	if !strings.Contains(text, "Something odd happened at the gate") {
		t.Errorf("Expected incident text in prompt:\n%s", text)
	}
	for _, absent := range []string{"Application Logs", "Similar Historical Cases", "Knowledge Base Articles"} {
		if strings.Contains(text, absent) {
			t.Errorf("Prompt should not contain %q without context", absent)
		}
	}

	if IncidentAnalysis().Build() == nil {
		t.Error("Expected a generic prompt without an incident")
	}
}

func TestFollowupPrompts(t *testing.T) {
	in := incident.Parse("EDI message REF-IFT-0007 stuck")
	analysis := &Analysis{RootCause: "Ack flag never set", Impact: "Vessel advice delayed"}
	plan := &RemediationPlan{Steps: []Step{{Action: "Reset the ack flag"}, {Action: "Resend the message"}}}

	remediation := Remediation().WithIncident(in).WithAnalysis(analysis).Build()
	if text := remediation.String(); !strings.Contains(text, "REF-IFT-0007") || !strings.Contains(text, "Ack flag never set") {
		t.Errorf("Remediation prompt missing incident or root cause:\n%s", text)
	}
	if remediation.JSONSchema == nil {
		t.Error("Expected remediation JSON schema")
	}

	l3 := Escalation(AudienceL3).WithIncident(in).WithAnalysis(analysis).WithPlan(plan).Build().String()
	for _, want := range []string{"L3 engineering", "Ack flag never set", "Resend the message"} {
		if !strings.Contains(l3, want) {
			t.Errorf("L3 escalation missing %q:\n%s", want, l3)
		}
	}

	mgmt := Escalation(ParseAudience("Management")).WithIncident(in).WithAnalysis(analysis).Build().String()
	if !strings.Contains(mgmt, "Vessel advice delayed") || strings.Contains(mgmt, "Ack flag never set") {
		t.Errorf("Management escalation should carry impact only:\n%s", mgmt)
	}
}

func TestParseAudience(t *testing.T) {
	tests := map[string]Audience{
		"management": AudienceManagement,
		" MANAGEMENT ": AudienceManagement,
		"l3":         AudienceL3,
		"":           AudienceL3,
		"board":      AudienceL3,
	}
	for in, want := range tests {
		if got := ParseAudience(in); got != want {
			t.Errorf("ParseAudience(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseAnalysisJSON(t *testing.T) {
	response := `{"root_cause": "Ack flag never set", "impact": "Vessel advice delayed", "evidence": ["edi_advice ERROR at 08:31"], "confidence": "high"}`

	analysis := ParseAnalysis(response)
	if !analysis.Structured {
		t.Fatal("Expected JSON reply to parse as structured")
	}
	if analysis.RootCause != "Ack flag never set" || analysis.Impact != "Vessel advice delayed" {
		t.Errorf("Unexpected analysis: %+v", analysis)
	}
	if analysis.Confidence != "HIGH" {
		t.Errorf("Expected confidence HIGH, got %q", analysis.Confidence)
	}
	if len(analysis.Evidence) != 1 {
		t.Errorf("Expected 1 evidence item, got %v", analysis.Evidence)
	}
}

func TestParseAnalysisFreeForm(t *testing.T) {
	response := `1. **Root Cause Analysis**
The EDI parser rejected REF-IFT-0007 because the acknowledgment flag was never set.

2. **Impact Assessment**
Vessel advice messages for MV LION CITY are delayed.

3. **Evidence**
- ERROR edi-advice-service REF-IFT-0007 stuck in ERROR status
- Case 12 had the same symptom
  after a release

4. **Confidence Level**
Medium: the logs agree with case 12`

	analysis := ParseAnalysis(response)
	if analysis.Structured {
		t.Error("Free-form reply should not be structured")
	}
	if analysis.RootCause != "The EDI parser rejected REF-IFT-0007 because the acknowledgment flag was never set." {
		t.Errorf("Unexpected root cause %q", analysis.RootCause)
	}
	if analysis.Impact != "Vessel advice messages for MV LION CITY are delayed." {
		t.Errorf("Unexpected impact %q", analysis.Impact)
	}
	wantEvidence := []string{
		"ERROR edi-advice-service REF-IFT-0007 stuck in ERROR status",
		"Case 12 had the same symptom after a release",
	}
	if !reflect.DeepEqual(analysis.Evidence, wantEvidence) {
		t.Errorf("Expected evidence %q, got %q", wantEvidence, analysis.Evidence)
	}
	if analysis.Confidence != "MEDIUM" {
		t.Errorf("Expected confidence MEDIUM, got %q", analysis.Confidence)
	}
	if analysis.Raw != response {
		t.Error("Raw reply should be kept")
	}
}

func TestParseRemediationFreeForm(t *testing.T) {
	response := `## Pre-checks
- Query edi_message for REF-IFT-0007

## Remediation Steps
1. Reset the ack flag
2. Resend the message

## Verification
- Status is ACKED

## Rollback
- Restore the previous flag

## Monitoring
- Watch edi_advice.log for 30 minutes`

	plan := ParseRemediation(response)
	if len(plan.PreChecks) != 1 || plan.PreChecks[0] != "Query edi_message for REF-IFT-0007" {
		t.Errorf("Unexpected pre-checks %q", plan.PreChecks)
	}
	wantSteps := []Step{{Action: "Reset the ack flag"}, {Action: "Resend the message"}}
	if !reflect.DeepEqual(plan.Steps, wantSteps) {
		t.Errorf("Expected steps %+v, got %+v", wantSteps, plan.Steps)
	}
	if len(plan.Verification) != 1 || len(plan.Rollback) != 1 || len(plan.Monitoring) != 1 {
		t.Errorf("Unexpected plan sections: %+v", plan)
	}
	if !strings.HasPrefix(plan.Summary(), "## Pre-checks") {
		t.Errorf("Unexpected summary %q", plan.Summary())
	}
}

func TestExtractSectionInline(t *testing.T) {
	text := "Root Cause: the berth window overlapped\nImpact: none"
	if got := extractSection(text, "root cause"); got != "the berth window overlapped" {
		t.Errorf("Expected inline root cause, got %q", got)
	}
	if got := extractSection(text, "evidence"); got != "" {
		t.Errorf("Expected empty section for missing marker, got %q", got)
	}
}
