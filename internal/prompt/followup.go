package prompt

import (
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/PortTriage/internal/incident"
)

// Audience selects the register of an escalation summary
type Audience string

const (
	AudienceL3         Audience = "l3"
	AudienceManagement Audience = "management"
)

// ParseAudience maps user input to an audience, defaulting to L3
func ParseAudience(s string) Audience {
	if strings.EqualFold(strings.TrimSpace(s), string(AudienceManagement)) {
		return AudienceManagement
	}
	return AudienceL3
}

// RemediationPattern creates the remediation plan prompt for an analysed incident
type RemediationPattern struct {
	promptfmt.BasePattern
	Incident *incident.ParsedIncident
	Analysis *Analysis
}

// Remediation returns an empty remediation pattern
func Remediation() *RemediationPattern {
	return &RemediationPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Plans remediation steps for an analysed port operations incident",
			Tags:        []string{"remediation", "port-ops"},
		},
	}
}

func (p *RemediationPattern) WithIncident(in *incident.ParsedIncident) *RemediationPattern {
	p.Incident = in
	return p
}

func (p *RemediationPattern) WithAnalysis(a *Analysis) *RemediationPattern {
	p.Analysis = a
	return p
}

func (p *RemediationPattern) Build() *promptfmt.Prompt {
	pb := promptfmt.New().
		System(SystemRole).
		User("Create a detailed, actionable remediation plan for this incident:\n\n%s\n\n"+
			"List the pre-checks to run, numbered remediation steps with the expected outcome of each, "+
			"verification steps, a rollback plan and what to monitor afterwards. "+
			"Write actual SQL queries when database changes are needed and name the service logs to watch.",
			rawText(p.Incident))

	if p.Analysis != nil && p.Analysis.RootCause != "" {
		pb.AddContext("root_cause", p.Analysis.RootCause)
	}

	return pb.ExpectJSON(&RemediationPlan{}).Build()
}

// EscalationPattern creates an escalation email prompt for L3 engineers or management
type EscalationPattern struct {
	promptfmt.BasePattern
	Incident *incident.ParsedIncident
	Analysis *Analysis
	Plan     *RemediationPlan
	Audience Audience
}

// Escalation returns an escalation pattern for the given audience
func Escalation(audience Audience) *EscalationPattern {
	return &EscalationPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Summarises an incident for escalation",
			Tags:        []string{"escalation", "port-ops", string(audience)},
		},
		Audience: audience,
	}
}

func (p *EscalationPattern) WithIncident(in *incident.ParsedIncident) *EscalationPattern {
	p.Incident = in
	return p
}

func (p *EscalationPattern) WithAnalysis(a *Analysis) *EscalationPattern {
	p.Analysis = a
	return p
}

func (p *EscalationPattern) WithPlan(plan *RemediationPlan) *EscalationPattern {
	p.Plan = plan
	return p
}

func (p *EscalationPattern) Build() *promptfmt.Prompt {
	pb := promptfmt.New().System(SystemRole)

	if p.Audience == AudienceManagement {
		pb = pb.User("Create a business-focused escalation email for management about this incident:\n\n%s\n\n"+
			"Start with a subject line stating the business impact. Cover what happened in business terms, "+
			"customer impact, a non-technical root cause, the resolution timeline and current status, "+
			"risk mitigation and next steps. Avoid technical jargon.",
			rawText(p.Incident))
		if p.Analysis != nil && p.Analysis.Impact != "" {
			pb.AddContext("impact", p.Analysis.Impact)
		}
		return pb.Build()
	}

	pb = pb.User("Create a technical escalation email for the L3 engineering team about this incident:\n\n%s\n\n"+
		"Start with a specific subject line. Cover a brief description, the technical root cause, "+
		"immediate actions, error codes, affected services and log references, the recommended fix, "+
		"verification steps and any risks or dependencies.",
		rawText(p.Incident))
	if p.Analysis != nil && p.Analysis.RootCause != "" {
		pb.AddContext("root_cause", p.Analysis.RootCause)
	}
	if p.Plan != nil && len(p.Plan.Steps) > 0 {
		var b strings.Builder
		for i, step := range p.Plan.Steps {
			b.WriteString(strings.TrimSpace(step.Action))
			if i < len(p.Plan.Steps)-1 {
				b.WriteByte('\n')
			}
		}
		pb.AddContext("remediation_steps", b.String())
	}
	return pb.Build()
}

func rawText(in *incident.ParsedIncident) string {
	if in == nil {
		return ""
	}
	return strings.TrimSpace(in.RawText)
}
