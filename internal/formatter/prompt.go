package formatter

import (
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/PortTriage/internal/prompt"
)

// promptFormatter renders the incident analysis prompt instead of a report,
// for piping into an external model
type promptFormatter struct {
	excerptLength int
}

// NewPrompt creates a formatter that emits the analysis prompt
func NewPrompt(o Options) Formatter {
	return &promptFormatter{excerptLength: o.ExcerptLength}
}

func (f *promptFormatter) Format(r *Report) ([]byte, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	pattern := prompt.IncidentAnalysis().
		WithIncident(r.Incident).
		WithContext(r.Context)
	if f.excerptLength > 0 {
		pattern = pattern.WithExcerptLength(f.excerptLength)
	}

	p := pattern.Build()

	return []byte(RenderPrompt(p)), nil
}

// RenderPrompt writes a prompt as labelled system and user blocks
func RenderPrompt(p *promptfmt.Prompt) string {
	var b strings.Builder
	if p.SystemPrompt != "" {
		b.WriteString("SYSTEM:\n")
		b.WriteString(strings.TrimSpace(p.SystemPrompt))
		b.WriteString("\n\n")
	}
	b.WriteString("USER:\n")
	b.WriteString(strings.TrimSpace(p.String()))
	b.WriteString("\n")
	return b.String()
}
