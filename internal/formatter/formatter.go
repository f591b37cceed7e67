package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/prompt"
)

// Report is one triaged incident ready for output
type Report struct {
	ID          uuid.UUID                `json:"id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Source      string                   `json:"source,omitempty"`
	Incident    *incident.ParsedIncident `json:"incident"`
	Context     *correlation.Context     `json:"context"`
	Analysis    *prompt.Analysis         `json:"analysis,omitempty"`
}

// NewReport wraps a parsed incident and its gathered context
func NewReport(in *incident.ParsedIncident, ctx *correlation.Context) *Report {
	return &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now(),
		Incident:    in,
		Context:     ctx,
	}
}

// Formatter defines the interface for report output
type Formatter interface {
	Format(r *Report) ([]byte, error)
}

// Options controls presentation details shared by the formatters
type Options struct {
	Color           bool
	Emoji           bool
	TimestampFormat string
	ExcerptLength   int // prompt log excerpt length; 0 keeps the prompt default
}

// DefaultOptions returns colored, emoji-enabled output
func DefaultOptions() Options {
	return Options{
		Color:           true,
		Emoji:           true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPrompt   = "prompt"
)

// Formats lists the accepted output format names
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatPrompt}

// New returns the formatter for the given format name
func New(format string, opts Options) (Formatter, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = DefaultOptions().TimestampFormat
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText, "terminal":
		return NewTerminal(opts), nil
	case FormatJSON:
		return NewJSON(), nil
	case FormatMarkdown, "md":
		return NewMarkdown(opts), nil
	case FormatPrompt:
		return NewPrompt(opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
}

func validate(r *Report) error {
	if r == nil || r.Incident == nil {
		return fmt.Errorf("report has no incident")
	}
	return nil
}
