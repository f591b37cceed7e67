package formatter

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/PortTriage/internal/incident"
)

// Palette colors, light and dark variants
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#3B82F6"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}
	colorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// styles holds the lipgloss styles of the terminal report. When color is
// off every style is a no-op so output stays plain.
type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	badges  map[incident.Severity]lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			header:  plain,
			section: plain,
			muted:   plain,
			badges:  map[incident.Severity]lipgloss.Style{},
		}
	}

	badge := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return styles{
		header: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		section: lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		badges: map[incident.Severity]lipgloss.Style{
			incident.SeverityCritical: badge(colorError),
			incident.SeverityHigh:     badge(colorWarning),
			incident.SeverityMedium:   badge(colorInfo),
			incident.SeverityLow:      badge(colorSuccess),
		},
	}
}

// severity renders a severity as a bracketed badge
func (s styles) severity(sev incident.Severity) string {
	text := "[" + string(sev) + "]"
	if style, ok := s.badges[sev]; ok {
		return style.Render(text)
	}
	return text
}
