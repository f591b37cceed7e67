package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/incident"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 && n > -1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 0 {
		return "-" + addCommas(fmt.Sprintf("%d", -n))
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// percent renders a 0..1 score as a whole percentage
func percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// severityEmoji returns the emoji for an incident severity
func severityEmoji(sev incident.Severity, opts *termfmt.TerminalOptions) string {
	switch sev {
	case incident.SeverityCritical, incident.SeverityHigh:
		return termfmt.GetEmoji("error", opts)
	case incident.SeverityMedium:
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}

// levelEmoji returns the emoji for a log level
func levelEmoji(level common.LogLevel, opts *termfmt.TerminalOptions) string {
	switch level {
	case common.LevelError:
		return termfmt.GetEmoji("error_pattern", opts)
	case common.LevelWarn:
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}

// singleLine collapses whitespace so a value fits one tree row
func singleLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n > 0 && len([]rune(s)) > n {
		return common.Truncate(s, n) + "..."
	}
	return s
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
