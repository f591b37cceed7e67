package logs

import (
	"regexp"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
)

// TimestampLayout is the Go layout of the service log timestamp
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// lineGrammar matches "<timestamp> <LEVEL> <component> <message>"
var lineGrammar = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)\s+(DEBUG|INFO|WARN|ERROR)\s+(\S+)\s*(.*)$`)

// ParseLine parses one raw line. Lines that do not follow the grammar become
// UNKNOWN entries with no timestamp, component "unknown" and the whole line
// as message.
func ParseLine(line string, lineNum int) Entry {
	raw := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(raw)

	m := lineGrammar.FindStringSubmatch(trimmed)
	if m == nil {
		return Entry{
			LineNum:   lineNum,
			Level:     common.LevelUnknown,
			Component: "unknown",
			Message:   trimmed,
			Raw:       raw,
		}
	}

	return Entry{
		LineNum:   lineNum,
		Timestamp: m[1],
		Level:     common.ParseLogLevel(m[2]),
		Component: m[3],
		Message:   strings.TrimSpace(m[4]),
		Raw:       raw,
	}
}

// FormatEntry renders an entry as a single display line
func FormatEntry(e Entry) string {
	return "[" + e.Timestamp + "] " + e.Level.String() + " " + e.Component + ": " + e.Message
}

// IsCanonical reports whether a line follows the service log grammar
func IsCanonical(line string) bool {
	return lineGrammar.MatchString(strings.TrimSpace(line))
}
