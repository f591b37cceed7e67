package logs

import (
	"github.com/yildizm/PortTriage/internal/common"
)

// Service is one named collection of raw log lines, in file order
type Service struct {
	Name  string   `json:"name"`
	Lines []string `json:"-"`
}

// Entry is a log line parsed with the service log grammar
type Entry struct {
	Service   string          `json:"service,omitempty"`
	LineNum   int             `json:"line_num"`
	Timestamp string          `json:"timestamp,omitempty"`
	Level     common.LogLevel `json:"level"`
	Component string          `json:"component"`
	Message   string          `json:"message"`
	Raw       string          `json:"raw"`
}

// HasTimestamp reports whether the line carried a parseable timestamp
func (e Entry) HasTimestamp() bool {
	return e.Timestamp != ""
}

// ServiceEntries holds the matching entries of one service
type ServiceEntries struct {
	Service string  `json:"service"`
	Entries []Entry `json:"entries"`
}

// PatternStats aggregates a search result by level and by service
type PatternStats struct {
	TotalEntries     int            `json:"total_entries"`
	AffectedServices []string       `json:"affected_services"`
	LevelCounts      map[string]int `json:"level_counts"`
	ServiceCounts    map[string]int `json:"service_counts"`
	UniqueErrors     []string       `json:"unique_errors"`
	ErrorCount       int            `json:"error_count"`
	WarningCount     int            `json:"warning_count"`
}

// Entities are identifiers seen in matching log messages
type Entities struct {
	Containers   []string `json:"containers"`
	Vessels      []string `json:"vessels"`
	ErrorCodes   []string `json:"error_codes"`
	ReferenceIDs []string `json:"reference_ids"`
}

// ErrorContext is an ERROR line with the lines around it
type ErrorContext struct {
	Service string  `json:"service"`
	Error   Entry   `json:"error_line"`
	Before  []Entry `json:"before"`
	After   []Entry `json:"after"`
}
