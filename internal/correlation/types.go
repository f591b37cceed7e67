package correlation

import (
	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/logs"
)

// Context is the evidence gathered for one incident
type Context struct {
	SearchTerms        []string         `json:"search_terms"`
	Logs               LogContext       `json:"logs"`
	LogAnalysis        *LogAnalysis     `json:"log_analysis"`
	HistoricalCases    CaseContext      `json:"historical_cases"`
	KnowledgeBase      KnowledgeContext `json:"knowledge_base"`
	EscalationContacts ContactContext   `json:"escalation_contacts"`
}

// LogContext holds the log search and its derived views
type LogContext struct {
	Results          *logs.SearchResult `json:"results"`
	Errors           *logs.SearchResult `json:"errors"`
	Warnings         *logs.SearchResult `json:"warnings"`
	Timeline         []logs.Entry       `json:"timeline"`
	AffectedServices []string           `json:"affected_services"`
	Stats            logs.PatternStats  `json:"analysis"`
	Summary          string             `json:"summary"`
}

// LogAnalysis condenses a non-empty log search
type LogAnalysis struct {
	ErrorMessages    []ErrorMessage `json:"error_messages"`
	Patterns         []string       `json:"patterns"`
	ErrorCount       int            `json:"error_count"`
	WarningCount     int            `json:"warning_count"`
	AffectedServices []string       `json:"affected_services"`
}

// ErrorMessage is a key error line picked for the analysis
type ErrorMessage struct {
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message"`
}

// CaseContext holds similar and same-module historical cases
type CaseContext struct {
	Similar      []cases.Match `json:"similar_cases"`
	ModuleCases  []cases.Case  `json:"module_cases"`
	TotalSimilar int           `json:"total_similar"`
	Summary      string        `json:"summary"`
}

// KnowledgeContext holds matching knowledge-base sections
type KnowledgeContext struct {
	Articles      []docstore.Match `json:"articles"`
	Procedures    []docstore.Match `json:"procedures"`
	TotalArticles int              `json:"total_articles"`
	Summary       string           `json:"summary"`
}

// ContactContext holds the routed escalation contacts
type ContactContext struct {
	Contacts []contacts.Contact `json:"contacts"`
	Total    int                `json:"total"`
	Summary  string             `json:"summary"`
}

// Pattern flags raised by log analysis
const (
	PatternMultipleErrors   = "Multiple errors detected"
	PatternMultipleServices = "Multiple services affected"
	PatternSequence         = "Errors occurred in sequence"
)
