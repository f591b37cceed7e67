package incident

import (
	"time"
)

// IncidentType is the classified nature of an incident
type IncidentType string

const (
	TypeDuplicateEntry    IncidentType = "duplicate_entry"
	TypeStuckProcess      IncidentType = "stuck_process"
	TypeDataInconsistency IncidentType = "data_inconsistency"
	TypeTimeout           IncidentType = "timeout"
	TypeCreationFailure   IncidentType = "creation_failure"
	TypeErrorCode         IncidentType = "error_code_incident"
	TypeGeneralError      IncidentType = "general_error"
	TypeUnknown           IncidentType = "unknown"
)

// Module is the subsystem an incident is attributed to
type Module string

const (
	ModuleEDI       Module = "EDI/API"
	ModuleVessel    Module = "Vessel"
	ModuleContainer Module = "Container"
	ModuleBooking   Module = "Booking"
	ModuleDatabase  Module = "Database"
	ModuleGeneral   Module = "General"
)

// Severity is the urgency tier of an incident
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Escalates reports whether the severity pulls management into routing
func (s Severity) Escalates() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// EntityType names a kind of extracted entity
type EntityType string

const (
	EntityContainer EntityType = "container"
	EntityVessel    EntityType = "vessel"
	EntityErrorCode EntityType = "error_code"
	EntityReference EntityType = "reference"
	EntityEmail     EntityType = "email"
	EntityBooking   EntityType = "booking"
)

// EntityTypes lists every entity type in extraction order
var EntityTypes = []EntityType{
	EntityContainer,
	EntityVessel,
	EntityErrorCode,
	EntityReference,
	EntityEmail,
	EntityBooking,
}

// Entities maps an entity type to its deduplicated matches in first-seen order.
// A type is present only when it matched at least once.
type Entities map[EntityType][]string

// Has reports whether at least one entity of type t was found
func (e Entities) Has(t EntityType) bool {
	return len(e[t]) > 0
}

// Values returns every entity value, iterated in EntityTypes order, without
// duplicates
func (e Entities) Values() []string {
	seen := make(map[string]bool)
	var values []string
	for _, t := range EntityTypes {
		for _, v := range e[t] {
			if seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

// ParsedIncident is the structured form of one free-text incident report.
// It is built once by Parse and not modified afterwards.
type ParsedIncident struct {
	RawText  string       `json:"raw_text" yaml:"raw_text"`
	Entities Entities     `json:"entities" yaml:"entities"`
	Type     IncidentType `json:"incident_type" yaml:"incident_type"`
	Module   Module       `json:"module" yaml:"module"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Keywords []string     `json:"keywords" yaml:"keywords"`
	ParsedAt time.Time    `json:"parsed_at" yaml:"parsed_at"`
}
