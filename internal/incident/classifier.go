package incident

import (
	"strings"
)

// Predicate inspects the lower-cased incident text and its entities
type Predicate func(lower string, entities Entities) bool

// Rule pairs a predicate with the outcome it selects. Classifiers evaluate
// their rules in order and the first match wins.
type Rule[T any] struct {
	Name    string
	Match   Predicate
	Outcome T
}

func phrases(words ...string) Predicate {
	return func(lower string, _ Entities) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}

func hasEntity(t EntityType) Predicate {
	return func(_ string, entities Entities) bool {
		return entities.Has(t)
	}
}

func anyOf(preds ...Predicate) Predicate {
	return func(lower string, entities Entities) bool {
		for _, p := range preds {
			if p(lower, entities) {
				return true
			}
		}
		return false
	}
}

var typeRules = []Rule[IncidentType]{
	{"duplicate", phrases("duplicate", "duplicated", "two identical", "2 identical"), TypeDuplicateEntry},
	{"stuck", phrases("stuck", "error status", "not acknowledged"), TypeStuckProcess},
	{"inconsistency", phrases("inconsistency", "mismatch", "conflicting"), TypeDataInconsistency},
	{"timeout", phrases("timeout", "timed out", "not responding"), TypeTimeout},
	{"creation failure", phrases("unable to create", "cannot create", "creation failed"), TypeCreationFailure},
	{"error code", hasEntity(EntityErrorCode), TypeErrorCode},
	{"failure", phrases("failed", "failure", "error"), TypeGeneralError},
}

var moduleRules = []Rule[Module]{
	{"edi", phrases("edi", "edifact", "codeco", "baplie", "coarri"), ModuleEDI},
	{"vessel", phrases("vessel", "ship", "berth", "arrival", "departure"), ModuleVessel},
	{"container", anyOf(hasEntity(EntityContainer), phrases("container", "cntr")), ModuleContainer},
	{"booking", phrases("booking", "bk-"), ModuleBooking},
	{"database", phrases("database", "db", "query", "sql"), ModuleDatabase},
}

var severityRules = []Rule[Severity]{
	{"critical", phrases("urgent", "critical", "immediately", "production down", "outage"), SeverityCritical},
	{"high", phrases("high priority", "multiple", "affecting customers", "business impact"), SeverityHigh},
	{"low", phrases("minor", "low priority", "cosmetic", "display only"), SeverityLow},
}

// TypeRules returns the incident type decision table in evaluation order
func TypeRules() []Rule[IncidentType] { return append([]Rule[IncidentType](nil), typeRules...) }

// ModuleRules returns the module decision table in evaluation order
func ModuleRules() []Rule[Module] { return append([]Rule[Module](nil), moduleRules...) }

// SeverityRules returns the severity decision table in evaluation order
func SeverityRules() []Rule[Severity] { return append([]Rule[Severity](nil), severityRules...) }

func evaluate[T any](rules []Rule[T], text string, entities Entities, fallback T) T {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.Match(lower, entities) {
			return r.Outcome
		}
	}
	return fallback
}

// Classify derives the incident type
func Classify(text string, entities Entities) IncidentType {
	return evaluate(typeRules, text, entities, TypeUnknown)
}

// IdentifyModule derives the affected module
func IdentifyModule(text string, entities Entities) Module {
	return evaluate(moduleRules, text, entities, ModuleGeneral)
}

// EstimateSeverity derives the severity tier
func EstimateSeverity(text string) Severity {
	return evaluate(severityRules, text, nil, SeverityMedium)
}
