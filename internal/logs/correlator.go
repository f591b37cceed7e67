package logs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/incident"
)

// Correlator searches per-service log lines loaded once at construction.
// It never modifies the lines, so concurrent searches are safe.
type Correlator struct {
	services []Service
}

// NewCorrelator creates a correlator over the given services
func NewCorrelator(services []Service) *Correlator {
	return &Correlator{services: services}
}

// Services returns the loaded service names in load order
func (c *Correlator) Services() []string {
	names := make([]string, 0, len(c.services))
	for _, s := range c.services {
		names = append(names, s.Name)
	}
	return names
}

// Search returns, per service, the parsed lines containing at least one of
// terms as a case-sensitive substring
func (c *Correlator) Search(terms []string) *SearchResult {
	result := &SearchResult{}
	terms = usableTerms(terms)
	if len(terms) == 0 || c == nil {
		return result
	}

	for _, s := range c.services {
		var matches []Entry
		for i, line := range s.Lines {
			if !containsAny(line, terms) {
				continue
			}
			entry := ParseLine(line, i+1)
			entry.Service = s.Name
			matches = append(matches, entry)
		}
		if len(matches) > 0 {
			result.Services = append(result.Services, ServiceEntries{Service: s.Name, Entries: matches})
		}
	}

	return result
}

// ErrorsOnly is Search restricted to ERROR entries
func (c *Correlator) ErrorsOnly(terms []string) *SearchResult {
	return c.Search(terms).Errors()
}

// WarningsOnly is Search restricted to WARN entries
func (c *Correlator) WarningsOnly(terms []string) *SearchResult {
	return c.Search(terms).Warnings()
}

// Timeline returns all matching entries ordered by timestamp
func (c *Correlator) Timeline(terms []string) []Entry {
	return c.Search(terms).Timeline()
}

// AffectedServices returns the services with at least one match
func (c *Correlator) AffectedServices(terms []string) []string {
	return c.Search(terms).AffectedServices()
}

// AnalyzePatterns aggregates matching entries by level and service
func (c *Correlator) AnalyzePatterns(terms []string) PatternStats {
	return c.Search(terms).Analyze()
}

// ExtractEntities collects identifiers mentioned in matching log messages
func (c *Correlator) ExtractEntities(terms []string) Entities {
	sets := map[incident.EntityType]map[string]bool{
		incident.EntityContainer: {},
		incident.EntityVessel:    {},
		incident.EntityErrorCode: {},
		incident.EntityReference: {},
	}

	for _, s := range c.Search(terms).Services {
		for _, e := range s.Entries {
			found := incident.ExtractEntities(e.Message)
			for t, set := range sets {
				for _, v := range found[t] {
					set[v] = true
				}
			}
		}
	}

	return Entities{
		Containers:   sortedKeys(sets[incident.EntityContainer]),
		Vessels:      sortedKeys(sets[incident.EntityVessel]),
		ErrorCodes:   sortedKeys(sets[incident.EntityErrorCode]),
		ReferenceIDs: sortedKeys(sets[incident.EntityReference]),
	}
}

// ContextAroundErrors returns each matching ERROR line together with up to
// n lines before and after it from the same service
func (c *Correlator) ContextAroundErrors(terms []string, n int) []ErrorContext {
	terms = usableTerms(terms)
	if len(terms) == 0 || c == nil {
		return nil
	}
	if n < 0 {
		n = 0
	}

	var contexts []ErrorContext
	for _, s := range c.services {
		for i, line := range s.Lines {
			if !containsAny(line, terms) {
				continue
			}
			entry := ParseLine(line, i+1)
			if entry.Level != common.LevelError {
				continue
			}
			entry.Service = s.Name

			start := max(0, i-n)
			end := min(len(s.Lines), i+n+1)
			contexts = append(contexts, ErrorContext{
				Service: s.Name,
				Error:   entry,
				Before:  parseRange(s, start, i),
				After:   parseRange(s, i+1, end),
			})
		}
	}

	return contexts
}

// Summary renders a human-readable summary of a search
func (c *Correlator) Summary(terms []string) string {
	stats := c.AnalyzePatterns(terms)

	var b strings.Builder
	b.WriteString("Log Search Summary\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "Search Terms: %s\n", strings.Join(terms, ", "))
	fmt.Fprintf(&b, "Total Entries Found: %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "Affected Services: %s\n\n", strings.Join(stats.AffectedServices, ", "))

	b.WriteString("Log Levels:\n")
	fmt.Fprintf(&b, "- ERROR: %d\n", stats.ErrorCount)
	fmt.Fprintf(&b, "- WARN: %d\n", stats.WarningCount)
	fmt.Fprintf(&b, "- INFO: %d\n", stats.LevelCounts["INFO"])
	fmt.Fprintf(&b, "- DEBUG: %d\n\n", stats.LevelCounts["DEBUG"])

	b.WriteString("Service Breakdown:\n")
	for _, service := range stats.AffectedServices {
		fmt.Fprintf(&b, "- %s: %d entries\n", service, stats.ServiceCounts[service])
	}

	if len(stats.UniqueErrors) > 0 {
		b.WriteString("\nUnique Error Messages:\n")
		for i, msg := range stats.UniqueErrors {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, msg)
		}
	}

	return b.String()
}

func parseRange(s Service, start, end int) []Entry {
	entries := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		e := ParseLine(s.Lines[i], i+1)
		e.Service = s.Name
		entries = append(entries, e)
	}
	return entries
}

// usableTerms drops empty terms, which would otherwise match every line
func usableTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(line string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
