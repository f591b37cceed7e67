package logs

import (
	"sort"

	"github.com/yildizm/PortTriage/internal/common"
)

// SearchResult maps each service with at least one matching line to its
// entries. Services appear in load order and a service with no match is
// absent.
type SearchResult struct {
	Services []ServiceEntries `json:"services"`
}

// Empty reports whether nothing matched
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Services) == 0
}

// Total returns the number of matching entries across services
func (r *SearchResult) Total() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, s := range r.Services {
		total += len(s.Entries)
	}
	return total
}

// Entries returns the entries for one service, or nil when it is absent
func (r *SearchResult) Entries(service string) []Entry {
	if r == nil {
		return nil
	}
	for _, s := range r.Services {
		if s.Service == service {
			return s.Entries
		}
	}
	return nil
}

// Errors keeps only ERROR entries; services left without any are dropped
func (r *SearchResult) Errors() *SearchResult {
	return r.filter(common.LevelError)
}

// Warnings keeps only WARN entries; services left without any are dropped
func (r *SearchResult) Warnings() *SearchResult {
	return r.filter(common.LevelWarn)
}

func (r *SearchResult) filter(level common.LogLevel) *SearchResult {
	out := &SearchResult{}
	if r == nil {
		return out
	}

	for _, s := range r.Services {
		var kept []Entry
		for _, e := range s.Entries {
			if e.Level == level {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			out.Services = append(out.Services, ServiceEntries{Service: s.Service, Entries: kept})
		}
	}

	return out
}

// Timeline flattens all entries and orders them by timestamp string. The sort
// is stable, and entries without a timestamp compare as the empty string so
// they come first.
func (r *SearchResult) Timeline() []Entry {
	if r == nil {
		return nil
	}

	timeline := make([]Entry, 0, r.Total())
	for _, s := range r.Services {
		timeline = append(timeline, s.Entries...)
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp < timeline[j].Timestamp
	})

	return timeline
}

// AffectedServices lists the services with at least one match
func (r *SearchResult) AffectedServices() []string {
	if r == nil {
		return nil
	}
	services := make([]string, 0, len(r.Services))
	for _, s := range r.Services {
		services = append(services, s.Service)
	}
	return services
}

// Analyze aggregates the result by level and by service
func (r *SearchResult) Analyze() PatternStats {
	stats := PatternStats{
		AffectedServices: r.AffectedServices(),
		LevelCounts:      make(map[string]int),
		ServiceCounts:    make(map[string]int),
	}
	if r == nil {
		return stats
	}

	seenErrors := make(map[string]bool)
	for _, s := range r.Services {
		stats.ServiceCounts[s.Service] = len(s.Entries)
		stats.TotalEntries += len(s.Entries)

		for _, e := range s.Entries {
			stats.LevelCounts[e.Level.String()]++
			if e.Level == common.LevelError && !seenErrors[e.Message] {
				seenErrors[e.Message] = true
				stats.UniqueErrors = append(stats.UniqueErrors, e.Message)
			}
		}
	}

	stats.ErrorCount = stats.LevelCounts[common.LevelError.String()]
	stats.WarningCount = stats.LevelCounts[common.LevelWarn.String()]

	return stats
}
