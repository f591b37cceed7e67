package cases

import (
	"sort"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
)

// Match is a case scored against a keyword set
type Match struct {
	Case            Case     `json:"case"`
	Similarity      float64  `json:"similarity"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// Statistics summarises the loaded case log
type Statistics struct {
	TotalCases int            `json:"total_cases"`
	Modules    map[string]int `json:"modules"`
	EDICases   int            `json:"edi_cases"`
}

// Store holds historical cases in load order. It is read-only after
// construction.
type Store struct {
	cases []Case
}

// NewStore creates a store over the given cases
func NewStore(cases []Case) *Store {
	return &Store{cases: cases}
}

// All returns every case in load order
func (s *Store) All() []Case {
	if s == nil {
		return nil
	}
	return s.cases
}

// Len returns the number of loaded cases
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cases)
}

// SearchByKeywords scores every case by the fraction of keywords found in its
// problem statement and solution. Cases without any match are left out and
// ties keep load order.
func (s *Store) SearchByKeywords(keywords []string) []Match {
	if len(keywords) == 0 || s == nil {
		return nil
	}

	var matches []Match
	for _, c := range s.cases {
		score, matched := common.KeywordOverlap(c.searchText(), keywords)
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, Match{
			Case:            c,
			Similarity:      score,
			MatchedKeywords: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return matches
}

// SearchSimilar returns the top n keyword matches
func (s *Store) SearchSimilar(keywords []string, n int) []Match {
	matches := s.SearchByKeywords(keywords)
	if n >= 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// SearchByModule returns the cases whose module equals module, ignoring case
func (s *Store) SearchByModule(module string) []Case {
	if s == nil {
		return nil
	}

	var out []Case
	for _, c := range s.cases {
		if strings.EqualFold(c.Module(), module) {
			out = append(out, c)
		}
	}
	return out
}

// Statistics counts cases overall, per module and flagged as EDI
func (s *Store) Statistics() Statistics {
	stats := Statistics{Modules: make(map[string]int)}
	for _, c := range s.All() {
		stats.TotalCases++
		if m := c.Module(); m != "" {
			stats.Modules[m]++
		}
		if c.Get(FieldEDI) == "Yes" {
			stats.EDICases++
		}
	}
	return stats
}
