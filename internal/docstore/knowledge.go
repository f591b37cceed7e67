package docstore

import (
	"sort"
	"strings"

	"github.com/yildizm/PortTriage/internal/common"
)

// ProcedureIndicators mark a section body as a procedure
var ProcedureIndicators = []string{"step", "procedure", "sop", "1.", "2."}

// KnowledgeBase searches knowledge-base sections. When no sections were
// detected the whole document is searched as a single section titled
// "Full Document". It is read-only after construction.
type KnowledgeBase struct {
	sections []*Section
	content  string
}

// NewKnowledgeBase creates a knowledge base over sections, falling back to
// content when sections is empty
func NewKnowledgeBase(sections []*Section, content string) *KnowledgeBase {
	return &KnowledgeBase{sections: sections, content: content}
}

// FromDocuments merges the sections of several documents in order. When no
// document has sections their content becomes the fallback text; otherwise a
// document without sections is kept as one section of its own.
func FromDocuments(docs []*Document) *KnowledgeBase {
	var sections []*Section
	var contents []string
	sectioned := false
	for _, doc := range docs {
		if len(doc.Sections) > 0 {
			sectioned = true
			sections = append(sections, doc.Sections...)
			continue
		}
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		contents = append(contents, doc.Content)
		heading := doc.Title
		if heading == "" {
			heading = FullDocumentTitle
		}
		sections = append(sections, &Section{
			DocumentID: doc.ID,
			Heading:    heading,
			Content:    doc.Content,
			WordCount:  len(strings.Fields(doc.Content)),
		})
	}
	if !sectioned {
		return NewKnowledgeBase(nil, strings.Join(contents, "\n"))
	}
	return NewKnowledgeBase(sections, strings.Join(contents, "\n"))
}

// Sections returns the detected sections
func (kb *KnowledgeBase) Sections() []*Section {
	if kb == nil {
		return nil
	}
	return kb.sections
}

// Content returns the full document text
func (kb *KnowledgeBase) Content() string {
	if kb == nil {
		return ""
	}
	return kb.content
}

// IsFullDocument reports whether searches run against the whole document
func (kb *KnowledgeBase) IsFullDocument() bool {
	return kb != nil && len(kb.sections) == 0
}

// Empty reports whether there is nothing to search
func (kb *KnowledgeBase) Empty() bool {
	return kb == nil || (len(kb.sections) == 0 && strings.TrimSpace(kb.content) == "")
}

// SearchByKeywords scores sections by the fraction of keywords found in the
// title and body. Zero-score sections are left out and ties keep load order.
func (kb *KnowledgeBase) SearchByKeywords(keywords []string) []Match {
	if len(keywords) == 0 || kb.Empty() {
		return nil
	}

	if kb.IsFullDocument() {
		score, matched := common.KeywordOverlap(kb.content, keywords)
		if len(matched) == 0 {
			return nil
		}
		return []Match{{
			SectionTitle:    FullDocumentTitle,
			Content:         kb.content,
			Relevance:       score,
			MatchedKeywords: matched,
		}}
	}

	var matches []Match
	for _, s := range kb.sections {
		score, matched := common.KeywordOverlap(s.Heading+" "+s.Content, keywords)
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, Match{
			SectionTitle:    s.Heading,
			Content:         s.Content,
			Relevance:       score,
			MatchedKeywords: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})

	return matches
}

// SearchProcedures keeps the keyword matches whose body looks like a procedure
func (kb *KnowledgeBase) SearchProcedures(keywords []string) []Match {
	var procedures []Match
	for _, m := range kb.SearchByKeywords(keywords) {
		if common.ContainsAny(strings.ToLower(m.Content), ProcedureIndicators...) {
			procedures = append(procedures, m)
		}
	}
	return procedures
}

// SectionByTitle returns the first section whose heading contains title,
// ignoring case
func (kb *KnowledgeBase) SectionByTitle(title string) (*Section, bool) {
	needle := strings.ToLower(title)
	for _, s := range kb.Sections() {
		if strings.Contains(strings.ToLower(s.Heading), needle) {
			return s, true
		}
	}
	return nil, false
}
