package docstore

import (
	"time"
)

// FullDocumentTitle names the single section used when a document has no
// detectable section boundaries
const FullDocumentTitle = "Full Document"

// Document is one knowledge-base source file
type Document struct {
	ID           string     `json:"id"`
	Path         string     `json:"path"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Metadata     *Metadata  `json:"metadata"`
	Sections     []*Section `json:"sections"`
	LastModified time.Time  `json:"last_modified"`
	Size         int64      `json:"size"`
	Hash         string     `json:"hash"`
}

// Section is a titled chunk of a document
type Section struct {
	DocumentID string `json:"document_id,omitempty"`
	Heading    string `json:"heading"`
	Content    string `json:"content"`
	Level      int    `json:"level"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	WordCount  int    `json:"word_count"`
}

// Metadata holds frontmatter values
type Metadata struct {
	Tags     []string               `json:"tags"`
	Author   string                 `json:"author"`
	Date     *time.Time             `json:"date"`
	Custom   map[string]interface{} `json:"custom"`
	Language string                 `json:"language"`
	Format   string                 `json:"format"`
}

// Match is a section scored against a keyword set
type Match struct {
	SectionTitle    string   `json:"section_title"`
	Content         string   `json:"content"`
	Relevance       float64  `json:"relevance"`
	MatchedKeywords []string `json:"matched_keywords"`
}
