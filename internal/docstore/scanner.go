package docstore

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scanner turns knowledge-base files into documents with sections. Markdown
// files are split at ATX headings; plain text files are split with the
// heading heuristics of SplitParagraphs.
type Scanner struct {
	includePatterns []string
	excludePatterns []string
	warn            func(path string, err error)
}

// NewScanner creates a scanner for markdown and plain text knowledge files
func NewScanner() *Scanner {
	return &Scanner{
		includePatterns: []string{"*.md", "*.markdown", "*.txt"},
		excludePatterns: []string{".git", "node_modules", "vendor"},
	}
}

// OnWarning registers a callback for files skipped during directory scans
func (s *Scanner) OnWarning(fn func(path string, err error)) *Scanner {
	s.warn = fn
	return s
}

// ScanFile reads and parses a single knowledge file
func (s *Scanner) ScanFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}

	content, err := os.ReadFile(path) //nolint:gosec // path comes from configuration or directory walk
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return s.parseDocument(string(content), path, info.ModTime(), info.Size())
}

// ScanDirectory scans a directory recursively for knowledge files. Files that
// fail to parse are reported through OnWarning and skipped.
func (s *Scanner) ScanDirectory(root string) ([]*Document, error) {
	var documents []*Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || s.excluded(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !s.included(name) {
			return nil
		}

		doc, err := s.ScanFile(path)
		if err != nil {
			if s.warn != nil {
				s.warn(path, err)
			}
			return nil
		}
		documents = append(documents, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	return documents, nil
}

// ParseContent parses knowledge content from a reader. The path only selects
// the format and names the document.
func (s *Scanner) ParseContent(reader io.Reader, path string) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return s.parseDocument(string(content), path, time.Now(), int64(len(content)))
}

// ExtractMetadata extracts YAML frontmatter from markdown content
func (s *Scanner) ExtractMetadata(content string) (*Metadata, string, error) {
	metadata := &Metadata{Custom: make(map[string]interface{})}

	if !strings.HasPrefix(content, "---") {
		return metadata, content, nil
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return metadata, content, nil
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &raw); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	for key, value := range raw {
		switch key {
		case "author":
			metadata.Author, _ = value.(string)
		case "language":
			metadata.Language, _ = value.(string)
		case "date":
			if str, ok := value.(string); ok {
				if date, err := time.Parse("2006-01-02", str); err == nil {
					metadata.Date = &date
				}
			}
		case "tags":
			if tags, ok := value.([]interface{}); ok {
				for _, tag := range tags {
					if str, ok := tag.(string); ok {
						metadata.Tags = append(metadata.Tags, str)
					}
				}
			}
		default:
			metadata.Custom[key] = value
		}
	}

	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return metadata, body, nil
}

// SplitSections splits markdown content at headings. Text before the first
// heading belongs to no section. No headings yields no sections.
func (s *Scanner) SplitSections(content string) []*Section {
	var sections []*Section
	lines := strings.Split(content, "\n")

	var current *Section
	var body []string
	flush := func(endLine int) {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		current.EndLine = endLine
		current.WordCount = len(strings.Fields(current.Content))
		sections = append(sections, current)
	}

	for i, line := range lines {
		level := headingLevel(line)
		if level == 0 {
			body = append(body, line)
			continue
		}
		flush(i)
		current = &Section{
			Heading:   strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#")),
			Level:     level,
			StartLine: i + 1,
		}
		body = nil
	}
	flush(len(lines))

	return sections
}

func (s *Scanner) parseDocument(content, path string, modTime time.Time, size int64) (*Document, error) {
	format := "markdown"
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		format = "text"
	}

	metadata := &Metadata{Custom: make(map[string]interface{})}
	body := content
	var sections []*Section

	if format == "markdown" {
		var err error
		metadata, body, err = s.ExtractMetadata(content)
		if err != nil {
			return nil, fmt.Errorf("failed to extract metadata: %w", err)
		}
		sections = s.SplitSections(body)
	} else {
		sections = SplitParagraphs(body)
	}
	metadata.Format = format

	id := documentID(path)
	for _, section := range sections {
		section.DocumentID = id
	}

	return &Document{
		ID:           id,
		Path:         path,
		Title:        documentTitle(path, metadata, sections),
		Content:      strings.TrimSpace(body),
		Metadata:     metadata,
		Sections:     sections,
		LastModified: modTime,
		Size:         size,
		Hash:         fmt.Sprintf("%x", sha256.Sum256([]byte(content))),
	}, nil
}

func (s *Scanner) included(name string) bool {
	for _, pattern := range s.includePatterns {
		if ok, _ := filepath.Match(pattern, strings.ToLower(name)); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.excludePatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func documentTitle(path string, metadata *Metadata, sections []*Section) string {
	if title, ok := metadata.Custom["title"].(string); ok && title != "" {
		return title
	}
	for _, section := range sections {
		if section.Level == 1 {
			return section.Heading
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func documentID(path string) string {
	id := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(path)
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// headingLevel returns the ATX heading level of a line, or 0
func headingLevel(line string) int {
	trimmed := strings.TrimSpace(line)
	count := 0
	for count < len(trimmed) && trimmed[count] == '#' {
		count++
	}
	if count == 0 || count > 6 {
		return 0
	}
	if count < len(trimmed) && trimmed[count] != ' ' && trimmed[count] != '\t' {
		return 0
	}
	return count
}
