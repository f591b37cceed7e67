package docstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const kbMarkdown = `---
title: "Port Operations Knowledge Base"
author: "Ops Team"
tags: ["edi", "vessel"]
---

Intro text that belongs to no section.

# EDI Message Stuck

When an EDI message is stuck, follow the procedure:
1. Check the ack flag
2. Resend the message

## Duplicate Container

Remove the duplicate container from the yard table.
`

func TestScanner_ExtractMetadata(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name           string
		content        string
		expectedAuthor string
		expectedTags   int
		expectError    bool
	}{
		{
			name:           "Valid frontmatter",
			content:        kbMarkdown,
			expectedAuthor: "Ops Team",
			expectedTags:   2,
		},
		{
			name:    "No frontmatter",
			content: "# Heading\n\nBody",
		},
		{
			name:        "Invalid YAML",
			content:     "---\ntitle: \"broken\nauthor: x: y\n---\n\nBody",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, _, err := scanner.ExtractMetadata(tt.content)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if metadata.Author != tt.expectedAuthor {
				t.Errorf("Expected author %q, got %q", tt.expectedAuthor, metadata.Author)
			}
			if len(metadata.Tags) != tt.expectedTags {
				t.Errorf("Expected %d tags, got %d", tt.expectedTags, len(metadata.Tags))
			}
		})
	}
}

func TestScanner_SplitSections(t *testing.T) {
	scanner := NewScanner()
	_, body, err := scanner.ExtractMetadata(kbMarkdown)
	if err != nil {
		t.Fatalf("ExtractMetadata failed: %v", err)
	}

	sections := scanner.SplitSections(body)
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Heading != "EDI Message Stuck" || sections[0].Level != 1 {
		t.Errorf("first section = %+v", sections[0])
	}
	if sections[1].Heading != "Duplicate Container" || sections[1].Level != 2 {
		t.Errorf("second section = %+v", sections[1])
	}
	if strings.Contains(sections[0].Content, "Intro text") {
		t.Error("text before the first heading should not join a section")
	}
	if !strings.HasPrefix(sections[0].Content, "When an EDI message") {
		t.Errorf("section content = %q", sections[0].Content)
	}

	if got := scanner.SplitSections("no headings here\n#hashtag is not a heading"); len(got) != 0 {
		t.Errorf("Expected no sections, got %d", len(got))
	}
}

func TestScanner_ScanFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kb.md"), []byte(kbMarkdown), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("VESSEL ADVICE\nCreate the advice again.\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.pdf"), []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	scanner := NewScanner()
	doc, err := scanner.ScanFile(filepath.Join(dir, "kb.md"))
	if err != nil {
		t.Fatalf("ScanFile failed: %v", err)
	}
	if doc.Title != "Port Operations Knowledge Base" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Metadata.Format != "markdown" || doc.Hash == "" {
		t.Errorf("unexpected document %+v", doc)
	}

	docs, err := scanner.ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	var text *Document
	for _, d := range docs {
		if d.Metadata.Format == "text" {
			text = d
		}
	}
	if text == nil || len(text.Sections) != 1 || text.Sections[0].Heading != "VESSEL ADVICE" {
		t.Errorf("plain text document parsed as %+v", text)
	}
}

func TestIsHeading(t *testing.T) {
	tests := map[string]bool{
		"VESSEL ADVICE":                    true,
		"3.2 Vessel advice creation":       true,
		"Duplicate Container Handling":     true,
		"Resolution of the Booking Issue":  true,
		"1. Check the queue":               false,
		"Check the queue for stuck items.": false,
		"resend the message":               false,
		"Overview":                         false,
		"":                                 false,
	}
	for para, want := range tests {
		if got := IsHeading(para); got != want {
			t.Errorf("IsHeading(%q) = %v, want %v", para, got, want)
		}
	}
}
