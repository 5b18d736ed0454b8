package reader

import (
	"testing"
)

func TestMarkdownParagraphs(t *testing.T) {
	content := `# Introduction
This is the introduction,
split over two lines.

## Getting *Started*

- first item
- second item

Plain closing paragraph.
`

	f := &MarkdownFormat{}
	paras, err := f.Paragraphs([]byte(content))
	if err != nil {
		t.Fatalf("Paragraphs failed: %v", err)
	}

	expected := []string{
		"Introduction",
		"This is the introduction, split over two lines.",
		"Getting Started",
		"first item",
		"second item",
		"Plain closing paragraph.",
	}
	if len(paras) != len(expected) {
		t.Fatalf("Expected %d paragraphs, got %d: %q", len(expected), len(paras), paras)
	}
	for i := range expected {
		if paras[i] != expected[i] {
			t.Errorf("Paragraph %d: expected %q, got %q", i, expected[i], paras[i])
		}
	}
}

func TestMarkdownNoContent(t *testing.T) {
	f := &MarkdownFormat{}
	paras, err := f.Paragraphs(nil)
	if err != nil {
		t.Fatalf("Paragraphs failed: %v", err)
	}
	if len(paras) != 0 {
		t.Errorf("Expected no paragraphs, got %q", paras)
	}
}
