package reader

import (
	"testing"
)

func TestExtractParagraphsFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Test</title></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<p>Second &amp; last.</p>
			<div>Some <span>nested</span> text.</div>
		</body>
	</html>
	`

	expected := []string{"Chapter 1", "This is the first paragraph.", "Second & last."}

	paras := extractParagraphsFromHTML(htmlContent)

	if len(paras) != len(expected) {
		t.Fatalf("Expected %d paragraphs, got %d: %q", len(expected), len(paras), paras)
	}
	for i := range expected {
		if paras[i] != expected[i] {
			t.Errorf("Paragraph %d: expected %q, got %q", i, expected[i], paras[i])
		}
	}
}

func TestExtractParagraphsFromEPUBInvalid(t *testing.T) {
	if _, err := ExtractParagraphsFromEPUB([]byte("nope")); err == nil {
		t.Error("expected error for invalid epub")
	}
}
