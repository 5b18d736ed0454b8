package book

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CharsPerFragment is the budget of the line-based pagination used by the
// parse endpoint.
const CharsPerFragment = 1000

// Fragments paginates paragraphs into HTML strings, one per page, each a run
// of <p> elements. Blank paragraphs are skipped. Unlike Paginate there is no
// cover page and no TOC; this mirrors the output of the external parsing
// script so either backend can serve the endpoint.
func Fragments(paragraphs []string, budget int) []string {
	if budget <= 0 {
		budget = CharsPerFragment
	}

	var (
		pages     []string
		current   strings.Builder
		charCount int
	)

	for _, text := range paragraphs {
		if strings.TrimSpace(text) == "" {
			continue
		}
		n := utf8.RuneCountInString(text)
		para := "<p>" + html.EscapeString(text) + "</p>"
		if charCount+n > budget && current.Len() > 0 {
			pages = append(pages, current.String())
			current.Reset()
			charCount = 0
		}
		current.WriteString(para)
		charCount += n
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}
	return pages
}
