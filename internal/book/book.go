// Package book paginates paragraph text into flipbook pages and derives a
// heuristic table of contents.
package book

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

const (
	// CharsPerPage is the soft character budget of a content page.
	CharsPerPage = 2500
	// TitleLength is the number of runes kept in a TOC entry title.
	TitleLength = 50
	// DefaultCoverTitle is shown on the synthetic cover page.
	DefaultCoverTitle = "Kitob Nomi"
)

// Kind distinguishes cover, content and error pages.
type Kind string

const (
	KindCover   Kind = "cover"
	KindContent Kind = "content"
	KindError   Kind = "error"
)

// Page is one flipbook leaf. Content pages are numbered from 1; the cover
// and error pages have number 0.
type Page struct {
	Number int      `json:"number"`
	Kind   Kind     `json:"kind"`
	Lines  []string `json:"lines"`
}

// TOCEntry marks a paragraph that looks like a heading.
type TOCEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Page is the 1-based position in Book.Pages, so the first content page
	// is 2 because the cover occupies position 1.
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Book is a paginated document ready for display.
type Book struct {
	Pages []Page     `json:"pages"`
	TOC   []TOCEntry `json:"toc"`
}

// Options tune pagination.
type Options struct {
	CharsPerPage int
	CoverTitle   string
}

func (o Options) withDefaults() Options {
	if o.CharsPerPage <= 0 {
		o.CharsPerPage = CharsPerPage
	}
	if o.CoverTitle == "" {
		o.CoverTitle = DefaultCoverTitle
	}
	return o
}

// headingRegex matches paragraphs that start, after optional whitespace, with
// an uppercase Latin or Cyrillic letter followed by a word character. It is a
// best-effort guess at headings and will also match ordinary sentences.
var headingRegex = regexp.MustCompile(`^[\s\p{Z}]*[A-ZА-ЯЁ][\p{L}\p{N}_]`)

// IsHeading reports whether a paragraph qualifies as a TOC entry.
func IsHeading(text string) bool {
	return headingRegex.MatchString(text)
}

// Paginate splits paragraphs into pages of at most opts.CharsPerPage runes.
// A paragraph longer than the budget is never split; it gets a page of its
// own. Empty paragraphs are skipped. The cover page is always first.
func Paginate(paragraphs []string, opts Options) *Book {
	opts = opts.withDefaults()

	b := &Book{}
	var (
		buffer    []string
		charCount int
	)

	for idx, text := range paragraphs {
		n := utf8.RuneCountInString(text)
		if n == 0 {
			continue
		}

		if charCount+n > opts.CharsPerPage && len(buffer) > 0 {
			b.Pages = append(b.Pages, contentPage(len(b.Pages)+1, buffer))
			buffer = []string{text}
			charCount = n
		} else {
			buffer = append(buffer, text)
			charCount += n
		}

		if IsHeading(text) {
			b.TOC = append(b.TOC, TOCEntry{
				ID:    tocID(idx),
				Title: truncate(text, TitleLength),
				// len(b.Pages)+1 is the content number of the page holding
				// text; one more accounts for the cover.
				Page: len(b.Pages) + 2,
				Text: text,
			})
		}
	}

	if len(buffer) > 0 {
		b.Pages = append(b.Pages, contentPage(len(b.Pages)+1, buffer))
	}

	b.Pages = append([]Page{{Kind: KindCover, Lines: []string{opts.CoverTitle}}}, b.Pages...)
	return b
}

// ErrorBook returns a book holding a single error page.
func ErrorBook(err error) *Book {
	return &Book{
		Pages: []Page{{Kind: KindError, Lines: []string{"Error: " + err.Error()}}},
	}
}

// ContentPages returns the number of pages excluding the cover.
func (b *Book) ContentPages() int {
	n := 0
	for _, p := range b.Pages {
		if p.Kind == KindContent {
			n++
		}
	}
	return n
}

// Failed reports whether the book is an error book.
func (b *Book) Failed() bool {
	return len(b.Pages) == 1 && b.Pages[0].Kind == KindError
}

func contentPage(number int, lines []string) Page {
	return Page{Number: number, Kind: KindContent, Lines: lines}
}

func tocID(idx int) string {
	return "toc-" + strconv.Itoa(idx)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
