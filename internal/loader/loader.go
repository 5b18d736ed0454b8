// Package loader fetches documents and turns them into paginated books.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/reader"
)

// FetchError reports a document that could not be retrieved.
type FetchError struct {
	Source string
	Status string // HTTP status line, empty for local files
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != "" {
		return "failed to load document: " + e.Status
	}
	return fmt.Sprintf("failed to load document: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError reports a document that was fetched but could not be parsed.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Document is a fetched source file.
type Document struct {
	Source string
	Name   string // base name, used to pick the format
	Data   []byte
}

// Loader fetches documents from URLs or local paths.
type Loader struct {
	Client  *http.Client
	Options book.Options
}

// New returns a Loader using http.DefaultClient.
func New(opts book.Options) *Loader {
	return &Loader{Client: http.DefaultClient, Options: opts}
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Fetch retrieves the raw bytes of source.
func (l *Loader) Fetch(ctx context.Context, source string) (*Document, error) {
	if !IsURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, &FetchError{Source: source, Err: err}
		}
		return &Document{Source: source, Name: filepath.Base(source), Data: data}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Source: source,
			Status: resp.Status,
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	u, _ := url.Parse(source)
	return &Document{Source: source, Name: path.Base(u.Path), Data: data}, nil
}

// Render extracts paragraphs from doc and paginates them.
func (l *Loader) Render(doc *Document) (*book.Book, error) {
	paras, err := reader.Paragraphs(doc.Name, doc.Data)
	if err != nil {
		return nil, &RenderError{Name: doc.Name, Err: err}
	}
	return book.Paginate(paras, l.Options), nil
}

// Load fetches and renders source. On failure the returned book is a single
// error page and the error is returned alongside it, so callers can always
// display something.
func (l *Loader) Load(ctx context.Context, source string) (*Document, *book.Book, error) {
	doc, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, book.ErrorBook(err), err
	}
	b, err := l.Render(doc)
	if err != nil {
		return doc, book.ErrorBook(err), err
	}
	return doc, b, nil
}
