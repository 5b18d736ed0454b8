package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/docxtest"
)

func TestLoadURL(t *testing.T) {
	data := docxtest.New("Muqaddima", "matn davom etadi.")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book.docx" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	l := New(book.Options{})
	doc, b, err := l.Load(context.Background(), srv.URL+"/book.docx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Name != "book.docx" {
		t.Errorf("Name = %q, want book.docx", doc.Name)
	}
	if len(b.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(b.Pages))
	}
	if len(b.TOC) != 1 || b.TOC[0].Page != 2 {
		t.Errorf("Expected one TOC entry on page 2, got %+v", b.TOC)
	}
}

func TestLoadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := New(book.Options{})
	_, b, err := l.Load(context.Background(), srv.URL+"/missing.docx")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if len(b.Pages) != 1 || b.Pages[0].Kind != book.KindError {
		t.Fatalf("Expected a single error page, got %+v", b.Pages)
	}
	if !strings.Contains(b.Pages[0].Lines[0], "Not Found") {
		t.Errorf("Error page should mention status text, got %q", b.Pages[0].Lines[0])
	}
}

func TestLoadLocalFile(t *testing.T) {
	path := docxtest.WriteFile(t, t.TempDir(), "book.docx", "Bob", "text")

	doc, b, err := New(book.Options{CoverTitle: "Local"}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Source != path {
		t.Errorf("Source = %q, want %q", doc.Source, path)
	}
	if b.Pages[0].Lines[0] != "Local" {
		t.Errorf("Cover title = %q", b.Pages[0].Lines[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, b, err := New(book.Options{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.docx"))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if !b.Failed() {
		t.Error("Expected error book")
	}
}

func TestLoadRenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a zip archive"))
	}))
	defer srv.Close()

	doc, b, err := New(book.Options{}).Load(context.Background(), srv.URL+"/book.docx")
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Expected RenderError, got %v", err)
	}
	if doc == nil {
		t.Error("Fetched document should be returned with a render error")
	}
	if !b.Failed() {
		t.Error("Expected error book")
	}
}

func TestLoadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(book.Options{}).Load(ctx, srv.URL+"/book.docx")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"http://localhost:8080/book.docx": true,
		"https://example.com/a.docx":      true,
		"/tmp/book.docx":                  false,
		"book.docx":                       false,
		"file:///tmp/book.docx":           false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
