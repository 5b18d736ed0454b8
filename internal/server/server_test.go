package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/config"
	"github.com/metcalfc/flip/internal/docxtest"
	"github.com/metcalfc/flip/internal/parser"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(t *testing.T, p parser.DocumentParser, paragraphs ...string) (*Server, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PublicDir = t.TempDir()
	if paragraphs != nil {
		docxtest.WriteFile(t, cfg.PublicDir, cfg.Document, paragraphs...)
	}
	if p == nil {
		p = NewParser(cfg.Parser)
	}
	return New(cfg, p, quietLogger()), cfg
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := get(t, srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestParseDocx(t *testing.T) {
	srv, _ := newTestServer(t, nil, "Kirish", strings.Repeat("a", 996), "ok")

	w := get(t, srv, "/api/parse-docx")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body parseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(body.Pages))
	}
	for i, p := range body.Pages {
		if p.PageNumber != i+1 {
			t.Errorf("page %d has pageNumber %d", i, p.PageNumber)
		}
	}
	if body.Pages[0].Content != "<p>Kirish</p>" {
		t.Errorf("page 1 content = %q", body.Pages[0].Content)
	}
}

func TestParseDocxNotFound(t *testing.T) {
	srv, cfg := newTestServer(t, nil)

	w := get(t, srv, "/api/parse-docx")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "book.docx not found at " + filepath.Join(cfg.PublicDir, "book.docx")
	if body.Error != want {
		t.Errorf("error = %q, want %q", body.Error, want)
	}
}

type failingParser struct{ err error }

func (f failingParser) Parse(ctx context.Context, path string) ([]string, error) {
	return nil, f.err
}

func TestParseDocxParserFailure(t *testing.T) {
	srv, _ := newTestServer(t, failingParser{err: &parser.SubprocessError{
		Command: "python3 parse_docx.py",
		Err:     errors.New("exit status 1"),
		Stderr:  "ModuleNotFoundError: No module named 'docx'",
	}}, "Body")

	w := get(t, srv, "/api/parse-docx")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No module named") {
		t.Errorf("error body should propagate the parser message, got %s", w.Body.String())
	}
}

func TestBookEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, "Birinchi bob", "matn")

	w := get(t, srv, "/api/book")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var b book.Book
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(b.Pages) != 2 || b.Pages[0].Kind != book.KindCover {
		t.Fatalf("unexpected pages %+v", b.Pages)
	}
	if len(b.TOC) != 1 || b.TOC[0].Page != 2 {
		t.Errorf("unexpected toc %+v", b.TOC)
	}
}

func TestBookEndpointNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := get(t, srv, "/api/book")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestStaticDocument(t *testing.T) {
	srv, cfg := newTestServer(t, nil, "Body")

	w := get(t, srv, "/book.docx")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want, _ := os.ReadFile(filepath.Join(cfg.PublicDir, cfg.Document))
	if w.Body.String() != string(want) {
		t.Error("static document body mismatch")
	}
}

func TestCORSHeaders(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PublicDir = t.TempDir()
	cfg.AllowAll = true
	srv := New(cfg, NewParser(cfg.Parser), quietLogger())

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestNewParser(t *testing.T) {
	cfg := config.DefaultConfig().Parser

	cfg.CacheTTL = 0
	if _, ok := NewParser(cfg).(*parser.NativeParser); !ok {
		t.Error("expected NativeParser for kind native without cache")
	}

	cfg.Kind = config.ParserScript
	if _, ok := NewParser(cfg).(*parser.ScriptParser); !ok {
		t.Error("expected ScriptParser for kind script")
	}

	cfg.CacheTTL = 60
	if _, ok := NewParser(cfg).(*parser.CachedParser); !ok {
		t.Error("expected CachedParser when cache_ttl is set")
	}
}

type countParser struct{ calls int }

func (c *countParser) Parse(ctx context.Context, path string) ([]string, error) {
	c.calls++
	return []string{"<p>x</p>"}, nil
}

func TestFlushParser(t *testing.T) {
	if FlushParser(&parser.NativeParser{}) {
		t.Error("FlushParser reported a cache on an uncached parser")
	}

	path := docxtest.WriteFile(t, t.TempDir(), "book.docx", "One")
	inner := &countParser{}
	cached := parser.NewCachedParser(inner, time.Minute)
	cached.Parse(context.Background(), path)
	cached.Parse(context.Background(), path)
	if inner.calls != 1 {
		t.Fatalf("calls before flush = %d, want 1", inner.calls)
	}

	if !FlushParser(cached) {
		t.Fatal("FlushParser did not flush a cached parser")
	}
	cached.Parse(context.Background(), path)
	if inner.calls != 2 {
		t.Errorf("calls after flush = %d, want 2", inner.calls)
	}
}
