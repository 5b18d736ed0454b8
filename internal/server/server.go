// Package server exposes the document parsing endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/config"
	"github.com/metcalfc/flip/internal/loader"
	"github.com/metcalfc/flip/internal/parser"
)

// Server serves the parse endpoints and the public directory.
type Server struct {
	cfg        *config.Config
	parser     parser.DocumentParser
	loader     *loader.Loader
	log        *logrus.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. p handles /api/parse-docx.
func New(cfg *config.Config, p parser.DocumentParser, log *logrus.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		parser: p,
		loader: loader.New(book.Options{
			CharsPerPage: cfg.Book.CharsPerPage,
			CoverTitle:   cfg.Book.CoverTitle,
		}),
		log: log,
	}
	s.router = s.buildRouter()
	return s
}

// NewParser builds the parser selected by cfg, wrapped in a cache when
// cfg.CacheTTL is positive.
func NewParser(cfg config.ParserConfig) parser.DocumentParser {
	var p parser.DocumentParser
	switch cfg.Kind {
	case config.ParserScript:
		p = &parser.ScriptParser{
			Interpreter: cfg.Interpreter,
			Script:      cfg.Script,
			Timeout:     cfg.Timeout,
		}
	default:
		p = &parser.NativeParser{CharsPerPage: cfg.CharsPerPage}
	}
	if cfg.CacheTTL > 0 {
		p = parser.NewCachedParser(p, cfg.CacheTTL)
	}
	return p
}

// FlushParser empties p's cache and reports whether it had one.
func FlushParser(p parser.DocumentParser) bool {
	c, ok := p.(*parser.CachedParser)
	if ok {
		c.Flush()
	}
	return ok
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/parse-docx", s.handleParseDocx)
		r.Get("/book", s.handleBook)
	})

	r.Handle("/*", http.FileServer(http.Dir(s.cfg.PublicDir)))

	return r
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.WithField("addr", s.cfg.Addr).Info("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) documentPath() string {
	return filepath.Join(s.cfg.PublicDir, s.cfg.Document)
}
