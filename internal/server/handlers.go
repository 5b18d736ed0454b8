package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

// NotFoundError reports a missing document on disk.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found at %s", e.Name, e.Path)
}

// PageFragment is one page of the parse endpoint response.
type PageFragment struct {
	Content    string `json:"content"`
	PageNumber int    `json:"pageNumber"`
}

type parseResponse struct {
	Pages []PageFragment `json:"pages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleParseDocx(w http.ResponseWriter, r *http.Request) {
	path, err := s.locateDocument()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	fragments, err := s.parser.Parse(r.Context(), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pages := make([]PageFragment, len(fragments))
	for i, html := range fragments {
		pages[i] = PageFragment{Content: html, PageNumber: i + 1}
	}
	s.log.WithFields(logrus.Fields{
		"document": path,
		"pages":    len(pages),
	}).Info("document parsed")
	writeJSON(w, http.StatusOK, parseResponse{Pages: pages})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	path, err := s.locateDocument()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	_, b, err := s.loader.Load(r.Context(), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) locateDocument() (string, error) {
	path := s.documentPath()
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", &NotFoundError{Name: s.cfg.Document, Path: path}
	}
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{
		"document": path,
		"size":     fi.Size(),
	}).Debug("document located")
	return path, nil
}

// fail writes err as a 500 JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithFields(logrus.Fields{
		"path":  r.URL.Path,
		"error": err.Error(),
	}).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
