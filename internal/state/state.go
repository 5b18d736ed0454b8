// Package state persists viewer settings between sessions.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

const (
	stateFileName = "storage.json"
	hashBytes     = 8192 // First 8KB for content hash

	// BookmarkKey holds the bookmarked page as a decimal string.
	BookmarkKey = "bookmarkedPage"
)

// ReadingState stores the last viewed page for a single document
type ReadingState struct {
	Page int `json:"page"`
}

type storeFile struct {
	Items     map[string]string       `json:"items"`
	Positions map[string]ReadingState `json:"positions"`
}

// StateStore is a small key/value store with the semantics of browser
// local storage, plus per-document reading positions.
type StateStore struct {
	path string
	data storeFile
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/flip/
func NewStateStore() (*StateStore, error) {
	return OpenStateStore(getStateDir())
}

// OpenStateStore creates or loads state from dir.
func OpenStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: emptyFile(),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = emptyFile()
	}
	return store, nil
}

func emptyFile() storeFile {
	return storeFile{
		Items:     make(map[string]string),
		Positions: make(map[string]ReadingState),
	}
}

// getStateDir returns XDG_STATE_HOME/flip or ~/.local/state/flip
func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "flip")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "flip")
}

// ComputeHash generates content hash for document identity
func ComputeHash(r io.Reader) (string, error) {
	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// GetItem returns the value stored under key.
func (s *StateStore) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.Items[key]
	return v, ok
}

// SetItem stores value under key and writes the store to disk.
func (s *StateStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Items[key] = value
	return s.save()
}

// RemoveItem deletes key.
func (s *StateStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Items, key)
	return s.save()
}

// Bookmark returns the bookmarked page, or 0 when none is set or the stored
// value is not a positive number.
func (s *StateStore) Bookmark() int {
	v, ok := s.GetItem(BookmarkKey)
	if !ok {
		return 0
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0
	}
	return page
}

// SetBookmark stores page under BookmarkKey.
func (s *StateStore) SetBookmark(page int) error {
	return s.SetItem(BookmarkKey, strconv.Itoa(page))
}

// ClearBookmark removes the bookmarked page.
func (s *StateStore) ClearBookmark() error {
	return s.RemoveItem(BookmarkKey)
}

// GetPosition returns saved page for document, or 0 if not found
func (s *StateStore) GetPosition(hash string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.data.Positions[hash]; ok {
		return state.Page
	}
	return 0
}

// SetPosition saves page for document
func (s *StateStore) SetPosition(hash string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Positions[hash] = ReadingState{Page: page}
	return s.save()
}

// Clear removes saved position for document
func (s *StateStore) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Positions, hash)
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Items == nil {
		f.Items = make(map[string]string)
	}
	if f.Positions == nil {
		f.Positions = make(map[string]ReadingState)
	}
	s.data = f
	return nil
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
