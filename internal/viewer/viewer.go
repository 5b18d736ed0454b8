// Package viewer holds flipbook navigation and display state independent of
// any particular front-end.
package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/loader"
)

// DefaultDownloadName is the file name used by Download.
const DefaultDownloadName = "kitob.docx"

var (
	ErrUnknownFont = errors.New("unknown font")
	ErrNoDocument  = errors.New("no document loaded")
	// ErrSuperseded is returned by Load when a newer Load started before it
	// finished; its result is discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// Flipper animates the page widget to a 0-based leaf index.
type Flipper interface {
	Flip(index int)
}

// FlipperFunc adapts a function to Flipper.
type FlipperFunc func(index int)

func (f FlipperFunc) Flip(index int) { f(index) }

// BookmarkStore persists the bookmarked page.
type BookmarkStore interface {
	Bookmark() int
	SetBookmark(page int) error
	ClearBookmark() error
}

// Viewer is safe for concurrent use; front-ends typically load on a
// background goroutine and navigate on the UI goroutine.
type Viewer struct {
	DownloadName string

	mu      sync.Mutex
	state   State
	book    *book.Book
	doc     *loader.Document
	gen     uint64
	loader  *loader.Loader
	store   BookmarkStore
	flipper Flipper
}

// New returns a viewer with an empty book. store and flipper may be nil.
func New(l *loader.Loader, store BookmarkStore, flipper Flipper) *Viewer {
	return &Viewer{
		DownloadName: DefaultDownloadName,
		state:        DefaultState(),
		book:         &book.Book{},
		loader:       l,
		store:        store,
		flipper:      flipper,
	}
}

// SetFlipper replaces the page widget, for front-ends that build it after
// the viewer.
func (v *Viewer) SetFlipper(f Flipper) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.flipper = f
}

// Load fetches and paginates source, replacing the current book. Failures
// still replace the book, with a single error page. If another Load starts
// before this one completes, this result is dropped and ErrSuperseded is
// returned.
func (v *Viewer) Load(ctx context.Context, source string) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	doc, b, err := v.loader.Load(ctx, source)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrSuperseded
	}
	v.book = b
	v.doc = doc
	v.state.Page = 1
	v.state.Highlight = ""
	if err == nil && v.store != nil {
		v.state.Bookmark = v.store.Bookmark()
	}
	return err
}

// State returns a copy of the current view state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Book returns the current book. Callers must not modify it.
func (v *Viewer) Book() *book.Book {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.book
}

// Document returns the loaded source document, or nil.
func (v *Viewer) Document() *loader.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc
}

// PageCount returns the number of leaves including the cover.
func (v *Viewer) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.book.Pages)
}

// GoTo flips to the 1-based page and optionally highlights a fragment.
// Out of range pages are ignored and false is returned.
func (v *Viewer) GoTo(page int, highlight string) bool {
	return v.navigate(func(State) int { return page }, highlight)
}

// Next advances one page.
func (v *Viewer) Next() bool {
	return v.navigate(func(s State) int { return s.Page + 1 }, "")
}

// Prev goes back one page.
func (v *Viewer) Prev() bool {
	return v.navigate(func(s State) int { return s.Page - 1 }, "")
}

// navigate updates the state under the lock and drives the flipper after
// releasing it, so a widget that reports flips back through OnFlip cannot
// deadlock.
func (v *Viewer) navigate(target func(State) int, highlight string) bool {
	v.mu.Lock()
	page := target(v.state)
	if page < 1 || page > len(v.book.Pages) {
		v.mu.Unlock()
		return false
	}
	v.state.Page = page
	if highlight != "" {
		v.state.Highlight = highlight
	}
	f := v.flipper
	v.mu.Unlock()

	if f != nil {
		f.Flip(page - 1)
	}
	return true
}

// OnFlip records a flip initiated by the page widget itself.
func (v *Viewer) OnFlip(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index >= 0 && index < len(v.book.Pages) {
		v.state.Page = index + 1
	}
}

// GoToEntry navigates to a TOC entry and highlights its paragraph.
func (v *Viewer) GoToEntry(e book.TOCEntry) bool {
	return v.GoTo(e.Page, e.Text)
}

// ZoomIn increases zoom by one step, up to MaxZoom.
func (v *Viewer) ZoomIn() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Zoom = clampZoom(v.state.Zoom + ZoomStep)
	return v.state.Zoom
}

// ZoomOut decreases zoom by one step, down to MinZoom.
func (v *Viewer) ZoomOut() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Zoom = clampZoom(v.state.Zoom - ZoomStep)
	return v.state.Zoom
}

func (v *Viewer) ToggleDark() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Dark = !v.state.Dark
	return v.state.Dark
}

func (v *Viewer) ToggleTOC() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ShowTOC = !v.state.ShowTOC
	return v.state.ShowTOC
}

// ToggleFullscreen flips the flag; the front-end applies it to its window.
func (v *Viewer) ToggleFullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Fullscreen = !v.state.Fullscreen
	return v.state.Fullscreen
}

// SetFont selects a font family by name.
func (v *Viewer) SetFont(name string) error {
	f, err := ParseFont(name)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Font = f
	return nil
}

// CycleFont selects the next font family.
func (v *Viewer) CycleFont() Font {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := Fonts[0]
	for i, f := range Fonts {
		if f == v.state.Font {
			next = Fonts[(i+1)%len(Fonts)]
		}
	}
	v.state.Font = next
	return next
}

// ToggleBookmark bookmarks the current page and persists it.
func (v *Viewer) ToggleBookmark() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store != nil {
		if err := v.store.SetBookmark(v.state.Page); err != nil {
			return err
		}
	}
	v.state.Bookmark = v.state.Page
	return nil
}

// ClearBookmark forgets the bookmark, in memory and in the store.
func (v *Viewer) ClearBookmark() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store != nil {
		if err := v.store.ClearBookmark(); err != nil {
			return err
		}
	}
	v.state.Bookmark = 0
	return nil
}

// GoToBookmark flips to the bookmarked page, if any.
func (v *Viewer) GoToBookmark() bool {
	return v.navigate(func(s State) int { return s.Bookmark }, "")
}

// Highlighted reports whether line contains the highlighted fragment.
func (v *Viewer) Highlighted(line string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Highlighted(v.state.Highlight, line)
}

// Highlighted reports whether line contains a non-empty fragment.
func Highlighted(fragment, line string) bool {
	return fragment != "" && strings.Contains(line, fragment)
}

// Download writes the original document into dir and returns its path.
func (v *Viewer) Download(dir string) (string, error) {
	v.mu.Lock()
	doc := v.doc
	name := v.DownloadName
	v.mu.Unlock()

	if doc == nil {
		return "", ErrNoDocument
	}
	if name == "" {
		name = DefaultDownloadName
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// DownloadDir returns ~/Downloads, falling back to the working directory.
func DownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
