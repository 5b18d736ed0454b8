//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/loader"
	"github.com/metcalfc/flip/internal/reader"
	"github.com/metcalfc/flip/internal/state"
	"github.com/metcalfc/flip/internal/viewer"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// basePageWidth is the page width in columns at zoom 1.0.
const basePageWidth = 60

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	coverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Align(lipgloss.Center, lipgloss.Center)

	errorPageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DC2626")).
			Background(lipgloss.Color("#FEE2E2")).
			Padding(1, 2)

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FEF08A")).
			Foreground(lipgloss.Color("#000000"))

	tocTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	tocCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2563EB")).
			Bold(true)

	pageNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	First      key.Binding
	Last       key.Binding
	TOC        key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Dark       key.Binding
	Font       key.Binding
	Fullscreen key.Binding
	Bookmark   key.Binding
	Jump       key.Binding
	Unmark     key.Binding
	Download   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("right", "l", "pgdown", " "), key.WithHelp("→", "next")),
		Prev:       key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev")),
		First:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "cover")),
		Last:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last page")),
		TOC:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "contents")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Dark:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark/light")),
		Font:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "font")),
		Fullscreen: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fullscreen")),
		Bookmark:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		Jump:       key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "go to bookmark")),
		Unmark:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear bookmark")),
		Download:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save copy")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.TOC, k.ZoomIn, k.ZoomOut, k.Bookmark, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.TOC, k.Up, k.Down, k.Select},
		{k.ZoomIn, k.ZoomOut, k.Dark, k.Font, k.Fullscreen},
		{k.Bookmark, k.Jump, k.Unmark, k.Download, k.Help, k.Quit},
	}
}

type model struct {
	*viewer.Viewer
	source     string
	loading    bool
	message    string
	keys       keyMap
	help       help.Model
	tocCursor  int
	width      int
	height     int
	quitting   bool
	fresh      bool
	stateStore *state.StateStore
	docHash    string
}

type loadedMsg struct {
	err error
}

func newModel(v *viewer.Viewer, source string) model {
	return model{
		Viewer:  v,
		source:  source,
		loading: true,
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd {
	return m.load()
}

func (m model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.Load(context.Background(), m.source)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, nil
		}
		m.restorePosition()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.message = ""
		if key.Matches(msg, m.keys.Quit) {
			m.savePosition()
			m.quitting = true
			return m, tea.Quit
		}
		if m.State().ShowTOC {
			if handled := m.updateTOC(msg); handled {
				return m, nil
			}
		}
		return m.updateReader(msg)
	}

	return m, nil
}

func (m *model) updateTOC(msg tea.KeyMsg) bool {
	toc := m.Book().TOC
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.tocCursor > 0 {
			m.tocCursor--
		}
		return true
	case key.Matches(msg, m.keys.Down):
		if m.tocCursor < len(toc)-1 {
			m.tocCursor++
		}
		return true
	case key.Matches(msg, m.keys.Select):
		if m.tocCursor < len(toc) {
			m.GoToEntry(toc[m.tocCursor])
			m.ToggleTOC()
		}
		return true
	}
	return false
}

func (m model) updateReader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.Next()
	case key.Matches(msg, m.keys.Prev):
		m.Prev()
	case key.Matches(msg, m.keys.First):
		m.GoTo(1, "")
	case key.Matches(msg, m.keys.Last):
		m.GoTo(m.PageCount(), "")
	case key.Matches(msg, m.keys.TOC):
		if m.ToggleTOC() {
			m.tocCursor = 0
		}
	case key.Matches(msg, m.keys.ZoomIn):
		m.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.ZoomOut()
	case key.Matches(msg, m.keys.Dark):
		m.ToggleDark()
	case key.Matches(msg, m.keys.Font):
		m.CycleFont()
	case key.Matches(msg, m.keys.Fullscreen):
		m.ToggleFullscreen()
	case key.Matches(msg, m.keys.Bookmark):
		if err := m.ToggleBookmark(); err != nil {
			m.message = "Bookmark not saved: " + err.Error()
		} else {
			m.message = fmt.Sprintf("Bookmarked page %d", m.State().Page)
		}
	case key.Matches(msg, m.keys.Jump):
		if !m.GoToBookmark() {
			m.message = "No bookmark"
		}
	case key.Matches(msg, m.keys.Unmark):
		if err := m.ClearBookmark(); err != nil {
			m.message = "Bookmark not cleared: " + err.Error()
		} else {
			m.message = "Bookmark cleared"
		}
	case key.Matches(msg, m.keys.Download):
		path, err := m.Download(viewer.DownloadDir())
		if err != nil {
			m.message = "Download failed: " + err.Error()
		} else {
			m.message = "Saved " + path
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// restorePosition jumps to the page saved for this document on last quit.
func (m *model) restorePosition() {
	m.docHash = documentHash(m.Viewer)
	resumePosition(m.stateStore, m.Viewer, m.docHash, m.fresh)
}

func (m model) savePosition() {
	if m.stateStore != nil && m.docHash != "" {
		m.stateStore.SetPosition(m.docHash, m.State().Page)
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return statusStyle.Render("Loading " + m.source + "...")
	}

	st := m.State()
	b := m.Book()

	page := m.renderPage(b, st)
	if st.ShowTOC {
		page = lipgloss.JoinHorizontal(lipgloss.Top, m.renderTOC(b), "  ", page)
	}

	if st.Fullscreen {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, page)
	}

	var sb strings.Builder
	sb.WriteString(m.renderStatus(b, st))
	sb.WriteString("\n")
	if m.message != "" {
		sb.WriteString(messageStyle.Render(m.message))
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, page))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m model) renderStatus(b *book.Book, st viewer.State) string {
	mark := ""
	if st.Bookmark > 0 {
		mark = fmt.Sprintf(" | Bookmark %d", st.Bookmark)
	}
	theme := "Light"
	if st.Dark {
		theme = "Dark"
	}
	return statusStyle.Render(fmt.Sprintf("Page %d/%d | Zoom %.1f | %s | %s%s",
		st.Page, max(len(b.Pages), 1), st.Zoom, st.Font, theme, mark))
}

// pageSize returns the inner width and height of the page box.
func (m model) pageSize(st viewer.State) (int, int) {
	w := int(float64(basePageWidth) * st.Zoom)
	h := int(float64(basePageWidth) * st.Zoom * 0.4)
	chrome := 6 // status, message, help, borders
	if st.Fullscreen {
		chrome = 2
	}
	w = min(w, m.width-4)
	h = min(h, m.height-chrome)
	return max(w, 10), max(h, 3)
}

func (m model) renderPage(b *book.Book, st viewer.State) string {
	w, h := m.pageSize(st)
	if len(b.Pages) == 0 {
		return ""
	}
	idx := min(max(st.Page-1, 0), len(b.Pages)-1)
	p := b.Pages[idx]

	switch p.Kind {
	case book.KindCover:
		return coverStyle.Width(w).Height(h).Render(strings.Join(p.Lines, "\n"))
	case book.KindError:
		return errorPageStyle.Width(w).Render(strings.Join(p.Lines, "\n"))
	}

	body := lipgloss.NewStyle().Width(w)
	var paras []string
	for _, line := range p.Lines {
		if viewer.Highlighted(st.Highlight, line) {
			paras = append(paras, highlightStyle.Width(w).Render(line))
		} else {
			paras = append(paras, body.Render(line))
		}
	}
	text := strings.Join(paras, "\n\n")

	// Overflowing text is clipped, like a fixed-size printed page.
	lines := strings.Split(text, "\n")
	if len(lines) > h-1 {
		lines = lines[:h-1]
	}
	number := pageNumberStyle.Width(w).Align(lipgloss.Right).Render(fmt.Sprint(p.Number))
	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Height(h - 1).Render(content) + "\n" + number

	return pageStyle(st).Render(content)
}

func pageStyle(st viewer.State) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if st.Dark {
		s = s.Foreground(lipgloss.Color("#F3F4F6")).
			Background(lipgloss.Color("#111827")).
			BorderForeground(lipgloss.Color("#374151"))
	} else {
		s = s.Foreground(lipgloss.Color("#111827")).
			Background(lipgloss.Color("#FDF6E3")).
			BorderForeground(lipgloss.Color("#D6C7A1"))
	}
	switch st.Font {
	case viewer.FontSansSerif:
		s = s.Bold(false).Italic(false)
	case viewer.FontMonospace:
		s = s.Faint(true)
	default:
		s = s.Italic(true)
	}
	return s
}

func (m model) renderTOC(b *book.Book) string {
	var sb strings.Builder
	sb.WriteString(tocTitleStyle.Render("Contents"))
	sb.WriteString("\n")
	if len(b.TOC) == 0 {
		sb.WriteString("(empty)")
	}
	for i, e := range b.TOC {
		line := fmt.Sprintf("%s  %d", e.Title, e.Page)
		if i == m.tocCursor {
			sb.WriteString(tocCursorStyle.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(0, 1).
		MaxHeight(max(m.height-6, 5)).
		Render(sb.String())
}

func main() {
	fresh := flag.Bool("fresh", false, "Ignore saved reading position")
	showTOC := flag.Bool("toc", false, "Show table of contents at startup")
	dark := flag.Bool("dark", false, "Start in dark mode")
	font := flag.String("font", "serif", "Font family: serif, sans-serif or monospace")
	cover := flag.String("title", book.DefaultCoverTitle, "Cover page title")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Flip - Terminal Flipbook Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  flip [options] <file|url>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  flip book.docx                          Read a local document\n")
		fmt.Fprintf(os.Stderr, "  flip http://localhost:3000/book.docx    Read a served document\n")
		fmt.Fprintf(os.Stderr, "  flip --toc --dark book.docx             Start with contents, dark\n")
		fmt.Fprintf(os.Stderr, "\nFormats: %s, plain text\n", strings.Join(reader.SupportedFormats(), ", "))
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("flip %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or URL.")
		fmt.Fprintln(os.Stderr, "Try: flip -h")
		os.Exit(1)
	}

	var store *state.StateStore
	if s, err := state.NewStateStore(); err == nil {
		store = s
	} else {
		fmt.Fprintf(os.Stderr, "Warning: bookmarks disabled: %v\n", err)
	}

	var bookmarks viewer.BookmarkStore
	if store != nil {
		bookmarks = store
	}
	v := viewer.New(loader.New(book.Options{CoverTitle: *cover}), bookmarks, nil)
	if err := v.SetFont(*font); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dark {
		v.ToggleDark()
	}
	if *showTOC {
		v.ToggleTOC()
	}

	m := newModel(v, flag.Arg(0))
	m.stateStore = store
	m.fresh = *fresh

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
