//go:build gui

package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/loader"
	"github.com/metcalfc/flip/internal/state"
	"github.com/metcalfc/flip/internal/viewer"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Page size in device independent pixels at zoom 1.0.
const (
	pageWidth  = 400
	pageHeight = 600
)

var (
	coverColor     = color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
	errorColor     = color.NRGBA{R: 0xFE, G: 0xE2, B: 0xE2, A: 0xFF}
	paperLight     = color.NRGBA{R: 0xFD, G: 0xF6, B: 0xE3, A: 0xFF}
	paperDark      = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xFF}
	errorTextColor = color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}
)

// variantTheme pins the default theme to one variant so dark mode does not
// follow the OS setting.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

type model struct {
	*viewer.Viewer
	stateStore *state.StateStore
	docHash    string
}

func textStyleFor(f viewer.Font) fyne.TextStyle {
	switch f {
	case viewer.FontMonospace:
		return fyne.TextStyle{Monospace: true}
	case viewer.FontSansSerif:
		return fyne.TextStyle{}
	default:
		return fyne.TextStyle{Italic: true}
	}
}

// pageObject renders one flipbook leaf.
func pageObject(p book.Page, st viewer.State) fyne.CanvasObject {
	switch p.Kind {
	case book.KindCover:
		title := canvas.NewText(strings.Join(p.Lines, " "), color.White)
		title.TextSize = 32 * float32(st.Zoom)
		title.TextStyle.Bold = true
		return container.NewStack(canvas.NewRectangle(coverColor), container.NewCenter(title))

	case book.KindError:
		msg := widget.NewRichText(&widget.TextSegment{
			Text:  strings.Join(p.Lines, "\n"),
			Style: widget.RichTextStyle{ColorName: theme.ColorNameError},
		})
		msg.Wrapping = fyne.TextWrapWord
		bg := canvas.NewRectangle(errorColor)
		bg.StrokeColor = errorTextColor
		bg.StrokeWidth = 1
		return container.NewStack(bg, container.NewPadded(container.NewCenter(msg)))
	}

	style := textStyleFor(st.Font)
	var segs []widget.RichTextSegment
	for _, line := range p.Lines {
		s := widget.RichTextStyleParagraph
		s.TextStyle = style
		if viewer.Highlighted(st.Highlight, line) {
			s.ColorName = theme.ColorNamePrimary
			s.TextStyle.Bold = true
		}
		segs = append(segs, &widget.TextSegment{Text: line, Style: s})
	}
	body := widget.NewRichText(segs...)
	body.Wrapping = fyne.TextWrapWord

	number := widget.NewLabel(fmt.Sprint(p.Number))
	number.Alignment = fyne.TextAlignTrailing

	paper := paperLight
	if st.Dark {
		paper = paperDark
	}
	bg := canvas.NewRectangle(paper)
	bg.CornerRadius = 6

	return container.NewStack(bg, container.NewBorder(nil, number, nil, nil, container.NewPadded(body)))
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
		fmt.Fprintf(os.Stderr, "Gflip - Desktop Flipbook Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  gflip [options] <file|url>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gflip book.docx                         Read a local document\n")
		fmt.Fprintf(os.Stderr, "  gflip http://localhost:3000/book.docx   Read a served document\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("gflip %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or URL.")
		fmt.Fprintln(os.Stderr, "Try: gflip -h")
		os.Exit(1)
	}
	source := flag.Arg(0)

	m := &model{}
	var bookmarks viewer.BookmarkStore
	if store, err := state.NewStateStore(); err == nil {
		m.stateStore = store
		bookmarks = store
	}
	m.Viewer = viewer.New(loader.New(book.Options{CoverTitle: *cover}), bookmarks, nil)
	if err := m.SetFont(*font); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dark {
		m.ToggleDark()
	}
	if *showTOC {
		m.ToggleTOC()
	}

	a := app.New()
	w := a.NewWindow("gflip - " + source)

	pageHolder := container.NewStack(widget.NewLabel("Loading " + source + "..."))
	counter := widget.NewLabel("")
	bookmarkJump := widget.NewButton("", nil)
	bookmarkJump.Hide()

	var tocList *widget.List
	var split *container.Split
	var tocPanel fyne.CanvasObject

	applyTheme := func(st viewer.State) {
		variant := theme.VariantLight
		if st.Dark {
			variant = theme.VariantDark
		}
		a.Settings().SetTheme(variantTheme{Theme: theme.DefaultTheme(), variant: variant})
	}

	// render redraws everything derived from viewer state. Must run on the
	// fyne goroutine.
	render := func() {
		st := m.State()
		b := m.Book()
		if len(b.Pages) > 0 {
			idx := min(max(st.Page-1, 0), len(b.Pages)-1)
			size := fyne.NewSize(pageWidth*float32(st.Zoom), pageHeight*float32(st.Zoom))
			leaf := container.NewGridWrap(size, pageObject(b.Pages[idx], st))
			pageHolder.Objects = []fyne.CanvasObject{container.NewCenter(leaf)}
			pageHolder.Refresh()
		}
		counter.SetText(fmt.Sprintf("%d / %d", st.Page, max(len(b.Pages), 1)))

		if st.Bookmark > 0 {
			bookmarkJump.SetText(fmt.Sprintf("Bookmark %d", st.Bookmark))
			bookmarkJump.Show()
		} else {
			bookmarkJump.Hide()
		}

		if tocPanel != nil {
			if st.ShowTOC {
				tocPanel.Show()
			} else {
				tocPanel.Hide()
			}
			split.Refresh()
		}
		if tocList != nil {
			tocList.Refresh()
		}
		if w.FullScreen() != st.Fullscreen {
			w.SetFullScreen(st.Fullscreen)
		}
	}

	m.SetFlipper(viewer.FlipperFunc(func(int) { fyne.Do(render) }))
	bookmarkJump.OnTapped = func() { m.GoToBookmark() }

	tocList = widget.NewList(
		func() int { return len(m.Book().TOC) },
		func() fyne.CanvasObject {
			return widget.NewLabel("Title")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			toc := m.Book().TOC
			if id < len(toc) {
				obj.(*widget.Label).SetText(fmt.Sprintf("%s  (%d)", toc[id].Title, toc[id].Page))
			}
		},
	)
	tocList.OnSelected = func(id widget.ListItemID) {
		toc := m.Book().TOC
		if id < len(toc) {
			m.GoToEntry(toc[id])
		}
		tocList.UnselectAll()
	}
	tocPanel = container.NewBorder(widget.NewLabelWithStyle("Contents", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, tocList)

	fontSelect := widget.NewSelect([]string{string(viewer.FontSerif), string(viewer.FontSansSerif), string(viewer.FontMonospace)}, func(s string) {
		if err := m.SetFont(s); err == nil {
			render()
		}
	})
	fontSelect.SetSelected(string(m.State().Font))

	darkButton := widget.NewButton("Dark", nil)
	darkButton.OnTapped = func() {
		if m.ToggleDark() {
			darkButton.SetText("Light")
		} else {
			darkButton.SetText("Dark")
		}
		applyTheme(m.State())
		render()
	}

	toolbar := container.NewHBox(
		widget.NewButton("Contents", func() { m.ToggleTOC(); render() }),
		widget.NewButton("+", func() { m.ZoomIn(); render() }),
		widget.NewButton("-", func() { m.ZoomOut(); render() }),
		widget.NewButton("Fullscreen", func() { m.ToggleFullscreen(); render() }),
		widget.NewButton("Download", func() {
			path, err := m.Download(viewer.DownloadDir())
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Download", "Saved "+path, w)
		}),
		darkButton,
		widget.NewButton("Bookmark", func() {
			if err := m.ToggleBookmark(); err != nil {
				dialog.ShowError(err, w)
			}
			render()
		}),
		fontSelect,
		bookmarkJump,
	)

	nav := container.NewHBox(
		widget.NewButton("Previous", func() { m.Prev() }),
		counter,
		widget.NewButton("Next", func() { m.Next() }),
	)

	reading := container.NewBorder(container.NewCenter(toolbar), container.NewCenter(nav), nil, nil, pageHolder)
	split = container.NewHSplit(tocPanel, reading)
	split.Offset = 0.3

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight, fyne.KeyPageDown, fyne.KeySpace:
			m.Next()
		case fyne.KeyLeft, fyne.KeyPageUp:
			m.Prev()
		case fyne.KeyHome:
			m.GoTo(1, "")
		case fyne.KeyEnd:
			m.GoTo(m.PageCount(), "")
		case fyne.KeyF11:
			m.ToggleFullscreen()
			render()
		case fyne.KeyEscape:
			if m.State().Fullscreen {
				m.ToggleFullscreen()
				render()
			}
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 't', 'T':
			m.ToggleTOC()
		case '+', '=':
			m.ZoomIn()
		case '-':
			m.ZoomOut()
		case 'b':
			m.ToggleBookmark()
		case 'B':
			m.GoToBookmark()
			return
		case 'x':
			m.ClearBookmark()
		default:
			return
		}
		render()
	})

	w.SetOnClosed(func() {
		// Save position before closing
		if m.stateStore != nil && m.docHash != "" {
			m.stateStore.SetPosition(m.docHash, m.State().Page)
		}
	})

	applyTheme(m.State())
	w.Resize(fyne.NewSize(1000, 800))
	w.SetContent(split)
	render()

	go func() {
		err := m.Load(context.Background(), source)
		if err == viewer.ErrSuperseded {
			return
		}
		hash := documentHash(m.Viewer)
		// docHash is only touched on the fyne goroutine.
		fyne.Do(func() {
			m.docHash = hash
			resumePosition(m.stateStore, m.Viewer, hash, *fresh)
			render()
		})
	}()

	w.ShowAndRun()
}
