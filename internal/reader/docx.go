package reader

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// ErrNoDocumentPart is returned when a DOCX archive has no main document part.
var ErrNoDocumentPart = errors.New("docx: word/document.xml not found")

// DOCXFormat implements Format for Word documents.
type DOCXFormat struct{}

func init() {
	Register(&DOCXFormat{})
}

func (f *DOCXFormat) Name() string         { return "DOCX" }
func (f *DOCXFormat) Extensions() []string { return []string{".docx"} }

func (f *DOCXFormat) Paragraphs(data []byte) ([]string, error) {
	return ExtractParagraphsFromDOCX(data)
}

// ExtractParagraphsFromDOCX returns the text of every paragraph in document
// order, including those in table cells and text boxes. A text box paragraph
// is reported on its own right after its anchoring paragraph, whose text also
// includes it. Shapes stored twice for compatibility are read once.
func ExtractParagraphsFromDOCX(data []byte) ([]string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	// The document name is only set once word/document.xml has been read.
	if doc.Document.XMLName.Local == "" {
		return nil, ErrNoDocumentPart
	}

	var out []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out = appendParagraph(out, it)
		case *docx.Table:
			out = appendTable(out, it)
		}
	}
	return out, nil
}

func appendTable(out []string, t *docx.Table) []string {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				out = appendParagraph(out, p)
			}
			for _, nested := range cell.Tables {
				out = appendTable(out, nested)
			}
		}
	}
	return out
}

// appendParagraph appends p's text followed by any text box paragraphs
// anchored in it.
func appendParagraph(out []string, p *docx.Paragraph) []string {
	var sb strings.Builder
	var boxes []*docx.Paragraph

	writeRun := func(r *docx.Run) {
		for _, c := range r.Children {
			switch x := c.(type) {
			case *docx.Text:
				sb.WriteString(x.Text)
			case *docx.Tab:
				sb.WriteByte('\t')
			case *docx.BarterRabbet:
				sb.WriteByte('\n')
			case *docx.Drawing:
				for _, bp := range textBoxParagraphs(x) {
					sb.WriteString(paragraphText(bp))
					boxes = append(boxes, bp)
				}
			}
		}
	}

	for _, c := range p.Children {
		switch x := c.(type) {
		case *docx.Run:
			writeRun(x)
		case *docx.Hyperlink:
			writeRun(&x.Run)
		}
	}

	out = append(out, sb.String())
	for _, bp := range boxes {
		out = appendParagraph(out, bp)
	}
	return out
}

// paragraphText is the full text of p, text boxes included.
func paragraphText(p *docx.Paragraph) string {
	return appendParagraph(nil, p)[0]
}

func textBoxParagraphs(d *docx.Drawing) []*docx.Paragraph {
	var g *docx.AGraphic
	switch {
	case d.Inline != nil:
		g = d.Inline.Graphic
	case d.Anchor != nil:
		g = d.Anchor.Graphic
	}
	if g == nil || g.GraphicData == nil {
		return nil
	}

	shapes := []*docx.WordprocessingShape{g.GraphicData.Shape}
	if g.GraphicData.Group != nil {
		for _, e := range g.GraphicData.Group.Elems {
			if s, ok := e.(*docx.WordprocessingShape); ok {
				shapes = append(shapes, s)
			}
		}
	}

	var out []*docx.Paragraph
	for _, s := range shapes {
		if s == nil || s.TextBox == nil || s.TextBox.Content == nil {
			continue
		}
		for i := range s.TextBox.Content.Paragraphs {
			out = append(out, &s.TextBox.Content.Paragraphs[i])
		}
	}
	return out
}
