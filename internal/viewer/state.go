package viewer

import (
	"fmt"
	"math"
)

// Font is a CSS-style generic font family.
type Font string

const (
	FontSerif     Font = "serif"
	FontSansSerif Font = "sans-serif"
	FontMonospace Font = "monospace"
)

// Fonts lists the selectable font families in display order.
var Fonts = []Font{FontSerif, FontSansSerif, FontMonospace}

// ParseFont validates a font family name.
func ParseFont(s string) (Font, error) {
	for _, f := range Fonts {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFont, s)
}

const (
	MinZoom  = 0.5
	MaxZoom  = 2.0
	ZoomStep = 0.2
)

// State is everything the front-ends render from. It is copied out of the
// Viewer, never shared.
type State struct {
	// Page is the 1-based flipbook position; 1 is the cover.
	Page       int
	Zoom       float64
	Dark       bool
	Bookmark   int // 0 when unset
	Font       Font
	ShowTOC    bool
	Highlight  string
	Fullscreen bool
}

// DefaultState is the state of a freshly mounted viewer.
func DefaultState() State {
	return State{
		Page: 1,
		Zoom: 1,
		Font: FontSerif,
	}
}

func clampZoom(z float64) float64 {
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
