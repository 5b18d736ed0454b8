// Package reader extracts ordered paragraph text from e-book source files.
package reader

import (
	"path/filepath"
	"strings"
)

// Format defines a file format reader for extracting paragraphs.
type Format interface {
	Name() string
	Extensions() []string
	Paragraphs(data []byte) ([]string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Lookup returns the registered format for a file name, or nil when the
// extension is not known.
func Lookup(name string) Format {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// Paragraphs extracts paragraphs from raw document bytes, using a registered
// format chosen by name or the plain text fallback.
func Paragraphs(name string, data []byte) ([]string, error) {
	if f := Lookup(name); f != nil {
		return f.Paragraphs(data)
	}
	return TextParagraphs(string(data)), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
