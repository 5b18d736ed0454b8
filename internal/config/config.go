// Package config loads flipserve settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ParserKind selects the backend of the parse endpoint.
type ParserKind string

const (
	ParserNative ParserKind = "native"
	ParserScript ParserKind = "script"
)

// Config holds server settings.
type Config struct {
	Addr      string `koanf:"addr"`
	PublicDir string `koanf:"public_dir"`
	Document  string `koanf:"document"`
	LogLevel  string `koanf:"log_level"`
	AllowAll  bool   `koanf:"allow_all_origins"`

	Parser ParserConfig `koanf:"parser"`
	Book   BookConfig   `koanf:"book"`
}

// ParserConfig configures the /api/parse-docx backend.
type ParserConfig struct {
	Kind         ParserKind    `koanf:"kind"`
	Script       string        `koanf:"script"`      // user supplied, none ships with flip
	Interpreter  string        `koanf:"interpreter"` // empty: PYTHON_PATH or python3
	Timeout      time.Duration `koanf:"timeout"`
	CharsPerPage int           `koanf:"chars_per_page"`
	CacheTTL     time.Duration `koanf:"cache_ttl"` // zero disables caching
}

// BookConfig configures /api/book pagination.
type BookConfig struct {
	CharsPerPage int    `koanf:"chars_per_page"`
	CoverTitle   string `koanf:"cover_title"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Addr:      ":3000",
		PublicDir: "public",
		Document:  "book.docx",
		LogLevel:  "info",
		Parser: ParserConfig{
			Kind:         ParserNative,
			CharsPerPage: 1000,
			CacheTTL:     10 * time.Minute,
		},
		Book: BookConfig{
			CharsPerPage: 2500,
			CoverTitle:   "Kitob Nomi",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FLIP_*). A double underscore descends into
// a section: FLIP_PARSER__KIND -> parser.kind.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("FLIP_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "FLIP_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.Document == "" {
		return fmt.Errorf("document is required")
	}
	if strings.ContainsAny(c.Document, `/\`) {
		return fmt.Errorf("document %q must be a file name inside public_dir", c.Document)
	}
	switch c.Parser.Kind {
	case ParserNative:
	case ParserScript:
		if c.Parser.Script == "" {
			return fmt.Errorf("parser.script is required for the script parser")
		}
	default:
		return fmt.Errorf("invalid parser.kind %q: must be one of native, script", c.Parser.Kind)
	}
	if c.Parser.Timeout < 0 || c.Parser.CacheTTL < 0 {
		return fmt.Errorf("parser durations must be non-negative")
	}
	if c.Parser.CharsPerPage < 0 || c.Book.CharsPerPage < 0 {
		return fmt.Errorf("chars_per_page must be non-negative")
	}
	return nil
}
