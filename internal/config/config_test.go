package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.Addr != def.Addr || cfg.Document != def.Document || cfg.Parser.Kind != ParserNative {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flip.yaml")
	content := `addr: ":8080"
public_dir: /srv/public
parser:
  kind: script
  script: /srv/scripts/parse_docx.py
  timeout: 30s
book:
  cover_title: "Oziq-ovqat xavfsizligi"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FLIP_DOCUMENT", "manual.docx")
	t.Setenv("FLIP_PARSER__INTERPRETER", "/usr/bin/python3.12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.PublicDir != "/srv/public" {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
	if cfg.Parser.Kind != ParserScript || cfg.Parser.Timeout != 30*time.Second {
		t.Errorf("Parser section not applied: %+v", cfg.Parser)
	}
	if cfg.Document != "manual.docx" {
		t.Errorf("Env override not applied: document = %q", cfg.Document)
	}
	if cfg.Parser.Interpreter != "/usr/bin/python3.12" {
		t.Errorf("Nested env override not applied: %q", cfg.Parser.Interpreter)
	}
	if cfg.Book.CharsPerPage != 2500 {
		t.Errorf("Unset values keep defaults, got %d", cfg.Book.CharsPerPage)
	}
	if cfg.Book.CoverTitle != "Oziq-ovqat xavfsizligi" {
		t.Errorf("CoverTitle = %q", cfg.Book.CoverTitle)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flip.yaml")
	os.WriteFile(path, []byte("addr: [unterminated"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"no document", func(c *Config) { c.Document = "" }, "document"},
		{"document path", func(c *Config) { c.Document = "../etc/passwd" }, "file name"},
		{"bad kind", func(c *Config) { c.Parser.Kind = "java" }, "parser.kind"},
		{"script without path", func(c *Config) {
			c.Parser.Kind = ParserScript
			c.Parser.Script = ""
		}, "parser.script"},
		{"script kind with defaults", func(c *Config) { c.Parser.Kind = ParserScript }, "parser.script"},
		{"negative timeout", func(c *Config) { c.Parser.Timeout = -time.Second }, "non-negative"},
		{"negative budget", func(c *Config) { c.Book.CharsPerPage = -1 }, "chars_per_page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
