// Package config loads and validates .gitjournal.toml, the per-repository
// configuration file described in spec.md §6.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// FileName is the configuration file's fixed name.
const FileName = ".gitjournal.toml"

// Config mirrors the flat key table from spec.md §6.
type Config struct {
	Categories         []string `toml:"categories"`
	CategoryDelimiters []string `toml:"category_delimiters" validate:"omitempty,len=2"`
	TagDelimiter       string   `toml:"tag_delimiter"`
	ColoredOutput      bool     `toml:"colored_output"`
	EnableDebug        bool     `toml:"enable_debug"`
	DefaultTemplate    string   `toml:"default_template"`
	ShowCommitHash     bool     `toml:"show_commit_hash"`
	ShowPrefix         bool     `toml:"show_prefix"`
	SortBy             string   `toml:"sort_by" validate:"omitempty,oneof=date name"`
	ExcludedCommitTags []string `toml:"excluded_commit_tags"`
	TemplatePrefix     string   `toml:"template_prefix"`
	EnableFooters      bool     `toml:"enable_footers"`
}

// ConfigError wraps a fatal configuration problem (missing repo, malformed
// toml, unknown key, invalid regex) per spec.md §7.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string { return "ConfigError: " + e.Detail }

// Default returns the default configuration, matching the original tool's
// `Config::new()` defaults.
func Default() *Config {
	return &Config{
		Categories:         []string{"Added", "Changed", "Fixed", "Improved", "Removed"},
		CategoryDelimiters: []string{"[", "]"},
		TagDelimiter:       ":",
		ColoredOutput:      true,
		EnableDebug:        true,
		SortBy:             "date",
		TemplatePrefix:     "JIRA-1234",
	}
}

// Load walks upward from startDir looking for .gitjournal.toml, returning
// Default() unmodified if none is found (a missing config file is not an
// error — spec.md only requires a *malformed* one to be fatal).
func Load(startDir string) (*Config, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", errors.Wrapf(err, "resolving path %q", startDir)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if data, err := os.ReadFile(candidate); err == nil {
			cfg, err := Parse(data)
			if err != nil {
				return nil, "", err
			}
			return cfg, candidate, nil
		} else if !os.IsNotExist(err) {
			return nil, "", errors.Wrapf(err, "reading %q", candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return Default(), "", nil
}

// Parse decodes and validates toml source against Config, rejecting
// unknown keys and out-of-range values as fatal per spec.md §6/§7.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if _, err := dec.Decode(&cfg); err != nil {
		return nil, errors.WithStack(&ConfigError{Detail: "malformed or unknown key in " + FileName + ": " + err.Error()})
	}

	if len(cfg.Categories) == 0 {
		cfg.Categories = Default().Categories
	}
	if len(cfg.CategoryDelimiters) == 0 {
		cfg.CategoryDelimiters = Default().CategoryDelimiters
	}
	if cfg.TagDelimiter == "" {
		cfg.TagDelimiter = Default().TagDelimiter
	}
	if cfg.SortBy == "" {
		cfg.SortBy = Default().SortBy
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.WithStack(&ConfigError{Detail: "invalid " + FileName + ": " + err.Error()})
	}

	return &cfg, nil
}

// Save writes cfg as toml to path, used by `gitjournal setup` to bootstrap
// a fresh repository (spec.md's "generate a default template" sibling
// operation, supplemented from original_source's save_default_config).
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	return nil
}

// CategoryDelimitersPair returns cfg's delimiters as the [2]string the
// journal package's Grammar/RenderConfig expect.
func (c *Config) CategoryDelimitersPair() [2]string {
	if len(c.CategoryDelimiters) != 2 {
		return [2]string{"[", "]"}
	}
	return [2]string{c.CategoryDelimiters[0], c.CategoryDelimiters[1]}
}
