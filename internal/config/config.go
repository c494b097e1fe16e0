package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/envcheck/envcheck/internal/diag"
	"gopkg.in/yaml.v3"
)

// Names of the files looked up in the working directory
const (
	IgnoreFileName = ".envcheckignore"
)

var configFileNames = []string{".envcheckrc.yaml", ".envcheckrc.yml", ".envcheckrc.toml"}

// File is the on-disk shape of .envcheckrc.{yaml,toml}
type File struct {
	Rules  RulesFile `yaml:"rules" toml:"rules"`
	Ignore []string  `yaml:"ignore" toml:"ignore"` // key patterns never reported missing
	Format string    `yaml:"format" toml:"format"`
	Scan   ScanFile  `yaml:"scan" toml:"scan"`
}

// ScanFile bounds the directory walks of the infra commands
type ScanFile struct {
	Folders  []string `yaml:"folders" toml:"folders"` // directory names never entered
	MaxDepth int      `yaml:"max_depth" toml:"max_depth"`
}

// RulesFile contains rule toggles and severity overrides
type RulesFile struct {
	Disable          []string          `yaml:"disable" toml:"disable"`
	WarningsAsErrors bool              `yaml:"warnings_as_errors" toml:"warnings_as_errors"`
	Severity         map[string]string `yaml:"severity" toml:"severity"`
}

// Config is the resolved, read-only configuration handed to the engines.
// The zero value enables every rule with default severities.
type Config struct {
	disabled         map[diag.RuleID]bool
	severity         map[diag.RuleID]diag.Severity
	warningsAsErrors bool
	ignoreKeys       []string
	ignorePaths      []string
	format           string
	source           string
	excludeDirs      []string
	maxDepth         int
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{}
}

// New validates f and resolves it into a Config. ignorePaths are doublestar
// globs of files to skip.
func New(f File, ignorePaths []string) (Config, error) {
	cfg := Config{
		disabled:         make(map[diag.RuleID]bool),
		severity:         make(map[diag.RuleID]diag.Severity),
		warningsAsErrors: f.Rules.WarningsAsErrors,
		ignoreKeys:       append([]string(nil), f.Ignore...),
		format:           strings.ToLower(strings.TrimSpace(f.Format)),
		excludeDirs:      append([]string(nil), f.Scan.Folders...),
		maxDepth:         f.Scan.MaxDepth,
	}

	if cfg.maxDepth < 0 {
		return Config{}, fmt.Errorf("scan.max_depth must not be negative, got %d", cfg.maxDepth)
	}

	for _, raw := range f.Rules.Disable {
		id, err := diag.ParseRuleID(raw)
		if err != nil {
			return Config{}, fmt.Errorf("rules.disable: %w", err)
		}
		cfg.disabled[id] = true
	}

	for rawID, rawSev := range f.Rules.Severity {
		id, err := diag.ParseRuleID(rawID)
		if err != nil {
			return Config{}, fmt.Errorf("rules.severity: %w", err)
		}
		sev, err := diag.ParseSeverity(rawSev)
		if err != nil {
			return Config{}, fmt.Errorf("rules.severity.%s: %w", id, err)
		}
		cfg.severity[id] = sev
	}

	for _, pattern := range ignorePaths {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return Config{}, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
		cfg.ignorePaths = append(cfg.ignorePaths, filepath.ToSlash(pattern))
	}

	return cfg, nil
}

// Load reads .envcheckrc.{yaml,yml,toml} and .envcheckignore from dir.
// Missing files yield the default configuration.
func Load(dir string) (Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	ignores, err := loadIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return Config{}, err
	}
	return New(File{}, ignores)
}

// LoadFile reads the configuration file at path; the decoder is chosen by
// extension. The .envcheckignore next to it is loaded as well.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, diag.IOError("read config file", path, err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return Config{}, diag.FormatError(path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Config{}, diag.FormatError(path, err)
		}
	}

	ignores, err := loadIgnoreFile(filepath.Join(filepath.Dir(path), IgnoreFileName))
	if err != nil {
		return Config{}, err
	}

	cfg, err := New(f, ignores)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	cfg.source = path
	return cfg, nil
}

// loadIgnoreFile reads one glob per line, skipping blanks and # comments
func loadIgnoreFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, diag.IOError("read ignore file", path, err)
	}

	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// Source returns the config file path, or "" when defaults are in use
func (c Config) Source() string {
	return c.source
}

// Format returns the configured output format, or "" when unset
func (c Config) Format() string {
	return c.format
}

// IgnorePaths returns the .envcheckignore globs
func (c Config) IgnorePaths() []string {
	return append([]string(nil), c.ignorePaths...)
}

// ExcludeDirs returns the directory names scans never enter
func (c Config) ExcludeDirs() []string {
	return append([]string(nil), c.excludeDirs...)
}

// MaxDepth returns the configured walk depth, or 0 for the default
func (c Config) MaxDepth() int {
	return c.maxDepth
}

// IsDisabled reports whether the rule is switched off
func (c Config) IsDisabled(id diag.RuleID) bool {
	return c.disabled[id]
}

// SeverityFor applies the override for id (if any) and then the
// warnings-as-errors promotion to the rule's default severity
func (c Config) SeverityFor(id diag.RuleID, def diag.Severity) diag.Severity {
	sev := def
	if override, ok := c.severity[id]; ok {
		sev = override
	}
	if c.warningsAsErrors && sev == diag.Warning {
		sev = diag.Error
	}
	return sev
}

// Apply returns d with config severity applied, and false when the rule is
// disabled and d should be dropped
func (c Config) Apply(d diag.Diagnostic) (diag.Diagnostic, bool) {
	if c.IsDisabled(d.Rule) {
		return d, false
	}
	d.Severity = c.SeverityFor(d.Rule, d.Severity)
	return d, true
}

// ShouldIgnoreKey checks if a key matches one of the ignore patterns.
// A leading * matches a suffix, a trailing * matches a prefix, anything
// else must match exactly.
func (c Config) ShouldIgnoreKey(key string) bool {
	for _, pattern := range c.ignoreKeys {
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "*"):
			if strings.HasSuffix(key, pattern[1:]) {
				return true
			}
		case strings.HasSuffix(pattern, "*"):
			if strings.HasPrefix(key, pattern[:len(pattern)-1]) {
				return true
			}
		case pattern == key:
			return true
		}
	}
	return false
}

// ShouldIgnorePath reports whether path matches a .envcheckignore glob.
// Patterns are matched against the slash-separated path and its base name.
func (c Config) ShouldIgnorePath(path string) bool {
	slashed := filepath.ToSlash(filepath.Clean(path))
	base := filepath.Base(path)
	for _, pattern := range c.ignorePaths {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Template is written by `envcheck init-config`
const Template = `# .envcheckrc.yaml
# Configuration file for envcheck

rules:
  # Rules to switch off entirely
  disable:
    # - W003
  # Promote every warning to an error
  warnings_as_errors: false
  # Per-rule severity overrides (error, warning, info)
  severity:
    # W001: error

# Keys never reported as missing. "*_SUFFIX" and "PREFIX_*" are supported.
ignore:
  # - LEGACY_*

# Default output format: text, json, github, sarif or pr-comment
format: text

# Directory walks of the infra commands
scan:
  # Directory names never entered, on top of node_modules, vendor, .git, ...
  folders:
    # - fixtures
  # Maximum directory depth (0 keeps the default of 32)
  max_depth: 0
`
