package diag

import (
	"fmt"
	"sort"
	"strings"
)

// RuleID identifies the check that produced a diagnostic
type RuleID uint8

const (
	E001 RuleID = iota + 1 // duplicate key
	E002                   // invalid syntax
	W001                   // empty value
	W002                   // trailing whitespace
	W003                   // unsorted keys
	W004                   // key missing in comparison file
	W005                   // infra key missing in .env
	W006                   // .env key not used by infra
)

var ruleNames = map[RuleID]string{
	E001: "E001",
	E002: "E002",
	W001: "W001",
	W002: "W002",
	W003: "W003",
	W004: "W004",
	W005: "W005",
	W006: "W006",
}

var ruleDescriptions = map[RuleID]string{
	E001: "Duplicate key",
	E002: "Invalid syntax",
	W001: "Empty value",
	W002: "Trailing whitespace",
	W003: "Unsorted keys",
	W004: "Key missing in comparison file",
	W005: "Infrastructure key missing in .env",
	W006: ".env key not referenced by infrastructure",
}

// AllRules returns every rule ID in declaration order
func AllRules() []RuleID {
	return []RuleID{E001, E002, W001, W002, W003, W004, W005, W006}
}

func (r RuleID) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RuleID(%d)", uint8(r))
}

// Description returns a short human-readable title for the rule
func (r RuleID) Description() string {
	return ruleDescriptions[r]
}

// ParseRuleID converts "W003" (case-insensitive) into a RuleID
func ParseRuleID(s string) (RuleID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for id, name := range ruleNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown rule id %q", s)
}

// Severity of a diagnostic. Higher values are more severe.
type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// ParseSeverity accepts error, warning/warn and info/note
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return Error, nil
	case "warning", "warn":
		return Warning, nil
	case "info", "note":
		return Info, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// Diagnostic is a single finding. Line is 0 when the finding has no
// single-line locus.
type Diagnostic struct {
	Rule     RuleID
	Severity Severity
	Message  string
	Path     string
	Line     int
}

// HasLine reports whether the diagnostic points at a specific line
func (d Diagnostic) HasLine() bool {
	return d.Line > 0
}

// SortByLine orders diagnostics by line, line-less first. Equal lines keep
// their relative order.
func SortByLine(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Line < diags[j].Line
	})
}

// SortByLocation orders diagnostics by path, then line. Stable.
func SortByLocation(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Path != diags[j].Path {
			return diags[i].Path < diags[j].Path
		}
		return diags[i].Line < diags[j].Line
	})
}

// Summary counts diagnostics per severity
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Summarize counts the diagnostics by severity
func Summarize(diags []Diagnostic) Summary {
	var s Summary
	for _, d := range diags {
		switch d.Severity {
		case Error:
			s.Errors++
		case Warning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// HasErrors returns true if any diagnostic has Error severity
func HasErrors(diags []Diagnostic) bool {
	return Summarize(diags).Errors > 0
}
