// Package rules implements the single-file checks run by `envcheck lint`.
package rules

import (
	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
)

// Rule is one of the fixed single-file checks
type Rule uint8

const (
	DuplicateKey Rule = iota
	Syntax
	EmptyValue
	TrailingWhitespace
	UnsortedKeys
)

// All returns the rules in pipeline order
func All() []Rule {
	return []Rule{DuplicateKey, Syntax, EmptyValue, TrailingWhitespace, UnsortedKeys}
}

// ID returns the diagnostic rule identifier reported by r
func (r Rule) ID() diag.RuleID {
	switch r {
	case DuplicateKey:
		return diag.E001
	case Syntax:
		return diag.E002
	case EmptyValue:
		return diag.W001
	case TrailingWhitespace:
		return diag.W002
	case UnsortedKeys:
		return diag.W003
	default:
		return 0
	}
}

// DefaultSeverity is the severity before config overrides
func (r Rule) DefaultSeverity() diag.Severity {
	switch r {
	case DuplicateKey, Syntax:
		return diag.Error
	default:
		return diag.Warning
	}
}

func (r Rule) String() string {
	switch r {
	case DuplicateKey:
		return "duplicate-key"
	case Syntax:
		return "syntax"
	case EmptyValue:
		return "empty-value"
	case TrailingWhitespace:
		return "trailing-whitespace"
	case UnsortedKeys:
		return "unsorted-keys"
	default:
		return "unknown"
	}
}

// Run applies r alone to file, with default severity
func (r Rule) Run(file *envfile.EnvFile) []diag.Diagnostic {
	switch r {
	case DuplicateKey:
		return checkDuplicateKeys(file)
	case Syntax:
		return checkSyntax(file)
	case EmptyValue:
		return checkEmptyValues(file)
	case TrailingWhitespace:
		return checkTrailingWhitespace(file)
	case UnsortedKeys:
		return checkUnsortedKeys(file)
	default:
		return nil
	}
}

// Check runs every enabled rule over file and returns the diagnostics
// sorted by line. Diagnostics on the same line keep pipeline order.
func Check(file *envfile.EnvFile, cfg config.Config) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, r := range All() {
		if cfg.IsDisabled(r.ID()) {
			continue
		}
		for _, d := range r.Run(file) {
			d.Severity = cfg.SeverityFor(d.Rule, d.Severity)
			diags = append(diags, d)
		}
	}
	diag.SortByLine(diags)
	return diags
}
