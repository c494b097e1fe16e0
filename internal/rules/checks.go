package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
)

func newDiagnostic(r Rule, file *envfile.EnvFile, line int, message string) diag.Diagnostic {
	return diag.Diagnostic{
		Rule:     r.ID(),
		Severity: r.DefaultSeverity(),
		Message:  message,
		Path:     file.Path,
		Line:     line,
	}
}

// checkDuplicateKeys reports every repeated key against the occurrence
// right before it
func checkDuplicateKeys(file *envfile.EnvFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	seen := make(map[string]int)
	for _, v := range file.Vars {
		if prev, ok := seen[v.Key]; ok {
			diags = append(diags, newDiagnostic(DuplicateKey, file, v.Line,
				fmt.Sprintf("Duplicate key '%s' (first defined on line %d)", v.Key, prev)))
		}
		seen[v.Key] = v.Line
	}
	return diags
}

// checkSyntax works on raw lines because the parser silently drops
// what it cannot read
func checkSyntax(file *envfile.EnvFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for i, raw := range file.Lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		content, _ := envfile.StripExport(trimmed)

		key, _, found := strings.Cut(content, "=")
		switch {
		case !found:
			diags = append(diags, newDiagnostic(Syntax, file, lineNum,
				fmt.Sprintf("Invalid syntax: missing assignment operator '=' in line '%s'", trimmed)))
		case key == "":
			diags = append(diags, newDiagnostic(Syntax, file, lineNum,
				"Invalid syntax: key name cannot be empty"))
		default:
			key = strings.TrimSpace(key)
			if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
				diags = append(diags, newDiagnostic(Syntax, file, lineNum,
					fmt.Sprintf("Invalid syntax: key '%s' contains whitespace", key)))
			}
			if first, _ := utf8.DecodeRuneInString(key); unicode.IsNumber(first) {
				diags = append(diags, newDiagnostic(Syntax, file, lineNum,
					fmt.Sprintf("Invalid syntax: key '%s' cannot start with a number", key)))
			}
		}
	}
	return diags
}

func checkEmptyValues(file *envfile.EnvFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, v := range file.Vars {
		if v.Value == "" {
			diags = append(diags, newDiagnostic(EmptyValue, file, v.Line,
				fmt.Sprintf("Key '%s' has an empty value", v.Key)))
		}
	}
	return diags
}

func checkTrailingWhitespace(file *envfile.EnvFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for i, raw := range file.Lines {
		if len(strings.TrimRightFunc(raw, unicode.IsSpace)) != len(raw) {
			diags = append(diags, newDiagnostic(TrailingWhitespace, file, i+1,
				"Line contains trailing whitespace"))
		}
	}
	return diags
}

// checkUnsortedKeys compares each key with the one right before it, byte-wise
func checkUnsortedKeys(file *envfile.EnvFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for i := 1; i < len(file.Vars); i++ {
		prev, cur := file.Vars[i-1].Key, file.Vars[i].Key
		if cur < prev {
			diags = append(diags, newDiagnostic(UnsortedKeys, file, file.Vars[i].Line,
				fmt.Sprintf("Unsorted key '%s' should come before '%s'", cur, prev)))
		}
	}
	return diags
}
