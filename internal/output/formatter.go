package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/envcheck/envcheck/internal/diag"
	"golang.org/x/term"
)

// Format selects how diagnostics are rendered
type Format string

const (
	FormatText      Format = "text"
	FormatJSON      Format = "json"
	FormatGitHub    Format = "github"
	FormatSARIF     Format = "sarif"
	FormatPRComment Format = "pr-comment"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "github":
		return FormatGitHub, nil
	case "sarif":
		return FormatSARIF, nil
	case "pr-comment", "pr_comment", "markdown":
		return FormatPRComment, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, github, sarif or pr-comment)", s)
	}
}

// Options tune rendering
type Options struct {
	Color   bool   // ANSI colours for text output
	Version string // tool version for SARIF
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
)

// ColorSupported reports whether stdout is a terminal that renders ANSI
// escapes. NO_COLOR disables colours.
func ColorSupported() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return enableANSI()
}

type palette bool

func (p palette) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + colorReset
}

// Write renders diags to w in the given format
func Write(w io.Writer, format Format, diags []diag.Diagnostic, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, diags)
	case FormatGitHub:
		return writeGitHub(w, diags)
	case FormatSARIF:
		return writeSARIF(w, diags, opts.Version)
	case FormatPRComment:
		return writePRComment(w, diags)
	default:
		return writeText(w, diags, palette(opts.Color))
	}
}

// jsonDiagnostic is the JSON shape of one diagnostic
type jsonDiagnostic struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     *int   `json:"line"`
}

// JSONOutput represents the JSON output format
type JSONOutput struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Summary     diag.Summary     `json:"summary"`
}

func writeJSON(w io.Writer, diags []diag.Diagnostic) error {
	out := JSONOutput{
		Diagnostics: make([]jsonDiagnostic, 0, len(diags)),
		Summary:     diag.Summarize(diags),
	}
	for _, d := range diags {
		jd := jsonDiagnostic{
			Rule:     d.Rule.String(),
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.Path,
		}
		if d.HasLine() {
			line := d.Line
			jd.Line = &line
		}
		out.Diagnostics = append(out.Diagnostics, jd)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func writeText(w io.Writer, diags []diag.Diagnostic, p palette) error {
	if len(diags) == 0 {
		_, err := fmt.Fprintln(w, p.paint(colorGreen+colorBold, "✓ No issues found."))
		return err
	}

	for _, d := range diags {
		var sev string
		switch d.Severity {
		case diag.Error:
			sev = p.paint(colorRed+colorBold, "error")
		case diag.Warning:
			sev = p.paint(colorYellow+colorBold, "warning")
		default:
			sev = p.paint(colorBlue+colorBold, "info")
		}

		location := d.Path
		if d.HasLine() {
			location = fmt.Sprintf("%s:%d", d.Path, d.Line)
		}

		if _, err := fmt.Fprintf(w, "%s[%s]: %s\n  %s %s\n\n",
			sev, p.paint(colorBold, d.Rule.String()), d.Message, p.paint(colorBlue, "-->"), location); err != nil {
			return err
		}
	}

	s := diag.Summarize(diags)
	_, err := fmt.Fprintf(w, "Found %d error(s), %d warning(s), %d info\n", s.Errors, s.Warnings, s.Infos)
	return err
}
