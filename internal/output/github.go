package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/envcheck/envcheck/internal/diag"
)

var (
	annotationEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	// property values are also split on ':' and ','
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

// writeGitHub emits GitHub Actions workflow commands
func writeGitHub(w io.Writer, diags []diag.Diagnostic) error {
	for _, d := range diags {
		command := "notice"
		switch d.Severity {
		case diag.Error:
			command = "error"
		case diag.Warning:
			command = "warning"
		}

		linePart := ""
		if d.HasLine() {
			linePart = fmt.Sprintf("line=%d,", d.Line)
		}

		if _, err := fmt.Fprintf(w, "::%s file=%s,%stitle=%s::%s\n",
			command, propertyEscaper.Replace(d.Path), linePart, propertyEscaper.Replace(d.Rule.String()), annotationEscaper.Replace(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// writePRComment renders a markdown table suitable for a pull request comment
func writePRComment(w io.Writer, diags []diag.Diagnostic) error {
	var sb strings.Builder
	sb.WriteString("## envcheck report\n\n")

	if len(diags) == 0 {
		sb.WriteString("✅ No issues found.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	s := diag.Summarize(diags)
	fmt.Fprintf(&sb, "**%d error(s)**, **%d warning(s)**, %d info\n\n", s.Errors, s.Warnings, s.Infos)
	sb.WriteString("| Severity | Rule | Location | Message |\n")
	sb.WriteString("|----------|------|----------|---------|\n")
	for _, d := range diags {
		icon := "ℹ️"
		switch d.Severity {
		case diag.Error:
			icon = "❌"
		case diag.Warning:
			icon = "⚠️"
		}
		location := d.Path
		if d.HasLine() {
			location = fmt.Sprintf("%s:%d", d.Path, d.Line)
		}
		fmt.Fprintf(&sb, "| %s %s | `%s` | `%s` | %s |\n",
			icon, d.Severity, d.Rule, location, markdownEscaper.Replace(d.Message))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
