// Package fixer rewrites .env files into canonical form: keys sorted,
// comments kept with the key below them, whitespace trimmed.
package fixer

import (
	"os"
	"sort"
	"strings"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
)

// block is a run of comment lines optionally followed by the key line they
// describe
type block struct {
	comments []string
	keyLine  string
	key      string
	hasKey   bool
}

func parseBlocks(content string) []block {
	var blocks []block
	var pending []string

	for _, raw := range envfile.SplitLines(content) {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			if len(pending) > 0 {
				blocks = append(blocks, block{comments: pending})
				pending = nil
			}
		case strings.HasPrefix(line, "#"):
			pending = append(pending, line)
		case strings.Contains(line, "="):
			key, _, _ := strings.Cut(line, "=")
			key, _ = envfile.StripExport(strings.TrimSpace(key))
			blocks = append(blocks, block{
				comments: pending,
				keyLine:  line,
				key:      key,
				hasKey:   true,
			})
			pending = nil
		default:
			// unparseable lines travel with the comments
			pending = append(pending, line)
		}
	}
	if len(pending) > 0 {
		blocks = append(blocks, block{comments: pending})
	}

	return blocks
}

// Normalize returns content in canonical form. Comment-only blocks before
// the first key form the header and those after the last key the footer.
// Comment-only blocks between keys are attached to the key that follows
// them. Blank lines are not preserved. Empty or whitespace-only content is
// returned unchanged.
func Normalize(content string) string {
	if strings.TrimSpace(content) == "" {
		return content
	}

	blocks := parseBlocks(content)

	first, last := -1, -1
	for i, b := range blocks {
		if b.hasKey {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	var header, footer []string
	var body []block
	if first < 0 {
		for _, b := range blocks {
			header = append(header, b.comments...)
		}
	} else {
		for _, b := range blocks[:first] {
			header = append(header, b.comments...)
		}
		var carried []string
		for _, b := range blocks[first : last+1] {
			if !b.hasKey {
				carried = append(carried, b.comments...)
				continue
			}
			if len(carried) > 0 {
				b.comments = append(carried, b.comments...)
				carried = nil
			}
			body = append(body, b)
		}
		for _, b := range blocks[last+1:] {
			footer = append(footer, b.comments...)
		}
	}

	sort.SliceStable(body, func(i, j int) bool {
		return body[i].key < body[j].key
	})

	var sb strings.Builder
	writeLines := func(lines []string) {
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	writeLines(header)
	for _, b := range body {
		writeLines(b.comments)
		writeLines([]string{b.keyLine})
	}
	writeLines(footer)

	return sb.String()
}

// Rewrite normalizes the file at path in place, keeping its permissions.
// It reports whether the file changed; unchanged files are not written.
func Rewrite(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, diag.IOError("stat", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, diag.IOError("read", path, err)
	}

	fixed := Normalize(string(data))
	if fixed == string(data) {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(fixed), info.Mode().Perm()); err != nil {
		return false, diag.IOError("write", path, err)
	}
	return true, nil
}

// NeedsRewrite reports whether Rewrite would change the file at path
func NeedsRewrite(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, diag.IOError("read", path, err)
	}
	return Normalize(string(data)) != string(data), nil
}
