package envfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/envcheck/envcheck/internal/diag"
)

// EnvVar is one KEY=VALUE entry of an env file
type EnvVar struct {
	Key      string
	Value    string
	Line     int  // 1-based line in the source file
	Exported bool // line started with "export "
	Quoted   bool // value was wrapped in matching quotes
}

// EnvFile is a parsed .env file. Vars keeps file order and duplicates;
// Lines holds the raw text of every line for whitespace-sensitive checks.
type EnvFile struct {
	Path  string
	Vars  []EnvVar
	Lines []string
}

// Parse reads and parses the env file at path. It only fails when the file
// cannot be read; malformed lines are skipped.
func Parse(path string) (*EnvFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.IOError("read", path, err)
	}
	return ParseString(path, string(data)), nil
}

// ParseString parses env content that was already loaded from path
func ParseString(path, content string) *EnvFile {
	lines := SplitLines(content)
	file := &EnvFile{
		Path:  path,
		Lines: lines,
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		exported := false
		if rest, ok := StripExport(line); ok {
			line = rest
			exported = true
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		value, quoted := trimQuotes(strings.TrimSpace(value))
		file.Vars = append(file.Vars, EnvVar{
			Key:      key,
			Value:    value,
			Line:     i + 1,
			Exported: exported,
			Quoted:   quoted,
		})
	}

	return file
}

// Keys returns the set of keys defined in the file
func (f *EnvFile) Keys() map[string]bool {
	keys := make(map[string]bool, len(f.Vars))
	for _, v := range f.Vars {
		keys[v.Key] = true
	}
	return keys
}

// Lookup returns the first definition of key
func (f *EnvFile) Lookup(key string) (EnvVar, bool) {
	for _, v := range f.Vars {
		if v.Key == key {
			return v, true
		}
	}
	return EnvVar{}, false
}

// SplitLines splits content into lines the way text editors count them:
// a trailing newline does not start a new line and "\r\n" endings are
// treated as "\n".
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// StripExport removes a leading "export " token and trims what remains
func StripExport(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "export "); ok {
		return strings.TrimSpace(rest), true
	}
	return line, false
}

// trimQuotes removes exactly one layer of matching single or double quotes
func trimQuotes(s string) (string, bool) {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}

// Discover returns the .env and .env.* files directly inside dir, sorted
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, diag.IOError("read directory", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == ".env" || strings.HasPrefix(name, ".env.") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}
