package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/envcheck/envcheck/internal/diag"
)

// DefaultMaxDepth bounds how many directory levels below the root are
// visited
const DefaultMaxDepth = 32

// Scanner handles file discovery and filtering for the extractors.
// Symlinked directories are never entered, so cycles cannot occur.
type Scanner struct {
	excludeDirs  map[string]bool // Directory names to exclude (e.g., "node_modules")
	excludeGlobs []string        // doublestar patterns relative to the walk root
	maxDepth     int
}

// New creates a new scanner with default exclusions
func New() *Scanner {
	return &Scanner{
		excludeDirs: map[string]bool{
			"node_modules": true,
			"vendor":       true,
			".git":         true,
			"build":        true,
			"dist":         true,
			"bin":          true,
			"out":          true,
			".next":        true,
			".cache":       true,
			".terraform":   true,
		},
		maxDepth: DefaultMaxDepth,
	}
}

// AddExcludeDirs adds directory names that are never entered
func (s *Scanner) AddExcludeDirs(dirs []string) {
	for _, dir := range dirs {
		s.excludeDirs[dir] = true
	}
}

// SetExcludeGlobs sets doublestar patterns of files and directories to
// skip. A pattern matches the path relative to the root, the path as walked,
// or the base name, the same way .envcheckignore globs are matched.
func (s *Scanner) SetExcludeGlobs(globs []string) {
	s.excludeGlobs = globs
}

// SetMaxDepth changes the depth bound; n <= 0 restores the default
func (s *Scanner) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	s.maxDepth = n
}

// IsExcluded reports whether path matches one of the exclude globs
func (s *Scanner) IsExcluded(path string) bool {
	return s.isExcluded(path, path)
}

func (s *Scanner) isExcluded(path, rel string) bool {
	candidates := []string{
		filepath.ToSlash(rel),
		filepath.ToSlash(filepath.Clean(path)),
		filepath.Base(path),
	}
	for _, glob := range s.excludeGlobs {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(glob, c); ok {
				return true
			}
		}
	}
	return false
}

// Walk recursively walks root and returns the files for which match
// returns true, in lexical order. If root is a file it is matched directly.
func (s *Scanner) Walk(root string, match func(path string) bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, diag.IOError("scan", root, err)
	}
	if !info.IsDir() {
		if match(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return diag.IOError("scan", path, err)
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if s.isExcluded(path, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			depth := strings.Count(filepath.ToSlash(rel), "/") + 1
			if s.excludeDirs[d.Name()] || depth > s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(path)
			if statErr != nil || target.IsDir() {
				// dangling links and linked directories are skipped
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// HasExtension returns a matcher accepting files with one of exts
// (compared case-insensitively, including the dot)
func HasExtension(exts ...string) func(string) bool {
	return func(path string) bool {
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}
