// Package source finds environment lookups in application code with
// tree-sitter.
package source

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/languages"
	sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

// Extractor is the "source" adapter. Grammars are loaded once and shared;
// each file gets its own tree-sitter parser.
type Extractor struct {
	languages map[languages.Language]*sitter.Language
	mu        sync.RWMutex
}

// New creates a new source extractor
func New() *Extractor {
	return &Extractor{
		languages: make(map[languages.Language]*sitter.Language),
	}
}

func init() {
	extractor.Register(New())
}

func (e *Extractor) Name() string   { return "source" }
func (e *Extractor) Source() string { return "source file" }

// getLanguage returns the grammar for lang, loading it if needed
func (e *Extractor) getLanguage(lang languages.Language) (*sitter.Language, error) {
	e.mu.RLock()
	if language, ok := e.languages[lang]; ok {
		e.mu.RUnlock()
		return language, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if language, ok := e.languages[lang]; ok {
		return language, nil
	}

	language, err := languages.Grammar(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
	}
	e.languages[lang] = language
	return language, nil
}

// Scan parses every supported source file under dir, one file per worker
func (e *Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	files, err := opts.NewScanner().Walk(dir, func(path string) bool {
		_, ok := languages.Detect(path)
		return ok
	})
	if err != nil {
		return nil, err
	}

	results := make([][]extractor.Reference, len(files))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return diag.IOError("read", path, err)
			}
			refs, err := e.ParseFile(path, content)
			if err != nil {
				return err
			}
			results[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var refs []extractor.Reference
	for _, r := range results {
		refs = append(refs, r...)
	}
	return refs, nil
}

// ParseFile extracts env lookups from content. Files in unsupported
// languages yield nothing. Dynamic lookups become wildcard references.
func (e *Extractor) ParseFile(path string, content []byte) ([]extractor.Reference, error) {
	lang, ok := languages.Detect(path)
	if !ok {
		return nil, nil
	}
	info := languages.GetInfo(lang)
	if info == nil {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	language, err := e.getLanguage(lang)
	if err != nil {
		return nil, err
	}

	// Tree-sitter parsers are not safe for concurrent use
	tsParser := sitter.NewParser()
	defer tsParser.Close()
	if err := tsParser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language %s: %w", lang, err)
	}

	tree := tsParser.Parse(content, nil)
	if tree == nil {
		extractor.Debugf("parse returned nil tree for %s (language: %s)", path, lang)
		return nil, nil
	}
	defer tree.Close()
	rootNode := tree.RootNode()

	query, queryErr := sitter.NewQuery(language, strings.TrimSpace(info.Query))
	if queryErr != nil {
		return nil, fmt.Errorf("failed to compile %s query: %s", lang, queryErr.Message)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	matches := cursor.Matches(query, rootNode, content)
	captureNames := query.CaptureNames()

	origin := fmt.Sprintf("%s file %s", lang.DisplayName(), path)
	seen := make(map[string]bool)
	var refs []extractor.Reference
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		captures := make(languages.Captures)
		var anchor *sitter.Node
		for _, capture := range match.Captures {
			if int(capture.Index) >= len(captureNames) {
				continue
			}
			name := captureNames[capture.Index]
			node := capture.Node
			captures[name] = string(content[node.StartByte():node.EndByte()])
			switch name {
			case "key", "full_expr", "var":
				anchor = &node
			}
		}
		if anchor == nil {
			continue
		}

		m, ok := info.Match(captures)
		if !ok {
			continue
		}

		line := int(anchor.StartPosition().Row) + 1
		dedupe := fmt.Sprintf("%s:%d", m.Key, line)
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true

		extractor.Debugf("match in %s:%d key=%q dynamic=%v", path, line, m.Key, m.Dynamic)

		ref := extractor.Reference{
			Path:     path,
			Line:     line,
			Role:     extractor.Role{Kind: extractor.Direct},
			Wildcard: m.Dynamic,
			Origin:   origin,
		}
		if !m.Dynamic {
			ref.Key = m.Key
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
