// Package actions collects the keys of env: blocks in GitHub Actions
// workflows.
package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/scanner"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where workflows live relative to a repository root
const DefaultDir = ".github/workflows"

// Extractor is the "actions" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "actions" }
func (Extractor) Source() string { return "GitHub Actions workflow" }

// Scan reads every workflow under dir. A missing dir means the repository
// has no workflows and yields no references.
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return extractor.ScanFiles(dir, opts, scanner.HasExtension(".yml", ".yaml"), Parse)
}

// Parse returns the keys of every env mapping at any depth: workflow, job
// and step level alike
func Parse(path string, content []byte) ([]extractor.Reference, error) {
	docs, err := extractor.DecodeYAML(path, content)
	if err != nil {
		return nil, err
	}

	var refs []extractor.Reference
	origin := fmt.Sprintf("workflow %s", path)
	for _, doc := range docs {
		findEnv(doc, func(key *yaml.Node) {
			refs = append(refs, extractor.Reference{
				Key:    key.Value,
				Path:   path,
				Line:   key.Line,
				Role:   extractor.Role{Kind: extractor.Direct},
				Origin: origin,
			})
		})
	}
	return refs, nil
}

func findEnv(n *yaml.Node, emit func(*yaml.Node)) {
	switch n.Kind {
	case yaml.MappingNode:
		extractor.Pairs(n, func(key, value *yaml.Node) {
			if key.Value == "env" {
				extractor.Pairs(value, func(envKey, _ *yaml.Node) {
					emit(envKey)
				})
			}
			findEnv(value, emit)
		})
	case yaml.SequenceNode:
		for _, item := range extractor.Items(n) {
			findEnv(item, emit)
		}
	}
}
