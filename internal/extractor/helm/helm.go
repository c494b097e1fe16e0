// Package helm collects SCREAMING_SNAKE_CASE keys from Helm values files.
package helm

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/envcheck/envcheck/internal/extractor"
	"gopkg.in/yaml.v3"
)

var envKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

// Extractor is the "helm" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "helm" }
func (Extractor) Source() string { return "Helm values file" }

// IsValuesFile matches values.yaml and *-values.yaml
func IsValuesFile(path string) bool {
	name := filepath.Base(path)
	return name == "values.yaml" || strings.HasSuffix(name, "-values.yaml")
}

// Scan reads every values file under dir
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	return extractor.ScanFiles(dir, opts, IsValuesFile, Parse)
}

// Parse returns every mapping key, at any depth, that looks like an
// environment variable name
func Parse(path string, content []byte) ([]extractor.Reference, error) {
	docs, err := extractor.DecodeYAML(path, content)
	if err != nil {
		return nil, err
	}

	var refs []extractor.Reference
	origin := fmt.Sprintf("Helm %s", path)
	for _, doc := range docs {
		collect(doc, func(key *yaml.Node) {
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

func collect(n *yaml.Node, emit func(*yaml.Node)) {
	switch n.Kind {
	case yaml.MappingNode:
		extractor.Pairs(n, func(key, value *yaml.Node) {
			if envKeyPattern.MatchString(key.Value) {
				emit(key)
			}
			collect(value, emit)
		})
	case yaml.SequenceNode:
		for _, item := range extractor.Items(n) {
			collect(item, emit)
		}
	}
}
