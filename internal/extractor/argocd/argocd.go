// Package argocd extracts plugin and kustomize environment names from Argo CD
// Application manifests.
package argocd

import (
	"fmt"
	"strings"

	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/scanner"
	"gopkg.in/yaml.v3"
)

// Extractor is the "argocd" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "argocd" }
func (Extractor) Source() string { return "ArgoCD application" }

// Scan reads every *.yml and *.yaml file under dir. Helm templates kept
// next to Applications are not valid YAML; list them in .envcheckignore.
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	return extractor.ScanFiles(dir, opts, scanner.HasExtension(".yml", ".yaml"), Parse)
}

// IsApplication reports whether doc is an argoproj.io Application
func IsApplication(doc *yaml.Node) bool {
	return extractor.Scalar(doc, "kind") == "Application" &&
		strings.HasPrefix(extractor.Scalar(doc, "apiVersion"), "argoproj.io")
}

// Parse returns the env names declared by every Application in the stream
func Parse(path string, content []byte) ([]extractor.Reference, error) {
	docs, err := extractor.DecodeYAML(path, content)
	if err != nil {
		return nil, err
	}

	var refs []extractor.Reference
	for _, doc := range docs {
		if !IsApplication(doc) {
			continue
		}
		origin := fmt.Sprintf("ArgoCD Application/%s", extractor.Scalar(extractor.MappingValue(doc, "metadata"), "name"))

		spec := extractor.MappingValue(doc, "spec")
		sources := extractor.Items(extractor.MappingValue(spec, "sources"))
		if source := extractor.MappingValue(spec, "source"); source != nil {
			sources = append([]*yaml.Node{source}, sources...)
		}

		for _, source := range sources {
			names := envNames(extractor.Path(source, "plugin", "env"))
			kustomize := extractor.MappingValue(source, "kustomize")
			for _, field := range []string{"commonEnv", "env", "commonEnvs"} {
				names = append(names, envNames(extractor.MappingValue(kustomize, field))...)
			}
			for _, name := range names {
				refs = append(refs, extractor.Reference{
					Key:    name.Value,
					Path:   path,
					Line:   name.Line,
					Role:   extractor.Role{Kind: extractor.Direct},
					Origin: origin,
				})
			}
		}
	}
	return refs, nil
}

// envNames returns the name nodes of a [{name: X, value: Y}] list
func envNames(list *yaml.Node) []*yaml.Node {
	var names []*yaml.Node
	for _, item := range extractor.Items(list) {
		name := extractor.MappingValue(item, "name")
		if name != nil && name.Kind == yaml.ScalarNode && name.Value != "" {
			names = append(names, name)
		}
	}
	return names
}
