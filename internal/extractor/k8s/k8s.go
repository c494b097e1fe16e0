// Package k8s extracts environment keys from Kubernetes manifests.
package k8s

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/scanner"
	"gopkg.in/yaml.v3"
)

// Manifest is one Kubernetes object found in a YAML stream
type Manifest struct {
	Path string
	Kind string
	Name string
	Line int
	Refs []extractor.Reference
}

// Origin names the object the way diagnostics cite it
func (m Manifest) Origin() string {
	return fmt.Sprintf("K8s %s/%s", m.Kind, m.Name)
}

// Extractor is the "k8s" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "k8s" }
func (Extractor) Source() string { return "K8s manifest" }

// Scan parses every *.yaml and *.yml file under dir
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	return extractor.ScanFiles(dir, opts, scanner.HasExtension(".yaml", ".yml"), parseRefs)
}

// ScanPatterns parses the files matched by the given globs. Patterns support
// "**". Files excluded by opts are skipped. It fails with
// diag.ErrNoFilesMatched when no Kubernetes object is found in any matched
// file.
func ScanPatterns(patterns []string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	walker := opts.NewScanner()
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, diag.UsageError("invalid manifest pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, diag.IOError("glob", pattern, err)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() || seen[path] {
				continue
			}
			if walker.IsExcluded(path) {
				extractor.Debugf("skipping excluded manifest %s", path)
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}

	var refs []extractor.Reference
	objects := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, diag.IOError("read", path, err)
		}
		manifests, err := Parse(path, content)
		if err != nil {
			return nil, err
		}
		objects += len(manifests)
		for _, m := range manifests {
			refs = append(refs, m.Refs...)
		}
	}

	if objects == 0 {
		return nil, fmt.Errorf("%w: %s", diag.ErrNoFilesMatched, strings.Join(patterns, ", "))
	}
	return refs, nil
}

func parseRefs(path string, content []byte) ([]extractor.Reference, error) {
	manifests, err := Parse(path, content)
	if err != nil {
		return nil, err
	}
	var refs []extractor.Reference
	for _, m := range manifests {
		refs = append(refs, m.Refs...)
	}
	return refs, nil
}

// Parse decodes a multi-document YAML stream. Documents without a kind and
// metadata.name are not Kubernetes objects and are ignored.
func Parse(path string, content []byte) ([]Manifest, error) {
	docs, err := extractor.DecodeYAML(path, content)
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	for _, doc := range docs {
		kind := extractor.Scalar(doc, "kind")
		name := extractor.Scalar(extractor.MappingValue(doc, "metadata"), "name")
		if kind == "" || name == "" {
			continue
		}

		m := Manifest{Path: path, Kind: kind, Name: name, Line: doc.Line}
		switch kind {
		case "ConfigMap":
			m.dataKeys(extractor.MappingValue(doc, "data"), extractor.ConfigMapData)
		case "Secret":
			m.dataKeys(extractor.MappingValue(doc, "stringData"), extractor.SecretData)
			m.dataKeys(extractor.MappingValue(doc, "data"), extractor.SecretData)
		default:
			if spec := podSpec(kind, doc); spec != nil {
				for _, field := range []string{"initContainers", "containers"} {
					for _, container := range extractor.Items(extractor.MappingValue(spec, field)) {
						m.containerEnv(container)
					}
				}
			}
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// podSpec locates the pod template spec of a workload
func podSpec(kind string, doc *yaml.Node) *yaml.Node {
	switch kind {
	case "Pod":
		return extractor.MappingValue(doc, "spec")
	case "Deployment", "StatefulSet", "DaemonSet", "ReplicaSet", "Job":
		return extractor.Path(doc, "spec", "template", "spec")
	case "CronJob":
		return extractor.Path(doc, "spec", "jobTemplate", "spec", "template", "spec")
	default:
		return nil
	}
}

func (m *Manifest) add(key string, line int, role extractor.Role, wildcard bool) {
	m.Refs = append(m.Refs, extractor.Reference{
		Key:      key,
		Path:     m.Path,
		Line:     line,
		Role:     role,
		Wildcard: wildcard,
		Origin:   m.Origin(),
	})
}

func (m *Manifest) dataKeys(data *yaml.Node, kind extractor.RoleKind) {
	extractor.Pairs(data, func(key, _ *yaml.Node) {
		m.add(key.Value, key.Line, extractor.Role{Kind: kind}, false)
	})
}

func (m *Manifest) containerEnv(container *yaml.Node) {
	for _, item := range extractor.Items(extractor.MappingValue(container, "env")) {
		nameNode := extractor.MappingValue(item, "name")
		if nameNode == nil || nameNode.Kind != yaml.ScalarNode || nameNode.Value == "" {
			continue
		}

		role := extractor.Role{Kind: extractor.Direct}
		valueFrom := extractor.MappingValue(item, "valueFrom")
		if ref := extractor.MappingValue(valueFrom, "secretKeyRef"); ref != nil {
			role = extractor.Role{
				Kind:      extractor.SecretKeyRef,
				Name:      extractor.Scalar(ref, "name"),
				SourceKey: extractor.Scalar(ref, "key"),
			}
		} else if ref := extractor.MappingValue(valueFrom, "configMapKeyRef"); ref != nil {
			role = extractor.Role{
				Kind:      extractor.ConfigMapKeyRef,
				Name:      extractor.Scalar(ref, "name"),
				SourceKey: extractor.Scalar(ref, "key"),
			}
		}
		m.add(nameNode.Value, nameNode.Line, role, false)
	}

	for _, item := range extractor.Items(extractor.MappingValue(container, "envFrom")) {
		if name := extractor.Scalar(extractor.MappingValue(item, "secretRef"), "name"); name != "" {
			m.add("", item.Line, extractor.Role{Kind: extractor.EnvFrom, Name: name, SourceKind: "Secret"}, true)
		}
		if name := extractor.Scalar(extractor.MappingValue(item, "configMapRef"), "name"); name != "" {
			m.add("", item.Line, extractor.Role{Kind: extractor.EnvFrom, Name: name, SourceKind: "ConfigMap"}, true)
		}
	}
}
