// Package extractor defines the contract shared by every infrastructure
// adapter and the registry the CLI resolves adapters from.
package extractor

import (
	"fmt"
	"sort"
	"sync"
)

// RoleKind classifies how a source relates to an environment key
type RoleKind uint8

const (
	Direct RoleKind = iota
	SecretKeyRef
	ConfigMapKeyRef
	ConfigMapData
	SecretData
	EnvFrom
)

func (k RoleKind) String() string {
	switch k {
	case Direct:
		return "Direct"
	case SecretKeyRef:
		return "SecretKeyRef"
	case ConfigMapKeyRef:
		return "ConfigMapKeyRef"
	case ConfigMapData:
		return "ConfigMapData"
	case SecretData:
		return "SecretData"
	case EnvFrom:
		return "EnvFrom"
	default:
		return fmt.Sprintf("RoleKind(%d)", uint8(k))
	}
}

// Role is the tagged role of a reference. Name and SourceKey are set for
// SecretKeyRef and ConfigMapKeyRef; Name and SourceKind for EnvFrom.
type Role struct {
	Kind       RoleKind
	Name       string // referenced Secret/ConfigMap
	SourceKey  string // key inside the referenced object
	SourceKind string // "Secret" or "ConfigMap" for EnvFrom
}

// Defines reports whether the role establishes that the key's value exists
func (r Role) Defines() bool {
	return r.Kind == ConfigMapData || r.Kind == SecretData
}

// Reference is one occurrence of an environment key in an infra source.
// Wildcard references stand for a whole unresolved bundle of keys and
// leave Key empty.
type Reference struct {
	Key      string
	Path     string
	Line     int // 0 when the adapter has no line information
	Role     Role
	Wildcard bool
	Origin   string // e.g. "K8s Deployment/web", used in messages
}

// Extractor scans a directory tree and reports the references it finds.
// Scan fails only on unreadable files or documents that are not valid in
// the adapter's format; a valid document of the wrong shape yields nothing.
// Files excluded by opts are never read.
type Extractor interface {
	Name() string
	// Source names the family of files scanned, e.g. "K8s manifest"
	Source() string
	Scan(dir string, opts ScanOptions) ([]Reference, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Extractor)
)

// Register makes an extractor available by name. It panics on duplicates,
// so adapters call it from init.
func Register(e Extractor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := e.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("extractor %q registered twice", name))
	}
	registry[name] = e
}

// Lookup returns the extractor registered under name
func Lookup(name string) (Extractor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
	return e, nil
}

// Names lists registered extractors in sorted order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
