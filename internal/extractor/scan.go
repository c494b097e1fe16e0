package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/scanner"
	"gopkg.in/yaml.v3"
)

var (
	debugMu  sync.Mutex
	debugOut io.Writer
)

// SetDebug routes [DEBUG] notes from adapters to w. A nil w turns them off.
func SetDebug(w io.Writer) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugOut = w
}

// Debugf writes a debug note when debugging is on. Safe for concurrent use.
func Debugf(format string, args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugOut != nil {
		fmt.Fprintf(debugOut, "[DEBUG] "+format+"\n", args...)
	}
}

// ScanOptions bound the directory walk of a scan
type ScanOptions struct {
	Exclude     []string // doublestar globs of files and directories to skip
	ExcludeDirs []string // directory names never entered
	MaxDepth    int      // 0 keeps the walker default
}

// NewScanner returns a directory walker honouring o
func (o ScanOptions) NewScanner() *scanner.Scanner {
	s := scanner.New()
	s.AddExcludeDirs(o.ExcludeDirs)
	s.SetExcludeGlobs(o.Exclude)
	s.SetMaxDepth(o.MaxDepth)
	return s
}

// ParseFunc extracts references from the content of one file
type ParseFunc func(path string, content []byte) ([]Reference, error)

// ScanFiles walks dir, reads every file accepted by match and collects the
// references parse returns. Excluded files are never read. The first read
// or parse error aborts the scan.
func ScanFiles(dir string, opts ScanOptions, match func(string) bool, parse ParseFunc) ([]Reference, error) {
	files, err := opts.NewScanner().Walk(dir, match)
	if err != nil {
		return nil, err
	}
	return ParseFiles(files, parse)
}

// ParseFiles reads and parses each of files in order
func ParseFiles(files []string, parse ParseFunc) ([]Reference, error) {
	var refs []Reference
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, diag.IOError("read", path, err)
		}
		found, err := parse(path, content)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return refs, nil
}

// DecodeYAML decodes every document of a YAML stream. Empty documents are
// skipped. A syntax error anywhere in the stream is a format error.
func DecodeYAML(path string, content []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))

	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, diag.FormatError(path, err)
		}
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			docs = append(docs, doc.Content[0])
		}
	}
	return docs, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// MappingValue returns the value stored under key in mapping n, or nil
func MappingValue(n *yaml.Node, key string) *yaml.Node {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}

// Path follows keys through nested mappings
func Path(n *yaml.Node, keys ...string) *yaml.Node {
	for _, key := range keys {
		n = MappingValue(n, key)
		if n == nil {
			return nil
		}
	}
	return n
}

// Scalar returns the scalar string under key in mapping n, or ""
func Scalar(n *yaml.Node, key string) string {
	v := MappingValue(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

// Items returns the elements of a sequence node, or nil for anything else
func Items(n *yaml.Node) []*yaml.Node {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]*yaml.Node, 0, len(n.Content))
	for _, item := range n.Content {
		items = append(items, resolve(item))
	}
	return items
}

// Pairs calls fn for every scalar key of mapping n with its value node
func Pairs(n *yaml.Node, fn func(key, value *yaml.Node)) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Kind == yaml.ScalarNode {
			fn(n.Content[i], resolve(n.Content[i+1]))
		}
	}
}
