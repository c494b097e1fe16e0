// Package ansible finds environment lookups in Ansible playbooks and roles.
package ansible

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/scanner"
)

// lookup('env', 'KEY'), lookup("ansible.builtin.env", "KEY")
var lookupPattern = regexp.MustCompile(`lookup\(\s*['"](?:ansible\.builtin\.)?env['"]\s*,\s*['"]([^'"]+)['"]\s*\)`)

// Extractor is the "ansible" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "ansible" }
func (Extractor) Source() string { return "Ansible file" }

// Scan searches every *.yml and *.yaml file under dir
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	return extractor.ScanFiles(dir, opts, scanner.HasExtension(".yml", ".yaml"), Parse)
}

// Parse returns one reference per env lookup. Files are matched as text, so
// templated playbooks that are not valid YAML still scan.
func Parse(path string, content []byte) ([]extractor.Reference, error) {
	var refs []extractor.Reference
	for _, m := range lookupPattern.FindAllSubmatchIndex(content, -1) {
		key := string(content[m[2]:m[3]])
		line := bytes.Count(content[:m[0]], []byte("\n")) + 1
		refs = append(refs, extractor.Reference{
			Key:    key,
			Path:   path,
			Line:   line,
			Role:   extractor.Role{Kind: extractor.Direct},
			Origin: fmt.Sprintf("Ansible %s", path),
		})
	}
	return refs, nil
}
