// Package terraform maps Terraform input variables to the TF_VAR_ keys that
// set them from the environment.
package terraform

import (
	"fmt"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/scanner"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// EnvPrefix is prepended to a variable name to form its environment key
const EnvPrefix = "TF_VAR_"

// Extractor is the "terraform" adapter
type Extractor struct{}

func init() {
	extractor.Register(Extractor{})
}

func (Extractor) Name() string   { return "terraform" }
func (Extractor) Source() string { return "Terraform configuration" }

// Scan parses every *.tf file under dir
func (Extractor) Scan(dir string, opts extractor.ScanOptions) ([]extractor.Reference, error) {
	return extractor.ScanFiles(dir, opts, scanner.HasExtension(".tf"), Parse)
}

// Parse returns one reference per top-level variable block
func Parse(path string, content []byte) ([]extractor.Reference, error) {
	file, diags := hclsyntax.ParseConfig(content, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diag.FormatError(path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, nil
	}

	var refs []extractor.Reference
	for _, block := range body.Blocks {
		if block.Type != "variable" || len(block.Labels) == 0 {
			continue
		}
		name := block.Labels[0]
		refs = append(refs, extractor.Reference{
			Key:    EnvPrefix + name,
			Path:   path,
			Line:   block.TypeRange.Start.Line,
			Role:   extractor.Role{Kind: extractor.Direct},
			Origin: fmt.Sprintf("Terraform variable %q", name),
		})
	}
	return refs, nil
}
