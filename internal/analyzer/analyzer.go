// Package analyzer classifies env keys against other env files or against
// references extracted from infrastructure sources.
package analyzer

import (
	"fmt"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/envcheck/envcheck/internal/extractor"
)

// Options tune infra reconciliation
type Options struct {
	// Source names the scanned family in unused-key messages,
	// e.g. "K8s manifest"
	Source string
	// SkipUnused suppresses W006 diagnostics
	SkipUnused bool
}

// Compare checks every key of the first (reference) file against each of the
// other files. Keys that exist only outside the reference are not reported.
func Compare(files []*envfile.EnvFile, cfg config.Config) ([]diag.Diagnostic, error) {
	if len(files) < 2 {
		return nil, diag.UsageError("compare requires at least two files, got %d", len(files))
	}

	reference := files[0]
	refKeys := orderedKeys(reference)

	var diags []diag.Diagnostic
	for _, other := range files[1:] {
		otherKeys := other.Keys()
		for _, key := range refKeys {
			if otherKeys[key] || cfg.ShouldIgnoreKey(key) {
				continue
			}
			diags = appendApplied(diags, cfg, diag.Diagnostic{
				Rule:     diag.W004,
				Severity: diag.Warning,
				Message:  fmt.Sprintf("Missing key '%s' (present in %s)", key, reference.Path),
				Path:     other.Path,
			})
		}
	}
	return diags, nil
}

// Reconcile compares env against infra references. Every defining or
// consuming reference to a key absent from env yields its own warning, so
// a key defined in two manifests is reported twice. Wildcard references
// never take part. Env keys not found in any concrete reference are
// reported as unused.
func Reconcile(env *envfile.EnvFile, refs []extractor.Reference, cfg config.Config, opts Options) []diag.Diagnostic {
	envKeys := env.Keys()

	var defining, consuming []extractor.Reference
	for _, ref := range refs {
		if ref.Wildcard {
			continue
		}
		if ref.Role.Defines() {
			defining = append(defining, ref)
		} else {
			consuming = append(consuming, ref)
		}
	}

	var diags []diag.Diagnostic
	diags = appendMissing(diags, cfg, envKeys, defining, "found in", opts.Source)
	diags = appendMissing(diags, cfg, envKeys, consuming, "referenced in", opts.Source)

	if opts.SkipUnused {
		return diags
	}

	known := make(map[string]bool, len(defining)+len(consuming))
	for _, ref := range defining {
		known[ref.Key] = true
	}
	for _, ref := range consuming {
		known[ref.Key] = true
	}

	source := opts.Source
	if source == "" {
		source = "infrastructure file"
	}
	for _, key := range orderedKeys(env) {
		if known[key] {
			continue
		}
		first, _ := env.Lookup(key)
		diags = appendApplied(diags, cfg, diag.Diagnostic{
			Rule:     diag.W006,
			Severity: diag.Info,
			Message:  fmt.Sprintf("Key '%s' in .env but not found in any %s", key, source),
			Path:     env.Path,
			Line:     first.Line,
		})
	}

	return diags
}

func appendMissing(diags []diag.Diagnostic, cfg config.Config, envKeys map[string]bool, refs []extractor.Reference, verb, source string) []diag.Diagnostic {
	for _, ref := range refs {
		if envKeys[ref.Key] || cfg.ShouldIgnoreKey(ref.Key) {
			continue
		}
		origin := ref.Origin
		if origin == "" {
			origin = source
		}
		diags = appendApplied(diags, cfg, diag.Diagnostic{
			Rule:     diag.W005,
			Severity: diag.Warning,
			Message:  fmt.Sprintf("Key '%s' %s %s but missing in .env", ref.Key, verb, origin),
			Path:     ref.Path,
			Line:     ref.Line,
		})
	}
	return diags
}

func appendApplied(diags []diag.Diagnostic, cfg config.Config, d diag.Diagnostic) []diag.Diagnostic {
	if d, keep := cfg.Apply(d); keep {
		return append(diags, d)
	}
	return diags
}

// orderedKeys returns each key of f once, in order of first definition
func orderedKeys(f *envfile.EnvFile) []string {
	seen := make(map[string]bool, len(f.Vars))
	keys := make([]string, 0, len(f.Vars))
	for _, v := range f.Vars {
		if !seen[v.Key] {
			seen[v.Key] = true
			keys = append(keys, v.Key)
		}
	}
	return keys
}
