package analyzer

import (
	"errors"
	"testing"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/envcheck/envcheck/internal/extractor"
)

func envFile(path, content string) *envfile.EnvFile {
	return envfile.ParseString(path, content)
}

func messages(diags []diag.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestCompare_ReferenceKeysMissingInOthers(t *testing.T) {
	ref := envFile(".env.example", "A=1\nB=2\nC=3\n")
	other := envFile(".env", "A=1\nB=2\n")

	diags, err := Compare([]*envfile.EnvFile{ref, other}, config.Default())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), messages(diags))
	}
	d := diags[0]
	if d.Rule != diag.W004 || d.Severity != diag.Warning {
		t.Errorf("Unexpected rule/severity: %v/%v", d.Rule, d.Severity)
	}
	if d.Message != "Missing key 'C' (present in .env.example)" {
		t.Errorf("Unexpected message: %s", d.Message)
	}
	if d.Path != ".env" || d.HasLine() {
		t.Errorf("Expected path .env without line, got %s:%d", d.Path, d.Line)
	}
}

func TestCompare_IsAsymmetric(t *testing.T) {
	full := envFile("full", "A=1\nB=2\nC=3\n")
	partial := envFile("partial", "A=1\nB=2\n")

	forward, _ := Compare([]*envfile.EnvFile{full, partial}, config.Default())
	backward, _ := Compare([]*envfile.EnvFile{partial, full}, config.Default())

	if len(forward) != 1 {
		t.Errorf("Expected 1 diagnostic with full reference, got %d", len(forward))
	}
	if len(backward) != 0 {
		t.Errorf("Expected no diagnostics with partial reference, got %v", messages(backward))
	}
}

func TestCompare_OnePerKeyAndFile(t *testing.T) {
	ref := envFile("ref", "A=1\nB=2\nA=3\n")
	one := envFile("one", "")
	two := envFile("two", "B=1\n")

	diags, err := Compare([]*envfile.EnvFile{ref, one, two}, config.Default())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	expected := []string{
		"Missing key 'A' (present in ref)",
		"Missing key 'B' (present in ref)",
		"Missing key 'A' (present in ref)",
	}
	got := messages(diags)
	if len(got) != len(expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("diag %d: got %q, want %q", i, got[i], expected[i])
		}
	}
	if diags[2].Path != "two" {
		t.Errorf("Expected third diagnostic on file two, got %s", diags[2].Path)
	}
}

func TestCompare_RejectsFewerThanTwoFiles(t *testing.T) {
	_, err := Compare([]*envfile.EnvFile{envFile("a", "A=1")}, config.Default())
	if !errors.Is(err, diag.ErrUsage) {
		t.Fatalf("Expected ErrUsage, got %v", err)
	}
	if err.Error() != "compare requires at least two files, got 1" {
		t.Errorf("Unexpected error text: %v", err)
	}
}

func TestCompare_IgnoredKeys(t *testing.T) {
	cfg, err := config.New(config.File{Ignore: []string{"*_SECRET"}}, nil)
	if err != nil {
		t.Fatalf("config.New failed: %v", err)
	}

	diags, _ := Compare([]*envfile.EnvFile{envFile("ref", "DB_SECRET=x\nA=1\n"), envFile("b", "")}, cfg)
	if len(diags) != 1 || diags[0].Message != "Missing key 'A' (present in ref)" {
		t.Errorf("Unexpected diagnostics: %v", messages(diags))
	}
}

func TestReconcile_MissingKeys(t *testing.T) {
	env := envFile(".env", "API_KEY=test123\n")
	refs := []extractor.Reference{
		{Key: "DATABASE_URL", Path: "cm-a.yaml", Line: 5, Role: extractor.Role{Kind: extractor.ConfigMapData}, Origin: "K8s ConfigMap/a"},
		{Key: "DATABASE_URL", Path: "cm-b.yaml", Line: 7, Role: extractor.Role{Kind: extractor.ConfigMapData}, Origin: "K8s ConfigMap/b"},
		{Key: "STRIPE_KEY", Path: "deploy.yaml", Role: extractor.Role{Kind: extractor.SecretKeyRef, Name: "stripe", SourceKey: "key"}, Origin: "K8s Deployment/web"},
		{Key: "API_KEY", Path: "deploy.yaml", Role: extractor.Role{Kind: extractor.Direct}, Origin: "K8s Deployment/web"},
	}

	diags := Reconcile(env, refs, config.Default(), Options{Source: "K8s manifest"})

	expected := []string{
		"Key 'DATABASE_URL' found in K8s ConfigMap/a but missing in .env",
		"Key 'DATABASE_URL' found in K8s ConfigMap/b but missing in .env",
		"Key 'STRIPE_KEY' referenced in K8s Deployment/web but missing in .env",
	}
	got := messages(diags)
	if len(got) != len(expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("diag %d: got %q, want %q", i, got[i], expected[i])
		}
		if diags[i].Rule != diag.W005 || diags[i].Severity != diag.Warning {
			t.Errorf("diag %d: unexpected rule/severity %v/%v", i, diags[i].Rule, diags[i].Severity)
		}
	}
	if diags[0].Path != "cm-a.yaml" || diags[0].Line != 5 {
		t.Errorf("Expected provenance cm-a.yaml:5, got %s:%d", diags[0].Path, diags[0].Line)
	}
}

func TestReconcile_WildcardNeverReportedMissing(t *testing.T) {
	env := envFile(".env", "")
	refs := []extractor.Reference{
		{Path: "deploy.yaml", Wildcard: true, Role: extractor.Role{Kind: extractor.EnvFrom, Name: "app-config", SourceKind: "ConfigMap"}},
		{Path: "main.go", Wildcard: true, Role: extractor.Role{Kind: extractor.Direct}},
	}

	diags := Reconcile(env, refs, config.Default(), Options{})
	if len(diags) != 0 {
		t.Errorf("Expected no diagnostics, got %v", messages(diags))
	}
}

func TestReconcile_UnusedKeys(t *testing.T) {
	env := envFile(".env", "# comment\nUSED=1\nUNUSED=2\nUNUSED=3\nDEFINED=4\n")
	refs := []extractor.Reference{
		{Key: "USED", Role: extractor.Role{Kind: extractor.Direct}},
		{Key: "DEFINED", Role: extractor.Role{Kind: extractor.SecretData}},
		{Key: "WILD", Wildcard: true, Role: extractor.Role{Kind: extractor.EnvFrom}},
	}

	diags := Reconcile(env, refs, config.Default(), Options{Source: "K8s manifest"})
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %v", messages(diags))
	}
	d := diags[0]
	if d.Rule != diag.W006 || d.Severity != diag.Info {
		t.Errorf("Unexpected rule/severity: %v/%v", d.Rule, d.Severity)
	}
	if d.Message != "Key 'UNUSED' in .env but not found in any K8s manifest" {
		t.Errorf("Unexpected message: %s", d.Message)
	}
	if d.Path != ".env" || d.Line != 3 {
		t.Errorf("Expected .env:3, got %s:%d", d.Path, d.Line)
	}
}

func TestReconcile_NoIssues(t *testing.T) {
	env := envFile(".env", "A=1\nB=2\n")
	refs := []extractor.Reference{
		{Key: "A", Role: extractor.Role{Kind: extractor.ConfigMapKeyRef}},
		{Key: "B", Role: extractor.Role{Kind: extractor.ConfigMapData}},
	}

	if diags := Reconcile(env, refs, config.Default(), Options{}); len(diags) != 0 {
		t.Errorf("Expected no issues, got %v", messages(diags))
	}
}

func TestReconcile_SkipUnusedAndIgnored(t *testing.T) {
	cfg, err := config.New(config.File{Ignore: []string{"LEGACY_*"}}, nil)
	if err != nil {
		t.Fatalf("config.New failed: %v", err)
	}
	env := envFile(".env", "EXTRA=1\n")
	refs := []extractor.Reference{
		{Key: "LEGACY_TOKEN", Role: extractor.Role{Kind: extractor.Direct}},
		{Key: "TF_VAR_region", Role: extractor.Role{Kind: extractor.Direct}, Origin: `Terraform variable "region"`},
	}

	diags := Reconcile(env, refs, cfg, Options{SkipUnused: true})
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %v", messages(diags))
	}
	if diags[0].Message != `Key 'TF_VAR_region' referenced in Terraform variable "region" but missing in .env` {
		t.Errorf("Unexpected message: %s", diags[0].Message)
	}
}

func TestReconcile_AppliesSeverityOverrides(t *testing.T) {
	cfg, err := config.New(config.File{Rules: config.RulesFile{
		Severity: map[string]string{"W005": "error"},
		Disable:  []string{"W006"},
	}}, nil)
	if err != nil {
		t.Fatalf("config.New failed: %v", err)
	}

	env := envFile(".env", "UNUSED=1\n")
	refs := []extractor.Reference{{Key: "MISSING", Role: extractor.Role{Kind: extractor.Direct}}}

	diags := Reconcile(env, refs, cfg, Options{})
	if len(diags) != 1 || diags[0].Severity != diag.Error {
		t.Errorf("Expected a single error diagnostic, got %+v", diags)
	}
}
