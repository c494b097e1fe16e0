package argocd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const application = `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: web
spec:
  source:
    repoURL: https://example.com/repo.git
    plugin:
      env:
        - name: PLUGIN_MODE
          value: strict
    kustomize:
      commonEnv:
        - name: COMMON_A
      env:
        - name: LEGACY_B
      commonEnvs:
        - name: PLURAL_C
  sources:
    - plugin:
        env:
          - name: SECOND_SOURCE
`

func keys(refs []extractor.Reference) []string {
	var out []string
	for _, r := range refs {
		out = append(out, r.Key)
	}
	return out
}

func TestParse_ExtractsPluginAndKustomizeEnv(t *testing.T) {
	t.Parallel()

	refs, err := Parse("app.yaml", []byte(application))
	require.NoError(t, err)
	assert.Equal(t, []string{"PLUGIN_MODE", "COMMON_A", "LEGACY_B", "PLURAL_C", "SECOND_SOURCE"}, keys(refs))
	assert.Equal(t, 10, refs[0].Line)
	assert.Equal(t, "ArgoCD Application/web", refs[0].Origin)
}

func TestParse_IgnoresDocuments_When_NotArgoApplication(t *testing.T) {
	t.Parallel()

	content := `apiVersion: apps/v1
kind: Application
spec:
  source:
    plugin:
      env:
        - name: NOT_ARGO
---
apiVersion: argoproj.io/v1alpha1
kind: AppProject
spec:
  source:
    plugin:
      env:
        - name: NOT_APP
`
	refs, err := Parse("mixed.yaml", []byte(content))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestParse_FailsWithFormatError_When_YAMLUnparsable(t *testing.T) {
	t.Parallel()

	refs, err := Parse("template.yaml", []byte("metadata:\n  name: {{ .Release.Name }\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrFormat))
	assert.Empty(t, refs)
}

func TestScan_FindsApplicationsRecursively(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	apps := filepath.Join(dir, "apps", "prod")
	require.NoError(t, os.MkdirAll(apps, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(apps, "web.yml"), []byte(application), 0644))

	e, err := extractor.Lookup("argocd")
	require.NoError(t, err)

	refs, err := e.Scan(dir, extractor.ScanOptions{})
	require.NoError(t, err)
	assert.Len(t, refs, 5)
}
