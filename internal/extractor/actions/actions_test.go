package actions

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

const workflow = `name: ci
on: [push]
env:
  GLOBAL_FLAG: "1"
jobs:
  test:
    runs-on: ubuntu-latest
    env:
      DATABASE_URL: postgres://localhost
    steps:
      - uses: actions/checkout@v4
      - run: make test
        env:
          API_TOKEN: ${{ secrets.API_TOKEN }}
`

func TestParse_CollectsEnvKeysAtEveryLevel(t *testing.T) {
	t.Parallel()

	refs, err := Parse("ci.yml", []byte(workflow))
	require.NoError(t, err)

	var keys []string
	for _, r := range refs {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"GLOBAL_FLAG", "DATABASE_URL", "API_TOKEN"}, keys)
	assert.Equal(t, 4, refs[0].Line)
	assert.Equal(t, 14, refs[2].Line)
	assert.Equal(t, "workflow ci.yml", refs[0].Origin)
}

func TestParse_IgnoresEnv_When_NotAMapping(t *testing.T) {
	t.Parallel()

	refs, err := Parse("odd.yml", []byte("env: production\njobs: {}\n"))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestParse_ReturnsFormatError_When_YAMLInvalid(t *testing.T) {
	t.Parallel()

	_, err := Parse("broken.yml", []byte("jobs:\n  test: [\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrFormat))
}

func TestScan_ReturnsEmpty_When_DirMissing(t *testing.T) {
	t.Parallel()

	e, err := extractor.Lookup("actions")
	require.NoError(t, err)

	refs, err := e.Scan(filepath.Join(t.TempDir(), DefaultDir), extractor.ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestScan_ReadsWorkflowDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), DefaultDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte(workflow), 0644))

	refs, err := Extractor{}.Scan(dir, extractor.ScanOptions{})
	require.NoError(t, err)
	assert.Len(t, refs, 3)
}
