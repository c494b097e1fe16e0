package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ReturnsDefaults_When_NoFilePresent(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, cfg.Source())
	assert.Empty(t, cfg.Format())
	for _, id := range diag.AllRules() {
		assert.False(t, cfg.IsDisabled(id))
	}
	assert.Equal(t, diag.Warning, cfg.SeverityFor(diag.W001, diag.Warning))
}

func TestLoad_ReadsYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, ".envcheckrc.yaml", `
rules:
  disable: [W003]
  severity:
    W001: error
    E001: info
ignore:
  - "*_SECRET"
format: JSON
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source())
	assert.Equal(t, "json", cfg.Format())
	assert.True(t, cfg.IsDisabled(diag.W003))
	assert.False(t, cfg.IsDisabled(diag.W001))
	assert.Equal(t, diag.Error, cfg.SeverityFor(diag.W001, diag.Warning))
	assert.Equal(t, diag.Info, cfg.SeverityFor(diag.E001, diag.Error))
	assert.True(t, cfg.ShouldIgnoreKey("DB_SECRET"))
	assert.False(t, cfg.ShouldIgnoreKey("DB_URL"))
}

func TestLoad_ReadsTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".envcheckrc.toml", `
format = "github"
ignore = ["LEGACY_*"]

[rules]
disable = ["w002"]
warnings_as_errors = true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Format())
	assert.True(t, cfg.IsDisabled(diag.W002))
	assert.Equal(t, diag.Error, cfg.SeverityFor(diag.W003, diag.Warning))
	assert.Equal(t, diag.Info, cfg.SeverityFor(diag.W006, diag.Info))
	assert.True(t, cfg.ShouldIgnoreKey("LEGACY_TOKEN"))
}

func TestLoad_Fails_When_FileIsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		format  bool
	}{
		{name: "broken yaml", file: ".envcheckrc.yaml", content: "rules: [\n", format: true},
		{name: "broken toml", file: ".envcheckrc.toml", content: "rules = [\n", format: true},
		{name: "unknown rule", file: ".envcheckrc.yaml", content: "rules:\n  disable: [X123]\n"},
		{name: "unknown severity", file: ".envcheckrc.yaml", content: "rules:\n  severity:\n    W001: fatal\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, tc.file, tc.content)

			_, err := Load(dir)
			require.Error(t, err)
			assert.Equal(t, tc.format, errors.Is(err, diag.ErrFormat))
		})
	}
}

func TestApply_DropsDisabledAndPromotes(t *testing.T) {
	t.Parallel()

	cfg, err := New(File{Rules: RulesFile{Disable: []string{"W001"}, WarningsAsErrors: true}}, nil)
	require.NoError(t, err)

	_, keep := cfg.Apply(diag.Diagnostic{Rule: diag.W001, Severity: diag.Warning})
	assert.False(t, keep)

	d, keep := cfg.Apply(diag.Diagnostic{Rule: diag.W002, Severity: diag.Warning})
	assert.True(t, keep)
	assert.Equal(t, diag.Error, d.Severity)

	d, keep = cfg.Apply(diag.Diagnostic{Rule: diag.W006, Severity: diag.Info})
	assert.True(t, keep)
	assert.Equal(t, diag.Info, d.Severity)
}

func TestShouldIgnoreKey_Patterns(t *testing.T) {
	t.Parallel()

	cfg, err := New(File{Ignore: []string{"*_KEY", "AWS_*", "EXACT"}}, nil)
	require.NoError(t, err)

	tests := map[string]bool{
		"API_KEY":      true,
		"AWS_REGION":   true,
		"EXACT":        true,
		"EXACTLY":      false,
		"DATABASE_URL": false,
	}
	for key, want := range tests {
		assert.Equal(t, want, cfg.ShouldIgnoreKey(key), key)
	}
}

func TestShouldIgnorePath_UsesIgnoreFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, IgnoreFileName, "# generated files\n\n.env.generated\nfixtures/**\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.ShouldIgnorePath(".env.generated"))
	assert.True(t, cfg.ShouldIgnorePath("sub/.env.generated"))
	assert.True(t, cfg.ShouldIgnorePath("fixtures/a/.env"))
	assert.False(t, cfg.ShouldIgnorePath(".env"))
}

func TestConfig_IsImmutable_When_SourceSlicesChange(t *testing.T) {
	t.Parallel()

	ignore := []string{"A"}
	cfg, err := New(File{Ignore: ignore}, nil)
	require.NoError(t, err)

	ignore[0] = "B"
	assert.True(t, cfg.ShouldIgnoreKey("A"))
	assert.False(t, cfg.ShouldIgnoreKey("B"))
}

func TestTemplate_IsValidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".envcheckrc.yaml", Template)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format())
}

func TestLoad_ReadsScanSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".envcheckrc.toml", "[scan]\nfolders = [\"fixtures\"]\nmax_depth = 4\n")
	writeFile(t, dir, IgnoreFileName, "charts/**\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"fixtures"}, cfg.ExcludeDirs())
	assert.Equal(t, 4, cfg.MaxDepth())
	assert.Equal(t, []string{"charts/**"}, cfg.IgnorePaths())

	cfg.IgnorePaths()[0] = "changed"
	assert.Equal(t, []string{"charts/**"}, cfg.IgnorePaths())
}

func TestNew_Fails_When_MaxDepthNegative(t *testing.T) {
	t.Parallel()

	_, err := New(File{Scan: ScanFile{MaxDepth: -1}}, nil)
	assert.Error(t, err)
}
