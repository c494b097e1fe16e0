package fixer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/envcheck/envcheck/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sorts keys",
			input:    "B_KEY=2\nA_KEY=1\n",
			expected: "A_KEY=1\nB_KEY=2\n",
		},
		{
			name:     "trims trailing whitespace",
			input:    "KEY=value  \n",
			expected: "KEY=value\n",
		},
		{
			name:     "keeps header, attached comments and footer",
			input:    "# Header\n\n# Key B\nB_KEY=2\n\n# Key A\nA_KEY=1\n# Footer",
			expected: "# Header\n# Key A\nA_KEY=1\n# Key B\nB_KEY=2\n# Footer\n",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only is untouched",
			input:    "  \n\n",
			expected: "  \n\n",
		},
		{
			name:     "comment only",
			input:    "# one\n\n# two\n",
			expected: "# one\n# two\n",
		},
		{
			name:     "adds trailing newline",
			input:    "A=1",
			expected: "A=1\n",
		},
		{
			name:     "export prefix ignored for ordering",
			input:    "export B=1\nA=2\n",
			expected: "A=2\nexport B=1\n",
		},
		{
			name:     "duplicates keep relative order",
			input:    "B=1\nA=first\nA=second\n",
			expected: "A=first\nA=second\nB=1\n",
		},
		{
			name:     "garbage lines fold into comments",
			input:    "B=1\nnot a pair\nA=2\n",
			expected: "not a pair\nA=2\nB=1\n",
		},
		{
			name:     "interleaved banner moves with the next key",
			input:    "C=3\n\n# --- database ---\n\nB=2\nA=1\n",
			expected: "A=1\n# --- database ---\nB=2\nC=3\n",
		},
		{
			name:     "blank lines are dropped",
			input:    "A=1\n\n\nB=2\n",
			expected: "A=1\nB=2\n",
		},
		{
			name:     "crlf input",
			input:    "B=2\r\nA=1\r\n",
			expected: "A=1\nB=2\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got, Normalize(got), "second pass must not change the output")
		})
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"\n",
		"# only a comment",
		"A=1\nB=2\n",
		"# h1\n# h2\n\nZ=1\n# z note\n\n# y note\nY=2\n\n# tail\n\n# tail 2\n",
		"export  Q = 'x' \n=empty\nP=\n  # indented\nO=1",
		"B=1\n# dangling\n",
		"# header\nB=2\nA=1\n",
		"A=1\nA=0\n# c\nA=2\n",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalize_ClearsLintFindings(t *testing.T) {
	t.Parallel()

	input := "B=2\nA=1\n"
	before := rules.Check(envfile.ParseString(".env", input), config.Default())
	require.Len(t, before, 1)
	assert.Equal(t, diag.W003, before[0].Rule)
	assert.Equal(t, 2, before[0].Line)
	assert.Contains(t, before[0].Message, "'A'")

	fixed := Normalize(input)
	assert.Equal(t, "A=1\nB=2\n", fixed)
	assert.Empty(t, rules.Check(envfile.ParseString(".env", fixed), config.Default()))
}

func TestRewrite_WritesOnlyWhenChanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("B=2\nA=1\n"), 0600))

	needs, err := NeedsRewrite(path)
	require.NoError(t, err)
	assert.True(t, needs)

	changed, err := Rewrite(path)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=2\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	changed, err = Rewrite(path)
	require.NoError(t, err)
	assert.False(t, changed)

	needs, err = NeedsRewrite(path)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestRewrite_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Rewrite(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, diag.ErrIO)
}
