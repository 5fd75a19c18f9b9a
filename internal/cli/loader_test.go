package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenarioYAML = `name: basic
description: one substitution
reference:
  contig: chr1
  start: 100
  bases: AAAATTTTCCCC
assembly:
  - pos: 103
    ref: A
    alt: G
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenarioFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "basic.yaml", validScenarioYAML)

	scenario, err := LoadScenarioFile(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", scenario.Name)
	require.Len(t, scenario.Assembly, 1)
}

func TestLoadScenarioFile_NotFound(t *testing.T) {
	_, err := LoadScenarioFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadScenarioFile_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "lowercase bases rejected",
			yaml: `name: bad
reference: {contig: chr1, start: 100, bases: acgt}
assembly: [{pos: 101, ref: C, alt: T}]
`,
		},
		{
			name: "negative start rejected",
			yaml: `name: bad
reference: {contig: chr1, start: -5, bases: ACGT}
assembly: [{pos: 101, ref: C, alt: T}]
`,
		},
		{
			name: "empty name rejected",
			yaml: `name: ""
reference: {contig: chr1, start: 100, bases: ACGT}
assembly: [{pos: 101, ref: C, alt: T}]
`,
		},
		{
			name: "zero haplotype cap rejected",
			yaml: `name: bad
reference: {contig: chr1, start: 100, bases: ACGT}
max_haplotypes: 0
assembly: [{pos: 101, ref: C, alt: T}]
`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "bad.yaml", tc.yaml)
			_, err := LoadScenarioFile(path)
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, ErrCodeSchema, le.Code)
		})
	}
}

func TestLoadScenarioFile_ParseErrorAfterSchema(t *testing.T) {
	// Schema-clean but semantically wrong: the ref allele does not match
	// the reference bases at that position.
	path := writeScenario(t, t.TempDir(), "mismatch.yaml", `name: mismatch
reference: {contig: chr1, start: 100, bases: AAAATTTTCCCC}
assembly: [{pos: 103, ref: T, alt: G}]
`)
	_, err := LoadScenarioFile(path)
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeParse, le.Code)
	assert.Contains(t, le.Message, "does not match reference bases")
}

func TestCollectScenarioPaths(t *testing.T) {
	dir := t.TempDir()
	b := writeScenario(t, dir, "b.yaml", validScenarioYAML)
	a := writeScenario(t, dir, "a.yaml", validScenarioYAML)

	paths, err := CollectScenarioPaths([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths, "directory contents are sorted")

	paths, err = CollectScenarioPaths([]string{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, paths, "explicit files keep argument order")
}

func TestCollectScenarioPaths_EmptyDirectory(t *testing.T) {
	_, err := CollectScenarioPaths([]string{t.TempDir()})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestCollectScenarioPaths_NotFound(t *testing.T) {
	_, err := CollectScenarioPaths([]string{"/nonexistent/scenarios"})
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadScenarioFile_HarnessFixtures(t *testing.T) {
	// The harness package's scenario fixtures must pass CLI-side schema
	// validation too; both load the same files in production.
	dir := filepath.Join("..", "harness", "testdata", "scenarios")
	paths, err := CollectScenarioPaths([]string{dir})
	require.NoError(t, err)
	for _, path := range paths {
		_, err := LoadScenarioFile(path)
		assert.NoError(t, err, path)
	}
}
