package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execValidate(t *testing.T, rootOpts *RootOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidate_ValidScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "basic.yaml", validScenarioYAML)

	buf, err := execValidate(t, &RootOptions{Format: "text"}, path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ok    "+path)
}

func TestValidate_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "good.yaml", validScenarioYAML)
	bad := writeScenario(t, dir, "bad.yaml", `name: bad
reference: {contig: chr1, start: 100, bases: acgt}
assembly: [{pos: 101, ref: C, alt: T}]
`)

	buf, err := execValidate(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "ok    "+good)
	assert.Contains(t, out, "FAIL  "+bad)
	assert.Contains(t, out, ErrCodeSchema)
}

func TestValidate_JSONOutput(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "basic.yaml", validScenarioYAML)

	buf, err := execValidate(t, &RootOptions{Format: "json"}, path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_NonExistentPath(t *testing.T) {
	_, err := execValidate(t, &RootOptions{Format: "text"}, "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
