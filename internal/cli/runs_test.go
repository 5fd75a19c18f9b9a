package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandbio/hapgen/internal/store"
)

func execRuns(t *testing.T, rootOpts *RootOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRunsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func seedRunLog(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteRun(context.Background(), store.RunRecord{
		ID:        store.NewRunID(),
		Scenario:  "seeded",
		Contig:    "chr1",
		SpanStart: 100,
		SpanEnd:   111,
		Mode:      "partial",
		Haplotypes: []store.HaplotypeRecord{
			{Bases: "AAAATTTTCCCC", Cigar: "12M", UseRef: true},
		},
	}))
	return dbPath
}

func TestRuns_ListsSeededRuns(t *testing.T) {
	dbPath := seedRunLog(t)

	buf, err := execRuns(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "seeded")
	assert.Contains(t, out, "chr1:100-111")
	assert.Contains(t, out, "partial")
}

func TestRuns_JSONOutput(t *testing.T) {
	dbPath := seedRunLog(t)

	buf, err := execRuns(t, &RootOptions{Format: "json"}, "--db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRuns_EmptyLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buf, err := execRuns(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no runs logged")
}

func TestRuns_RequiresDBFlag(t *testing.T) {
	_, err := execRuns(t, &RootOptions{Format: "text"})
	require.Error(t, err)
}
