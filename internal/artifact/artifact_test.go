package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rageval/internal/domain"
)

func TestRunArtifactRoundTrip(t *testing.T) {
	records := []domain.RunRecord{
		{
			ID:        "q-001",
			Question:  "why quota",
			Retrieved: []domain.RetrievedItem{{DocID: "d1", Score: 0.42, Rank: 1}},
			Context:   "[Doc 1] d1 — Quota\nquota limit",
			Answer:    "Because of the quota limit.",
			Latency:   domain.Latency{RetrievalMs: 1.5, GenerationMs: 20, TotalMs: 21.5},
		},
		{ID: "q-002", Question: "broken", Failed: true, Error: "upstream unavailable", ErrorKind: domain.ErrorKindAnswerSource},
	}
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, WriteRun(path, records))

	got, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, records, got, "run artifact must reload unchanged")
}

func TestEvalArtifactRoundTrip(t *testing.T) {
	records := []domain.EvalRecord{
		{ID: "q-001", MustIncludeScore: 1, GroundingScore: 0.75, MustNotIncludeViolations: 1},
		{ID: "q-002", Failed: true, Error: "upstream unavailable"},
	}
	path := filepath.Join(t.TempDir(), "eval.jsonl")
	require.NoError(t, WriteEval(path, records))

	got, err := LoadEval(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteEvalCSV(t *testing.T) {
	records := []domain.EvalRecord{
		{ID: "q-001", MustIncludeScore: 0.5, GroundingScore: 0.25},
	}
	path := filepath.Join(t.TempDir(), "eval.csv")
	require.NoError(t, WriteEvalCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id,must_include_score")
	assert.Contains(t, string(data), "q-001,0.500,0,0.250")
}

func TestLoadRunRejectsEmptyArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := LoadRun(path)
	require.Error(t, err)
}
