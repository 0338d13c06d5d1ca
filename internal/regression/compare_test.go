package regression

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rageval/internal/domain"
)

func evalSet(scores map[string][3]float64) []domain.EvalRecord {
	out := make([]domain.EvalRecord, 0, len(scores))
	for id, s := range scores {
		out = append(out, domain.EvalRecord{
			ID:                       id,
			MustIncludeScore:         s[0],
			GroundingScore:           s[1],
			MustNotIncludeViolations: int(s[2]),
		})
	}
	return out
}

func TestCompareSelfIsIdentity(t *testing.T) {
	records := evalSet(map[string][3]float64{
		"q-001": {1.0, 0.8, 0},
		"q-002": {0.5, 0.4, 1},
	})
	report, err := Compare(records, records, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Compared)
	assert.Empty(t, report.NewViolationIDs)
	for _, e := range report.Entries {
		assert.Equal(t, StatusUnchanged, e.Status)
		for m, d := range e.MetricDeltas {
			assert.Zero(t, d, "metric %s", m)
		}
		assert.Zero(t, e.NewViolations)
	}
}

func TestCompareDeltasAreAntisymmetric(t *testing.T) {
	older := evalSet(map[string][3]float64{"q-001": {1.0, 0.9, 0}, "q-002": {0.2, 0.3, 2}})
	newer := evalSet(map[string][3]float64{"q-001": {0.5, 0.7, 1}, "q-002": {0.8, 0.1, 0}})

	forward, err := Compare(older, newer, Options{})
	require.NoError(t, err)
	backward, err := Compare(newer, older, Options{})
	require.NoError(t, err)

	require.Len(t, backward.Entries, len(forward.Entries))
	for i, fe := range forward.Entries {
		be := backward.Entries[i]
		require.Equal(t, fe.ID, be.ID)
		for m, d := range fe.MetricDeltas {
			assert.InDelta(t, -d, be.MetricDeltas[m], 1e-9, "metric %s for %s", m, fe.ID)
		}
	}
}

func TestCompareFlagsNewViolationsAsRegressed(t *testing.T) {
	older := evalSet(map[string][3]float64{"q-001": {1.0, 0.9, 0}})
	newer := evalSet(map[string][3]float64{"q-001": {1.0, 0.9, 1}})

	report, err := Compare(older, newer, Options{})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, StatusRegressed, report.Entries[0].Status)
	assert.Equal(t, 1, report.Entries[0].NewViolations)
	assert.Equal(t, []string{"q-001"}, report.NewViolationIDs)
}

func TestCompareStatusClassification(t *testing.T) {
	older := evalSet(map[string][3]float64{
		"q-imp": {0.5, 0.5, 1},
		"q-reg": {0.9, 0.9, 0},
		"q-sam": {0.7, 0.7, 0},
	})
	newer := evalSet(map[string][3]float64{
		"q-imp": {0.9, 0.5, 0},
		"q-reg": {0.9, 0.4, 0},
		"q-sam": {0.705, 0.7, 0},
	})
	report, err := Compare(older, newer, Options{})
	require.NoError(t, err)

	byID := map[string]Entry{}
	for _, e := range report.Entries {
		byID[e.ID] = e
	}
	assert.Equal(t, StatusImproved, byID["q-imp"].Status)
	assert.Equal(t, StatusRegressed, byID["q-reg"].Status)
	assert.Equal(t, StatusUnchanged, byID["q-sam"].Status, "movement inside tolerance is unchanged")
}

func TestCompareReportsAddedAndRemoved(t *testing.T) {
	older := evalSet(map[string][3]float64{"q-001": {1, 1, 0}, "q-old": {1, 1, 0}})
	newer := evalSet(map[string][3]float64{"q-001": {1, 1, 0}, "q-new": {1, 1, 0}})

	report, err := Compare(older, newer, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"q-new"}, report.Added)
	assert.Equal(t, []string{"q-old"}, report.Removed)
	assert.Equal(t, 1, report.Compared)
}

func TestCompareNoOverlap(t *testing.T) {
	older := evalSet(map[string][3]float64{"q-a": {1, 1, 0}})
	newer := evalSet(map[string][3]float64{"q-b": {1, 1, 0}})
	_, err := Compare(older, newer, Options{})
	require.ErrorIs(t, err, ErrNoOverlap)
}

func TestWorstRankingIsDeterministic(t *testing.T) {
	older := evalSet(map[string][3]float64{
		"q-b": {1.0, 1.0, 0},
		"q-a": {1.0, 1.0, 0},
		"q-c": {1.0, 1.0, 0},
	})
	newer := evalSet(map[string][3]float64{
		"q-b": {0.5, 1.0, 0}, // worst delta -0.5
		"q-a": {0.5, 1.0, 0}, // worst delta -0.5, ties broken by id
		"q-c": {0.9, 1.0, 0},
	})
	report, err := Compare(older, newer, Options{WorstN: 2})
	require.NoError(t, err)
	require.Len(t, report.Worst, 2)
	assert.Equal(t, "q-a", report.Worst[0].ID)
	assert.Equal(t, "q-b", report.Worst[1].ID)
}

func TestRenderMarkdown(t *testing.T) {
	older := evalSet(map[string][3]float64{"q-001": {1.0, 0.9, 0}})
	newer := evalSet(map[string][3]float64{"q-001": {0.5, 0.9, 1}})
	report, err := Compare(older, newer, Options{})
	require.NoError(t, err)

	md := RenderMarkdown(report, "old.jsonl", "new.jsonl")
	assert.True(t, strings.HasPrefix(md, "# RAG Evaluation Regression Report"))
	assert.Contains(t, md, "Questions compared: 1")
	assert.Contains(t, md, "q-001")
	assert.Contains(t, md, "## Worst Regressions")
}
