package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rageval/internal/answer"
	"rageval/internal/domain"
	"rageval/internal/index"
)

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.Build([]domain.Document{
		{DocID: "d1", Title: "Quota", Text: "quota limit retry backoff"},
		{DocID: "d2", Title: "Timeouts", Text: "request timeout deadline exceeded"},
	})
	require.NoError(t, err)
	return idx
}

func TestBuildContextJoinsInRankOrder(t *testing.T) {
	docs := []domain.Document{
		{DocID: "a", Title: "First", Text: "alpha"},
		{DocID: "b", Title: "Second", Text: "beta"},
	}
	got := BuildContext(docs, 0)
	assert.Equal(t, "[Doc 1] a — First\nalpha\n\n[Doc 2] b — Second\nbeta", got)
}

func TestBuildContextDropsWholeDocumentsFromTail(t *testing.T) {
	docs := []domain.Document{
		{DocID: "a", Title: "First", Text: "alpha"},
		{DocID: "b", Title: "Second", Text: strings.Repeat("beta ", 100)},
	}
	first := BuildContext(docs[:1], 0)
	got := BuildContext(docs, len(first)+10)
	assert.Equal(t, first, got, "second doc must be dropped whole, not cut")
}

func TestRunProducesOneRecordPerQuestionInOrder(t *testing.T) {
	gold := []domain.GoldItem{
		{ID: "q-001", Question: "why quota limit"},
		{ID: "q-002", Question: "why timeout"},
	}
	r := New(testIndex(t), answer.NewStub(), Options{TopK: 2}, nil)
	records := r.Run(context.Background(), gold)

	require.Len(t, records, 2)
	assert.Equal(t, "q-001", records[0].ID)
	assert.Equal(t, "q-002", records[1].ID)
	for _, rec := range records {
		assert.False(t, rec.Failed)
		assert.NotEmpty(t, rec.Answer)
		assert.NotEmpty(t, rec.Context)
		assert.Len(t, rec.Retrieved, 2)
		assert.GreaterOrEqual(t, rec.Latency.TotalMs, 0.0)
	}
}

type failingSource struct{ failID string }

func (f *failingSource) Name() string { return "failing" }

func (f *failingSource) Answer(ctx context.Context, question, contextText string) (string, error) {
	if strings.Contains(question, f.failID) {
		return "", errors.New("upstream unavailable")
	}
	return "ok answer", nil
}

func TestRunIsolatesPerQuestionFailures(t *testing.T) {
	gold := []domain.GoldItem{
		{ID: "q-001", Question: "quota BROKEN question"},
		{ID: "q-002", Question: "timeout question"},
	}
	r := New(testIndex(t), &failingSource{failID: "BROKEN"}, Options{TopK: 1}, nil)
	records := r.Run(context.Background(), gold)

	require.Len(t, records, 2)
	assert.True(t, records[0].Failed)
	assert.Equal(t, domain.ErrorKindAnswerSource, records[0].ErrorKind)
	assert.Contains(t, records[0].Error, "upstream unavailable")
	assert.Empty(t, records[0].Answer)

	assert.False(t, records[1].Failed)
	assert.Equal(t, "ok answer", records[1].Answer)
}

type blockingSource struct{}

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) Answer(ctx context.Context, question, contextText string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRunRecordsAnswerTimeoutKind(t *testing.T) {
	gold := []domain.GoldItem{{ID: "q-001", Question: "quota"}}
	r := New(testIndex(t), &blockingSource{}, Options{TopK: 1, AnswerTimeout: 10 * time.Millisecond}, nil)
	records := r.Run(context.Background(), gold)

	require.Len(t, records, 1)
	assert.True(t, records[0].Failed)
	assert.Equal(t, domain.ErrorKindAnswerTimeout, records[0].ErrorKind)
}
