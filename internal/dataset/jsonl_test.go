package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocuments(t *testing.T) {
	path := writeFile(t, "documents.jsonl", `
{"doc_id":"d1","title":"Quota","text":"quota limit retry backoff"}

{"doc_id":"d2","title":"Timeouts","text":"request timeout"}
`)
	docs, err := LoadDocuments(path)
	require.NoError(t, err)
	require.Len(t, docs, 2, "blank lines are skipped")
	assert.Equal(t, "d1", docs[0].DocID)
	assert.Equal(t, "Timeouts", docs[1].Title)
}

func TestLoadDocumentsRejectsInvalidLine(t *testing.T) {
	path := writeFile(t, "documents.jsonl", `{"doc_id":"d1","text":"ok"}
{not json}`)
	_, err := LoadDocuments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadDocumentsRejectsDuplicateIDs(t *testing.T) {
	path := writeFile(t, "documents.jsonl", `{"doc_id":"d1","text":"a"}
{"doc_id":"d1","text":"b"}`)
	_, err := LoadDocuments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate doc_id")
}

func TestLoadDocumentsRejectsEmptyFile(t *testing.T) {
	path := writeFile(t, "documents.jsonl", "\n\n")
	_, err := LoadDocuments(path)
	require.Error(t, err)
}

func TestLoadGoldSet(t *testing.T) {
	path := writeFile(t, "eval_set.jsonl", `{"id":"q-001","question":"why quota","expected":"quota limit","must_include":["quota"],"must_not_include":["delete"]}`)
	items, err := LoadGoldSet(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "q-001", items[0].ID)
	assert.Equal(t, []string{"quota"}, items[0].MustInclude)
	assert.Equal(t, []string{"delete"}, items[0].MustNotInclude)
}

func TestLoadGoldSetRequiresQuestion(t *testing.T) {
	path := writeFile(t, "eval_set.jsonl", `{"id":"q-001","expected":"x"}`)
	_, err := LoadGoldSet(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing question")
}
