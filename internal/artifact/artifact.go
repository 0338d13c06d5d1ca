// Package artifact persists and reloads the hand-off records between
// pipeline stages: run artifacts (JSONL), eval artifacts (JSONL plus a CSV
// export), and regression reports (JSON plus Markdown).
package artifact

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rageval/internal/domain"
	"rageval/internal/regression"
)

// Timestamp returns the UTC stamp used in artifact file names.
func Timestamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

// WriteRun persists a run artifact, one record per line in gold-set order.
func WriteRun(path string, records []domain.RunRecord) error {
	return writeJSONL(path, records)
}

// LoadRun reloads a run artifact unchanged.
func LoadRun(path string) ([]domain.RunRecord, error) {
	return loadJSONL[domain.RunRecord](path)
}

// WriteEval persists an eval artifact, one record per run record.
func WriteEval(path string, records []domain.EvalRecord) error {
	return writeJSONL(path, records)
}

// LoadEval reloads an eval artifact unchanged.
func LoadEval(path string) ([]domain.EvalRecord, error) {
	return loadJSONL[domain.EvalRecord](path)
}

// WriteEvalCSV exports an eval artifact for spreadsheet use. The JSONL
// artifact stays the canonical, reloadable form.
func WriteEvalCSV(path string, records []domain.EvalRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "must_include_score", "must_not_include_violations", "grounding_score", "retrieval_ms", "generation_ms", "total_ms", "failed", "error"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			formatScore(r.MustIncludeScore),
			strconv.Itoa(r.MustNotIncludeViolations),
			formatScore(r.GroundingScore),
			formatScore(r.Latency.RetrievalMs),
			formatScore(r.Latency.GenerationMs),
			formatScore(r.Latency.TotalMs),
			strconv.FormatBool(r.Failed),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteRegressionJSON persists the machine-readable regression report.
func WriteRegressionJSON(path string, report *regression.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteRegressionMarkdown persists the human-readable rendering.
func WriteRegressionMarkdown(path string, report *regression.Report, oldRef, newRef string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(regression.RenderMarkdown(report, oldRef, newRef)), 0o644)
}

func writeJSONL[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

func loadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []T
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r T
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("invalid JSONL at %s line %d: %w", path, lineNo, err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no records found in %s", path)
	}
	return out, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
