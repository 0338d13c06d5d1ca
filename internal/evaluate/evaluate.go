// Package evaluate scores completed run records against their gold
// constraints and aggregates eval artifacts.
package evaluate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"rageval/internal/domain"
)

// ErrJoinIntegrity is returned when a run record has no matching gold item.
// This indicates upstream artifact corruption and aborts the whole stage;
// silently skipping would shrink metric denominators.
var ErrJoinIntegrity = errors.New("join integrity violation")

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	wordRe       = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

// Evaluate scores each run record against its gold item, joined by id.
// Output is one eval record per run record, in run order. Failed run
// records yield eval records marked failed with zero scores.
func Evaluate(runs []domain.RunRecord, gold map[string]domain.GoldItem) ([]domain.EvalRecord, error) {
	out := make([]domain.EvalRecord, 0, len(runs))
	for _, run := range runs {
		g, ok := gold[run.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no gold item for run record %q", ErrJoinIntegrity, run.ID)
		}
		rec := domain.EvalRecord{ID: run.ID, Latency: run.Latency}
		if run.Failed {
			rec.Failed = true
			rec.Error = run.Error
			out = append(out, rec)
			continue
		}
		rec.MustIncludeScore = MustIncludeScore(run.Answer, g.MustInclude)
		rec.MustNotIncludeViolations = MustNotIncludeViolations(run.Answer, g.MustNotInclude)
		rec.GroundingScore = GroundingScore(run.Answer, run.Context)
		out = append(out, rec)
	}
	return out, nil
}

// GoldByID indexes a gold set by question id.
func GoldByID(items []domain.GoldItem) map[string]domain.GoldItem {
	m := make(map[string]domain.GoldItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

// MustIncludeScore is the fraction of required phrases present in the
// answer, matched case-insensitively after whitespace normalization.
// An empty requirement set scores 1.0.
func MustIncludeScore(answerText string, mustInclude []string) float64 {
	if len(mustInclude) == 0 {
		return 1.0
	}
	a := normalize(answerText)
	hits := 0
	for _, phrase := range mustInclude {
		p := normalize(phrase)
		if p != "" && strings.Contains(a, p) {
			hits++
		}
	}
	return float64(hits) / float64(len(mustInclude))
}

// MustNotIncludeViolations counts forbidden phrases appearing in the answer.
func MustNotIncludeViolations(answerText string, mustNotInclude []string) int {
	if len(mustNotInclude) == 0 {
		return 0
	}
	a := normalize(answerText)
	violations := 0
	for _, phrase := range mustNotInclude {
		p := normalize(phrase)
		if p != "" && strings.Contains(a, p) {
			violations++
		}
	}
	return violations
}

// GroundingScore is the fraction of the answer's distinct terms that also
// occur in the retrieved context. A lexical proxy for "is the answer
// supported by retrieved evidence"; empty answer or context scores 0.0.
func GroundingScore(answerText, contextText string) float64 {
	answerText = strings.TrimSpace(answerText)
	contextText = strings.TrimSpace(contextText)
	if answerText == "" || contextText == "" {
		return 0.0
	}
	answerTerms := distinctTerms(answerText)
	if len(answerTerms) == 0 {
		return 0.0
	}
	contextTerms := distinctTerms(contextText)
	overlap := 0
	for term := range answerTerms {
		if _, ok := contextTerms[term]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(answerTerms))
}

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(s), " "))
}

func distinctTerms(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
