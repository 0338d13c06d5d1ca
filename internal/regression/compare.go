// Package regression diffs two scored evaluation runs and surfaces newly
// broken questions.
package regression

import (
	"errors"
	"sort"

	"rageval/internal/domain"
)

// ErrNoOverlap is returned when the two eval sets share no question ids.
var ErrNoOverlap = errors.New("no overlapping question ids between runs")

// Status classifies a joined question's movement between two runs.
type Status string

const (
	StatusImproved  Status = "IMPROVED"
	StatusRegressed Status = "REGRESSED"
	StatusUnchanged Status = "UNCHANGED"
)

// Metric names used as metric_deltas keys.
const (
	MetricMustInclude = "must_include_score"
	MetricGrounding   = "grounding_score"
	MetricViolations  = "must_not_include_violations"
)

// Entry is the per-question comparison result.
type Entry struct {
	ID            string             `json:"id"`
	MetricDeltas  map[string]float64 `json:"metric_deltas"`
	NewViolations int                `json:"new_violations"`
	Status        Status             `json:"status"`
}

// Report aggregates a comparison of two eval artifacts. It is recomputed
// fresh on every comparison and never persisted as mutable state.
type Report struct {
	Compared        int                `json:"compared"`
	AvgDeltas       map[string]float64 `json:"avg_deltas"`
	Entries         []Entry            `json:"entries"`
	NewViolationIDs []string           `json:"new_violation_ids"`
	Worst           []Entry            `json:"worst"`
	Added           []string           `json:"added"`
	Removed         []string           `json:"removed"`
}

// Options tunes comparison behavior.
type Options struct {
	// Tolerance is the score-delta dead zone around zero. Default 0.01.
	Tolerance float64
	// WorstN bounds the worst-regressions list. Default 5.
	WorstN int
}

// Compare joins two eval sets by question id and computes per-metric deltas
// (newer minus older). Ids present on only one side are reported as Added
// or Removed, never silently dropped.
func Compare(older, newer []domain.EvalRecord, opts Options) (*Report, error) {
	if opts.Tolerance <= 0 {
		opts.Tolerance = 0.01
	}
	if opts.WorstN <= 0 {
		opts.WorstN = 5
	}

	oldByID := recordsByID(older)
	newByID := recordsByID(newer)

	var common, added, removed []string
	for id := range newByID {
		if _, ok := oldByID[id]; ok {
			common = append(common, id)
		} else {
			added = append(added, id)
		}
	}
	for id := range oldByID {
		if _, ok := newByID[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(common)
	sort.Strings(added)
	sort.Strings(removed)
	if len(common) == 0 {
		return nil, ErrNoOverlap
	}

	report := &Report{
		Compared: len(common),
		AvgDeltas: map[string]float64{
			MetricMustInclude: 0,
			MetricGrounding:   0,
			MetricViolations:  0,
		},
		Added:   added,
		Removed: removed,
	}
	for _, id := range common {
		o, n := oldByID[id], newByID[id]
		e := Entry{
			ID: id,
			MetricDeltas: map[string]float64{
				MetricMustInclude: n.MustIncludeScore - o.MustIncludeScore,
				MetricGrounding:   n.GroundingScore - o.GroundingScore,
				MetricViolations:  float64(n.MustNotIncludeViolations - o.MustNotIncludeViolations),
			},
		}
		if d := n.MustNotIncludeViolations - o.MustNotIncludeViolations; d > 0 {
			e.NewViolations = d
		}
		e.Status = classify(e, opts.Tolerance)

		report.Entries = append(report.Entries, e)
		for m, d := range e.MetricDeltas {
			report.AvgDeltas[m] += d
		}
		if e.NewViolations > 0 {
			report.NewViolationIDs = append(report.NewViolationIDs, id)
		}
	}
	for m := range report.AvgDeltas {
		report.AvgDeltas[m] /= float64(len(common))
	}
	report.Worst = worstEntries(report.Entries, opts.WorstN)
	return report, nil
}

func classify(e Entry, tolerance float64) Status {
	dmi := e.MetricDeltas[MetricMustInclude]
	dg := e.MetricDeltas[MetricGrounding]
	if e.NewViolations > 0 || dmi < -tolerance || dg < -tolerance {
		return StatusRegressed
	}
	if dmi > tolerance || dg > tolerance || e.MetricDeltas[MetricViolations] < 0 {
		return StatusImproved
	}
	return StatusUnchanged
}

// worstEntries ranks by the most-negative single score-metric delta,
// ascending; ties break by question id for determinism.
func worstEntries(entries []Entry, n int) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.Slice(ranked, func(i, j int) bool {
		wi, wj := worstDelta(ranked[i]), worstDelta(ranked[j])
		if wi != wj {
			return wi < wj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

func worstDelta(e Entry) float64 {
	dmi := e.MetricDeltas[MetricMustInclude]
	dg := e.MetricDeltas[MetricGrounding]
	if dmi < dg {
		return dmi
	}
	return dg
}

func recordsByID(records []domain.EvalRecord) map[string]domain.EvalRecord {
	m := make(map[string]domain.EvalRecord, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return m
}
