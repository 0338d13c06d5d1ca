package evaluate

import "rageval/internal/domain"

// Summary aggregates one eval artifact. Failed questions are excluded from
// the averages but surface in FailedCount so they are never invisible.
type Summary struct {
	Count           int     `json:"count"`
	FailedCount     int     `json:"failed_count"`
	AvgMustInclude  float64 `json:"avg_must_include_score"`
	AvgGrounding    float64 `json:"avg_grounding_score"`
	TotalViolations int     `json:"total_must_not_include_violations"`
}

// Summarize computes aggregate metrics over eval records.
func Summarize(records []domain.EvalRecord) Summary {
	s := Summary{Count: len(records)}
	scored := 0
	for _, r := range records {
		if r.Failed {
			s.FailedCount++
			continue
		}
		scored++
		s.AvgMustInclude += r.MustIncludeScore
		s.AvgGrounding += r.GroundingScore
		s.TotalViolations += r.MustNotIncludeViolations
	}
	if scored > 0 {
		s.AvgMustInclude /= float64(scored)
		s.AvgGrounding /= float64(scored)
	}
	return s
}
