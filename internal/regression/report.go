package regression

import (
	"fmt"
	"strings"
)

// RenderMarkdown produces the human-readable rendering of a report.
// oldRef and newRef identify the compared artifacts (typically file paths).
func RenderMarkdown(r *Report, oldRef, newRef string) string {
	var b strings.Builder
	b.WriteString("# RAG Evaluation Regression Report\n\n")
	fmt.Fprintf(&b, "**Old run:** `%s`  \n", oldRef)
	fmt.Fprintf(&b, "**New run:** `%s`\n\n", newRef)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Questions compared: %d\n", r.Compared)
	fmt.Fprintf(&b, "- Avg must_include delta: %+.3f\n", r.AvgDeltas[MetricMustInclude])
	fmt.Fprintf(&b, "- Avg grounding delta: %+.3f\n", r.AvgDeltas[MetricGrounding])
	fmt.Fprintf(&b, "- Avg violations delta: %+.3f\n", r.AvgDeltas[MetricViolations])
	fmt.Fprintf(&b, "- Questions with new violations: %d\n", len(r.NewViolationIDs))
	if len(r.Added) > 0 {
		fmt.Fprintf(&b, "- Added questions: %s\n", strings.Join(r.Added, ", "))
	}
	if len(r.Removed) > 0 {
		fmt.Fprintf(&b, "- Removed questions: %s\n", strings.Join(r.Removed, ", "))
	}
	b.WriteString("\n")

	if len(r.NewViolationIDs) > 0 {
		b.WriteString("## New Violations\n")
		for _, id := range r.NewViolationIDs {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Worst Regressions\n")
	for _, e := range r.Worst {
		fmt.Fprintf(&b, "- **%s** (%s): must_include %+.3f, grounding %+.3f, violations %+d\n",
			e.ID, e.Status,
			e.MetricDeltas[MetricMustInclude],
			e.MetricDeltas[MetricGrounding],
			int(e.MetricDeltas[MetricViolations]))
	}
	return b.String()
}
