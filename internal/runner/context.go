package runner

import (
	"fmt"
	"strings"

	"rageval/internal/domain"
)

const contextDelimiter = "\n\n"

// BuildContext concatenates the retrieved documents, in rank order, into a
// single prompt context. Each document becomes one attributable block; when
// maxChars would be exceeded, whole documents are dropped from the tail,
// never cut mid-document. maxChars <= 0 means no limit.
func BuildContext(docs []domain.Document, maxChars int) string {
	var b strings.Builder
	for i, d := range docs {
		block := fmt.Sprintf("[Doc %d] %s — %s\n%s", i+1, d.DocID, d.Title, d.Text)
		add := len(block)
		if b.Len() > 0 {
			add += len(contextDelimiter)
		}
		if maxChars > 0 && b.Len()+add > maxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString(contextDelimiter)
		}
		b.WriteString(block)
	}
	return b.String()
}
