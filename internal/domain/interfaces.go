package domain

import "context"

// AnswerSource produces an answer for a question given retrieved context.
// Implementations must honor ctx cancellation; callers impose a per-call
// timeout around Answer.
type AnswerSource interface {
	Name() string
	Answer(ctx context.Context, question, contextText string) (string, error)
}
