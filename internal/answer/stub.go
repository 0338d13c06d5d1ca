// Package answer provides the pluggable answer sources used by the run
// assembler: a deterministic offline stub and an OpenAI-compatible client.
package answer

import "context"

// Stub is an offline answer source so the pipeline runs without API keys.
type Stub struct{}

// NewStub creates a deterministic stub answer source.
func NewStub() *Stub { return &Stub{} }

// Name returns the identifier of this answer source implementation.
func (s *Stub) Name() string { return "stub" }

// Answer returns a fixed placeholder answer. Useful to validate the
// end-to-end flow before wiring a real model.
func (s *Stub) Answer(ctx context.Context, question, contextText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "MOCK ANSWER: I will answer using the provided context only.\n\n" +
		"Summary: Based on the retrieved context, the most likely causes and mitigations are described above.", nil
}
