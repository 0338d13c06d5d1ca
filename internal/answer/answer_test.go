package answer

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubIsDeterministic(t *testing.T) {
	s := NewStub()
	first, err := s.Answer(context.Background(), "why quota", "ctx")
	require.NoError(t, err)
	second, err := s.Answer(context.Background(), "another question", "other ctx")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStubHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStub().Answer(ctx, "q", "c")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Setenv("RAGEVAL_TEST_MISSING_KEY", "")
	_, err := NewOpenAIClient(OpenAIConfig{APIKeyEnv: "RAGEVAL_TEST_MISSING_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAGEVAL_TEST_MISSING_KEY")
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(&openai.APIError{HTTPStatusCode: 429}))
	assert.True(t, retryable(&openai.APIError{HTTPStatusCode: 503}))
	assert.False(t, retryable(&openai.APIError{HTTPStatusCode: 400}))
	assert.False(t, retryable(errors.New("plain error")))
}
