package answer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful assistant. " +
	"Answer using ONLY the provided context. " +
	"If the context is insufficient, say you don't know."

// OpenAIConfig configures the OpenAI-compatible chat answer source.
type OpenAIConfig struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	MaxRetries int
}

// OpenAIClient answers questions through an OpenAI-compatible chat
// completion API. Transient failures (429, 5xx) are retried with a linear
// backoff; the caller's context bounds the whole call.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates an answer source backed by an OpenAI-compatible
// endpoint. The API key is read from the environment variable named in cfg.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", keyEnv)
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}, nil
}

// Name returns the identifier of this answer source implementation.
func (c *OpenAIClient) Name() string { return "openai" }

// Answer sends the question plus retrieved context to the chat API and
// returns the completion text.
func (c *OpenAIClient) Answer(ctx context.Context, question, contextText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Question:\n%s\n\nContext:\n%s", question, contextText)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("no completion returned")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
	return "", lastErr
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	return false
}
