package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/naqd/naqd/pkg/config"
)

// OpenAICompleter calls the OpenAI chat completions API. It holds the API key
// and must only run on the server.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAICompleter creates a completer from assistant settings
func NewOpenAICompleter(cfg *config.AssistantConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete implements Completer
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps provider errors onto the assistant's sentinel errors
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized, code == "invalid_api_key":
			return errors.Join(ErrInvalidKey, err)
		case code == "insufficient_quota", apiErr.Type == "insufficient_quota",
			strings.Contains(strings.ToLower(apiErr.Message), "quota"):
			return errors.Join(ErrQuotaExceeded, err)
		}
		return err
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return errors.Join(ErrInvalidKey, err)
	}
	return err
}
