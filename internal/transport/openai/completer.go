package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sedwardstx/DprgArchiveAgent/internal/domain/chat"
	"github.com/sedwardstx/DprgArchiveAgent/internal/metrics"
)

// Completer is the language-model collaborator. One call performs one
// completion attempt against one model; the chat orchestrator owns the
// primary-to-fallback retry.
type Completer struct {
	client *openai.Client
	logger *zap.Logger
}

// NewCompleter creates a chat completion client.
func NewCompleter(apiKey, baseURL string, logger *zap.Logger) *Completer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Completer{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

// Complete generates a reply for the given messages.
func (c *Completer) Complete(
	ctx context.Context, messages []chat.Turn,
	model string, temperature float64, maxTokens int,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toMessages(messages),
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("empty completion response")
	}

	metrics.CompletionRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if resp.Usage.PromptTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(model, "prompt").Add(float64(resp.Usage.PromptTokens))
	}
	if resp.Usage.CompletionTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	c.logger.Debug("chat completion",
		zap.String("model", model),
		zap.Duration("elapsed", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

func toMessages(turns []chat.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return msgs
}
