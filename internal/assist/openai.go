// Package assist generates customer-facing text drafts with an LLM provider.
// The feature is optional: without an API key the routes answer 503.
package assist

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer produces one completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const defaultModel = openai.ChatModelGPT4oMini

// OpenAICompleter implements Completer with the OpenAI chat API.
type OpenAICompleter struct {
	client openai.Client
	model  openai.ChatModel
}

// OpenAIOption configures the completer.
type OpenAIOption func(*OpenAICompleter)

// WithModel overrides the chat model.
func WithModel(model openai.ChatModel) OpenAIOption {
	return func(c *OpenAICompleter) { c.model = model }
}

// NewOpenAI creates an OpenAI-backed completer.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAICompleter {
	c := &OpenAICompleter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
