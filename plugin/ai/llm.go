package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	corerr "github.com/signos-ai/signos/internal/errors"
)

// Message represents a chat message exchanged with the generative model.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ChatOption tweaks a single chat call.
type ChatOption func(*chatOptions)

type chatOptions struct {
	temperature *float32
	maxTokens   *int
}

// WithTemperature overrides the configured temperature for one call.
func WithTemperature(t float32) ChatOption {
	return func(o *chatOptions) {
		o.temperature = &t
	}
}

// WithMaxTokens overrides the configured token limit for one call.
func WithMaxTokens(n int) ChatOption {
	return func(o *chatOptions) {
		o.maxTokens = &n
	}
}

// LLMService is the interface for chat completion.
type LLMService interface {
	// Chat sends messages and returns the assistant reply.
	Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error)
}

type openAILLM struct {
	client *openai.Client
	config LLMConfig
}

// NewLLMService creates an LLM service against an OpenAI-compatible endpoint.
func NewLLMService(config LLMConfig) LLMService {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &openAILLM{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (s *openAILLM) Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error) {
	options := chatOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	temperature := s.config.Temperature
	if options.temperature != nil {
		temperature = *options.temperature
	}
	maxTokens := s.config.MaxTokens
	if options.maxTokens != nil {
		maxTokens = *options.maxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    convertMessages(messages),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", corerr.LLMUnavailable("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", corerr.LLMUnavailable("chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return result
}
