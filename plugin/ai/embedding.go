package ai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	corerr "github.com/signos-ai/signos/internal/errors"
)

// EmbeddingService converts text into dense vectors for similarity search.
type EmbeddingService interface {
	// Embed converts one text into a vector. Empty (after trimming)
	// input is rejected with INVALID_INPUT.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch converts multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector dimensionality of the model.
	Dimensions() int
}

// NewEmbeddingService creates an embedding service for the configured provider.
func NewEmbeddingService(config EmbeddingConfig) EmbeddingService {
	if config.Provider == "workersai" {
		return NewWorkersAIEmbedder(config)
	}
	return newOpenAIEmbedder(config)
}

type openAIEmbedder struct {
	client *openai.Client
	config EmbeddingConfig
}

func newOpenAIEmbedder(config EmbeddingConfig) *openAIEmbedder {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &openAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, corerr.InvalidInput("cannot embed empty text")
	}
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *openAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, corerr.InvalidInput("cannot embed empty batch")
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, corerr.InvalidInput("cannot embed empty text")
		}
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.config.Model),
	})
	if err != nil {
		return nil, corerr.RetrievalUnavailable("embedding request failed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, corerr.UnexpectedResponseShape("embedding count does not match input count")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (e *openAIEmbedder) Dimensions() int {
	switch e.config.Model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}
