package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	corerr "github.com/signos-ai/signos/internal/errors"
)

const workersAIEmbeddingDim = 768

// WorkersAIEmbedder calls a Workers AI style REST endpoint for embeddings.
// The upstream service is loose about its response envelope, so the
// embedder normalizes the known payload shapes instead of trusting one.
type WorkersAIEmbedder struct {
	config     EmbeddingConfig
	httpClient *http.Client
}

// NewWorkersAIEmbedder creates a REST embedder for bge-style models.
func NewWorkersAIEmbedder(config EmbeddingConfig) *WorkersAIEmbedder {
	return &WorkersAIEmbedder{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type workersAIRequest struct {
	Text []string `json:"text"`
}

type workersAIEnvelope struct {
	Result  json.RawMessage `json:"result"`
	Success bool            `json:"success"`
}

func (e *WorkersAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, corerr.InvalidInput("cannot embed empty text")
	}
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *WorkersAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, corerr.InvalidInput("cannot embed empty batch")
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, corerr.InvalidInput("cannot embed empty text")
		}
	}

	payload, err := json.Marshal(workersAIRequest{Text: texts})
	if err != nil {
		return nil, corerr.RetrievalUnavailable("marshal embedding request", err)
	}

	url := fmt.Sprintf("%s/ai/run/%s", strings.TrimRight(e.config.BaseURL, "/"), e.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, corerr.RetrievalUnavailable("build embedding request", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, corerr.RetrievalUnavailable("embedding request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, corerr.RetrievalUnavailable("read embedding response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, corerr.RetrievalUnavailable(
			fmt.Sprintf("embedding endpoint returned status %d", resp.StatusCode), nil)
	}

	vectors, err := normalizeEmbeddingPayload(body)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, corerr.UnexpectedResponseShape("embedding count does not match input count")
	}
	return vectors, nil
}

func (e *WorkersAIEmbedder) Dimensions() int {
	return workersAIEmbeddingDim
}

// normalizeEmbeddingPayload accepts the payload shapes the endpoint has been
// observed to return:
//
//	{"result": {"data": [[...]]}, "success": true}   the documented envelope
//	{"data": [[...]]}                                 bare data object
//	[[...]]                                           bare array of vectors
//	[...]                                             bare flat vector
func normalizeEmbeddingPayload(body []byte) ([][]float32, error) {
	var envelope workersAIEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Result) > 0 {
		return normalizeEmbeddingPayload(envelope.Result)
	}

	var dataObj struct {
		Data [][]float32 `json:"data"`
	}
	if err := json.Unmarshal(body, &dataObj); err == nil && len(dataObj.Data) > 0 {
		return dataObj.Data, nil
	}

	var bare [][]float32
	if err := json.Unmarshal(body, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	// Single-text requests have been seen to come back as one flat
	// vector.
	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return [][]float32{flat}, nil
	}

	return nil, corerr.UnexpectedResponseShape("embedding payload matched no known shape")
}
