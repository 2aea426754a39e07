package ai

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	corerr "github.com/signos-ai/signos/internal/errors"
)

// MockLLM replays scripted responses in order. Once the script is
// exhausted it repeats the last response.
type MockLLM struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     [][]Message
	index     int
}

func (m *MockLLM) Chat(_ context.Context, messages []Message, _ ...ChatOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", corerr.LLMUnavailable("mock has no scripted responses", nil)
	}
	resp := m.Responses[m.index]
	if m.index < len(m.Responses)-1 {
		m.index++
	}
	return resp, nil
}

// MockEmbedder produces deterministic pseudo-vectors from input text so
// tests get stable similarity behavior without a network call.
type MockEmbedder struct {
	Dim int
	Err error
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, corerr.InvalidInput("cannot embed empty text")
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vectorFor(text), nil
}

func (m *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, corerr.InvalidInput("cannot embed empty batch")
	}
	if m.Err != nil {
		return nil, m.Err
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, corerr.InvalidInput("cannot embed empty text")
		}
		vectors[i] = m.vectorFor(t)
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimensions() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return workersAIEmbeddingDim
}

func (m *MockEmbedder) vectorFor(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(text))))
	seed := h.Sum64()

	vec := make([]float32, m.Dimensions())
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>33)) / float32(1<<31)
	}
	return vec
}
