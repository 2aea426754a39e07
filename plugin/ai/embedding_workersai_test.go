package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corerr "github.com/signos-ai/signos/internal/errors"
)

func TestNormalizeEmbeddingPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "documented envelope",
			body: `{"result": {"data": [[0.1, 0.2]]}, "success": true}`,
		},
		{
			name: "bare data object",
			body: `{"data": [[0.1, 0.2]]}`,
		},
		{
			name: "bare array of vectors",
			body: `[[0.1, 0.2]]`,
		},
		{
			name: "bare flat vector",
			body: `[0.1, 0.2]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vectors, err := normalizeEmbeddingPayload([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, vectors, 1)
			assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
		})
	}
}

func TestNormalizeEmbeddingPayloadUnknownShape(t *testing.T) {
	for _, body := range []string{
		`{"embeddings": "not here"}`,
		`"just a string"`,
		`42`,
		``,
	} {
		_, err := normalizeEmbeddingPayload([]byte(body))
		require.Error(t, err, "body %q", body)
		assert.True(t, corerr.IsCode(err, corerr.ErrCodeUnexpectedResponseShape))
	}
}

func TestWorkersAIEmbedderEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/run/@cf/baai/bge-base-en-v1.5", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req workersAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hola"}, req.Text)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"data": [][]float32{{0.5, 0.25}}},
		})
	}))
	defer server.Close()

	embedder := NewWorkersAIEmbedder(EmbeddingConfig{
		Provider: "workersai",
		Model:    "@cf/baai/bge-base-en-v1.5",
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})

	vec, err := embedder.Embed(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestWorkersAIEmbedderRejectsEmptyInput(t *testing.T) {
	embedder := NewWorkersAIEmbedder(EmbeddingConfig{BaseURL: "http://unused"})

	_, err := embedder.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeInvalidInput))
}

func TestWorkersAIEmbedderUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder := NewWorkersAIEmbedder(EmbeddingConfig{BaseURL: server.URL, Model: "m"})

	_, err := embedder.Embed(context.Background(), "hola")
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeRetrievalUnavailable))
}
