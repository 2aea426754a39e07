package retrieval

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/cache"
	"github.com/signos-ai/signos/plugin/ai/vector"
	corerr "github.com/signos-ai/signos/internal/errors"
)

func signResult(id, glosa string, score float64, images string) vector.Result {
	return vector.Result{
		ID:    id,
		Score: score,
		Metadata: map[string]any{
			"glosa":        glosa,
			"definition":   "definición de " + glosa,
			"translations": "hola, saludo",
			"images":       images,
		},
	}
}

func newTestEngine(signIdx, knowledgeIdx vector.Index) *Engine {
	return NewEngine(
		&ai.MockEmbedder{},
		signIdx,
		knowledgeIdx,
		cache.New[[]Candidate](50),
		slog.Default(),
	)
}

func TestRetrieveFiltersAndSorts(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		signResult("s1", "NECESITAR", 0.88, `["necesitar_1.png"]`),
		signResult("s2", "AGUA", 0.95, `["agua_1.png","agua_2.png"]`),
		signResult("s3", "FAVOR", 0.40, `["favor_1.png"]`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	candidates, err := engine.Retrieve(context.Background(), "necesito agua por favor", ModeSentenceSign)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "FAVOR is below the sentence threshold")
	assert.Equal(t, "AGUA", candidates[0].Entry.Glosa, "highest score first")
	assert.Equal(t, "NECESITAR", candidates[1].Entry.Glosa)
	assert.Len(t, candidates[0].Entry.Media, 2)
	assert.Equal(t, "agua_1.png", candidates[0].Entry.Media[0].Path)
	assert.Equal(t, []string{"hola", "saludo"}, candidates[0].Entry.Translations)
}

func TestRetrieveExactThresholdStricterThanSentence(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		signResult("s1", "CASI", 0.62, `["casi_1.png"]`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	sentence, err := engine.Retrieve(context.Background(), "casi", ModeSentenceSign)
	require.NoError(t, err)
	assert.Len(t, sentence, 1)

	exact, err := engine.Retrieve(context.Background(), "casi", ModeExactSign)
	require.NoError(t, err)
	assert.Empty(t, exact, "0.62 passes the sentence threshold but not the exact one")
}

func TestRetrieveKnowledgeHasNoThreshold(t *testing.T) {
	knowledgeIdx := &vector.MockIndex{Results: []vector.Result{
		{ID: "k1", Score: 0.31, Metadata: map[string]any{
			"title": "Cultura sorda", "text": "La comunidad sorda...",
		}},
	}}
	engine := newTestEngine(&vector.MockIndex{}, knowledgeIdx)

	candidates, err := engine.Retrieve(context.Background(), "qué es la cultura sorda", ModeKnowledge)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "low-score knowledge answers still surface")
	assert.Equal(t, "Cultura sorda", candidates[0].Entry.Glosa)
}

func TestRetrieveIdempotentAcrossCache(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		signResult("s1", "HOLA", 0.92, `["hola_1.png"]`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	first, err := engine.Retrieve(context.Background(), "hola", ModeExactSign)
	require.NoError(t, err)
	second, err := engine.Retrieve(context.Background(), "  HOLA ", ModeExactSign)
	require.NoError(t, err)

	assert.Equal(t, first, second, "cache hit path matches the miss path")
	assert.Equal(t, 1, signIdx.Queries, "second call is served from cache")
}

func TestRetrieveDegradesBadMediaToEmptyList(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		signResult("s1", "HOLA", 0.92, `{not valid json`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	candidates, err := engine.Retrieve(context.Background(), "hola", ModeExactSign)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "entry survives because it still has a definition")
	assert.Empty(t, candidates[0].Entry.Media)
}

func TestRetrieveDropsEntriesWithoutDefinitionOrMedia(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		{ID: "s1", Score: 0.9, Metadata: map[string]any{"glosa": "VACIO"}},
		signResult("s2", "HOLA", 0.85, `["hola_1.png"]`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	candidates, err := engine.Retrieve(context.Background(), "hola", ModeExactSign)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "HOLA", candidates[0].Entry.Glosa)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	engine := newTestEngine(&vector.MockIndex{}, &vector.MockIndex{})

	_, err := engine.Retrieve(context.Background(), "   ", ModeExactSign)
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeInvalidInput))
}

func TestRetrieveIndexFailure(t *testing.T) {
	signIdx := &vector.MockIndex{Err: corerr.RetrievalUnavailable("index down", nil)}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	_, err := engine.Retrieve(context.Background(), "hola", ModeExactSign)
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeRetrievalUnavailable))
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	engine := NewEngine(
		&ai.MockEmbedder{Err: corerr.RetrievalUnavailable("embedder down", nil)},
		&vector.MockIndex{},
		&vector.MockIndex{},
		cache.New[[]Candidate](50),
		slog.Default(),
	)

	_, err := engine.Retrieve(context.Background(), "hola", ModeExactSign)
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeRetrievalUnavailable))
}

func TestGetSignByGlosa(t *testing.T) {
	signIdx := &vector.MockIndex{Results: []vector.Result{
		signResult("HOLA", "HOLA", 1.0, `["hola_1.png"]`),
	}}
	engine := newTestEngine(signIdx, &vector.MockIndex{})

	entry, err := engine.GetSignByGlosa(context.Background(), "HOLA")
	require.NoError(t, err)
	assert.Equal(t, "HOLA", entry.Glosa)

	_, err = engine.GetSignByGlosa(context.Background(), "MISSING")
	require.Error(t, err)
	assert.True(t, corerr.IsCode(err, corerr.ErrCodeNoResults))
}

func TestEntryVariantNumericOrString(t *testing.T) {
	// JSON-decoded metadata carries numbers as float64; older uploads
	// stored variant as a string.
	tests := []struct {
		name     string
		value    any
		expected int
	}{
		{name: "float64 from JSON", value: float64(2), expected: 2},
		{name: "string", value: "3", expected: 3},
		{name: "missing", value: nil, expected: 0},
		{name: "garbage string", value: "dos", expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := map[string]any{
				"glosa":      "HOLA",
				"definition": "saludo",
			}
			if tt.value != nil {
				metadata["variant"] = tt.value
			}
			entry := entryFromMetadata("s1", 0.9, metadata)
			assert.Equal(t, tt.expected, entry.Variant)
		})
	}
}

func TestParseMediaListShapes(t *testing.T) {
	t.Run("object list", func(t *testing.T) {
		media := parseMediaList(`[{"path":"a.png","sequence":2},{"path":"b.png","sequence":1}]`)
		require.Len(t, media, 2)
		assert.Equal(t, 2, media[0].Sequence)
	})
	t.Run("string list", func(t *testing.T) {
		media := parseMediaList(`["a.png","b.png"]`)
		require.Len(t, media, 2)
		assert.Equal(t, MediaRef{Path: "a.png", Sequence: 0}, media[0])
		assert.Equal(t, MediaRef{Path: "b.png", Sequence: 1}, media[1])
	})
	t.Run("empty and malformed", func(t *testing.T) {
		assert.Nil(t, parseMediaList(""))
		assert.Nil(t, parseMediaList("not json"))
	})
}
