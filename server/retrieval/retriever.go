// Package retrieval turns free text into ranked candidate entries from
// the sign and knowledge indexes, and arbitrates noisy top-K retrieval
// into a minimal ordered answer.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/cache"
	"github.com/signos-ai/signos/plugin/ai/vector"
	corerr "github.com/signos-ai/signos/internal/errors"
	"github.com/signos-ai/signos/internal/observability"
)

// Mode selects the index and filtering profile for one retrieval.
type Mode string

const (
	// ModeExactSign is a single-term sign lookup. Strict threshold:
	// a wrong sign is worse than no sign.
	ModeExactSign Mode = "sign:exact"
	// ModeSentenceSign is a full-sentence translation lookup.
	ModeSentenceSign Mode = "sign:sentence"
	// ModeKnowledge is an explanatory content lookup. No threshold:
	// the closest available answer degrades gracefully.
	ModeKnowledge Mode = "knowledge"
)

const (
	exactSignThreshold    = 0.65
	sentenceSignThreshold = 0.60
	signTopK              = 12
	knowledgeTopK         = 5
)

// Engine retrieves candidates from the vector indexes, caching the
// filtered result per normalized query.
type Engine struct {
	embedder       ai.EmbeddingService
	signIndex      vector.Index
	knowledgeIndex vector.Index
	cache          *cache.FIFOCache[[]Candidate]
	group          singleflight.Group
	logger         *slog.Logger
}

// NewEngine creates a retrieval engine. The cache is constructor
// injected so tests can substitute a fresh instance.
func NewEngine(embedder ai.EmbeddingService, signIndex, knowledgeIndex vector.Index, resultCache *cache.FIFOCache[[]Candidate], logger *slog.Logger) *Engine {
	return &Engine{
		embedder:       embedder,
		signIndex:      signIndex,
		knowledgeIndex: knowledgeIndex,
		cache:          resultCache,
		logger:         logger,
	}
}

// Retrieve returns the ranked, filtered candidate list for text under
// the given mode. Embedding and index failures are not retried; they
// surface as RETRIEVAL_UNAVAILABLE and callers treat them as "no
// candidates", not as a crash.
func (e *Engine) Retrieve(ctx context.Context, text string, mode Mode) ([]Candidate, error) {
	norm := cache.NormalizeKey(text)
	if norm == "" {
		return nil, corerr.InvalidInput("query is empty")
	}

	key := fmt.Sprintf("%s:%s", mode, norm)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	// Concurrent identical misses share one upstream round trip.
	result, err, _ := e.group.Do(key, func() (any, error) {
		return e.retrieveUncached(ctx, text, mode, key)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Candidate), nil
}

func (e *Engine) retrieveUncached(ctx context.Context, text string, mode Mode, key string) ([]Candidate, error) {
	rc := observability.NewRequestContext(e.logger, "retrieval", "")

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		if corerr.IsCode(err, corerr.ErrCodeInvalidInput) {
			return nil, err
		}
		return nil, corerr.RetrievalUnavailable("embed query", err)
	}

	index, topK, threshold := e.profileFor(mode)
	results, err := index.Query(ctx, vec, topK, nil)
	if err != nil {
		return nil, corerr.RetrievalUnavailable("query index", err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r.Score < threshold {
			continue
		}
		entry := entryFromMetadata(r.ID, r.Score, r.Metadata)
		if !entry.Valid() {
			continue
		}
		candidates = append(candidates, Candidate{Entry: entry, IndexName: string(mode)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Entry.Score > candidates[j].Entry.Score
	})

	e.cache.Set(key, candidates)
	rc.Debug("retrieval complete",
		slog.String("mode", string(mode)),
		slog.Int("candidates", len(candidates)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
	return candidates, nil
}

// GetSignByGlosa fetches one sign by its canonical key without a
// semantic query.
func (e *Engine) GetSignByGlosa(ctx context.Context, glosa string) (*Entry, error) {
	results, err := e.signIndex.GetByIDs(ctx, []string{glosa})
	if err != nil {
		return nil, corerr.RetrievalUnavailable("fetch sign by id", err)
	}
	if len(results) == 0 {
		return nil, corerr.NoResults(fmt.Sprintf("no sign entry for %q", glosa))
	}
	entry := entryFromMetadata(results[0].ID, results[0].Score, results[0].Metadata)
	return &entry, nil
}

// ClearCache drops all cached results. The cache is a pure
// optimization and may be reset at any time.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func (e *Engine) profileFor(mode Mode) (vector.Index, int, float64) {
	switch mode {
	case ModeExactSign:
		return e.signIndex, signTopK, exactSignThreshold
	case ModeSentenceSign:
		return e.signIndex, signTopK, sentenceSignThreshold
	default:
		return e.knowledgeIndex, knowledgeTopK, 0
	}
}
