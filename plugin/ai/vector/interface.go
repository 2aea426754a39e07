// Package vector abstracts the similarity index that holds sign and
// knowledge embeddings. Drivers exist for a Vectorize-style REST
// endpoint and for Postgres with pgvector.
package vector

import "context"

// Result is one scored match from the index. Metadata carries the
// denormalized entry fields as stored at upload time.
type Result struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Index is the query interface over one named vector index.
type Index interface {
	// Query returns up to topK nearest matches for the vector, ordered
	// by descending cosine similarity. filter restricts on metadata
	// equality and may be nil.
	Query(ctx context.Context, vec []float32, topK int, filter map[string]string) ([]Result, error)
	// GetByIDs fetches entries by identifier, skipping unknown IDs.
	GetByIDs(ctx context.Context, ids []string) ([]Result, error)
}
