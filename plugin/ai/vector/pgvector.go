package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	corerr "github.com/signos-ai/signos/internal/errors"
)

// PGIndex queries a pgvector-backed table. Each named index maps to one
// table with columns (id text, metadata jsonb, embedding vector).
type PGIndex struct {
	db    *sql.DB
	table string
}

// NewPGIndex creates a pgvector driver for one index table. indexName
// must be a known identifier, it is interpolated into SQL.
func NewPGIndex(db *sql.DB, indexName string) (*PGIndex, error) {
	if !validTableName(indexName) {
		return nil, errors.Errorf("invalid index name: %s", indexName)
	}
	return &PGIndex{db: db, table: indexName + "_embedding"}, nil
}

func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func (x *PGIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]string) ([]Result, error) {
	if len(vec) == 0 {
		return nil, corerr.InvalidInput("query vector is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	v := pgvector.NewVector(vec)
	query := fmt.Sprintf(`
		SELECT id, metadata, 1 - (embedding <=> $1) AS score
		FROM %s`, x.table)
	args := []any{v}

	if len(filter) > 0 {
		clauses := make([]string, 0, len(filter))
		for key, value := range filter {
			args = append(args, key, value)
			clauses = append(clauses, fmt.Sprintf("metadata->>$%d = $%d", len(args)-1, len(args)))
		}
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}

	args = append(args, v, topK)
	query += fmt.Sprintf("\n\t\tORDER BY embedding <=> $%d\n\t\tLIMIT $%d", len(args)-1, len(args))

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, corerr.RetrievalUnavailable("pgvector query failed", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func (x *PGIndex) GetByIDs(ctx context.Context, ids []string) ([]Result, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, metadata, 1.0 AS score
		FROM %s
		WHERE id = ANY($1)`, x.table)

	rows, err := x.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, corerr.RetrievalUnavailable("pgvector fetch failed", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var (
			id       string
			rawMeta  []byte
			score    float64
			metadata map[string]any
		)
		if err := rows.Scan(&id, &rawMeta, &score); err != nil {
			return nil, corerr.RetrievalUnavailable("scan index row", err)
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &metadata); err != nil {
				return nil, corerr.RetrievalUnavailable("decode row metadata", err)
			}
		}
		results = append(results, Result{ID: id, Score: score, Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		return nil, corerr.RetrievalUnavailable("iterate index rows", err)
	}
	return results, nil
}
