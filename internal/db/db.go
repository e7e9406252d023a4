// Package db is the Postgres store writer: the document_chunks table,
// its vector-similarity index and the per-chunk insert path.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// ChunkRecord is one persisted chunk. Rows are append-only: multiple runs
// over the same filename coexist, nothing is updated or deleted here.
type ChunkRecord struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`

	ID            int64           `bun:"id,pk,autoincrement"`
	ChunkText     string          `bun:"chunk_text,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull"`
	Filename      string          `bun:"filename,notnull"`
	SplitStrategy string          `bun:"split_strategy,notnull"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:now()"`
}

// Connect opens a bun handle over the pgdriver connector and verifies the
// connection before returning.
func Connect(ctx context.Context, postgresURL string, debug bool) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(postgresURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Init ensures the vector extension, the chunk table sized to the
// configured embedding dimension, and the secondary indexes. Everything is
// IF NOT EXISTS so repeated runs are harmless.
func Init(ctx context.Context, db *bun.DB, dim int) error {
	for _, q := range schemaStatements(dim) {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(dim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id             BIGSERIAL PRIMARY KEY,
			chunk_text     TEXT NOT NULL,
			embedding      VECTOR(%d) NOT NULL,
			filename       VARCHAR(512) NOT NULL,
			split_strategy VARCHAR(32) NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dim),
		`CREATE INDEX IF NOT EXISTS document_chunks_filename_idx
			ON document_chunks (filename)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_split_strategy_idx
			ON document_chunks (split_strategy)`,
		`CREATE INDEX IF NOT EXISTS document_chunks_embedding_idx
			ON document_chunks USING hnsw (embedding vector_cosine_ops)`,
	}
}

// Store writes chunk records to Postgres.
type Store struct {
	db  *bun.DB
	dim int
}

func NewStore(db *bun.DB, dim int) *Store {
	return &Store{db: db, dim: dim}
}

// Write inserts one chunk record and returns its assigned id. The position
// argument is part of the writer contract but carries no column of its own;
// insertion order preserves it.
func (s *Store) Write(ctx context.Context, chunkText string, embedding []float32, filename, strategy string, position int) (string, error) {
	if len(embedding) != s.dim {
		return "", fmt.Errorf("embedding has %d values, column is vector(%d)", len(embedding), s.dim)
	}

	rec := &ChunkRecord{
		ChunkText:     chunkText,
		Embedding:     pgvector.NewVector(embedding),
		Filename:      filename,
		SplitStrategy: strategy,
	}
	if _, err := s.db.NewInsert().Model(rec).Returning("id").Exec(ctx); err != nil {
		return "", fmt.Errorf("insert chunk %d: %w", position, err)
	}
	return strconv.FormatInt(rec.ID, 10), nil
}
