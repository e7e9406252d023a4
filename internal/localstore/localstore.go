// Package localstore is the embedded alternative to the Postgres writer:
// chunk records go into a persistent chromem-go collection on disk. Like
// the Postgres path it only ever writes; retrieval belongs to downstream
// consumers.
package localstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

type Store struct {
	collection *chromem.Collection
}

func Open(path, collectionName string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collectionName, err)
	}
	return &Store{collection: c}, nil
}

// Write appends one chunk document with its precomputed embedding. The
// record carries the same metadata as a Postgres row; created_at is
// assigned here since chromem has no column defaults.
func (s *Store) Write(ctx context.Context, chunkText string, embedding []float32, filename, strategy string, position int) (string, error) {
	id := fmt.Sprintf("%s-%s-%d-%s", filename, strategy, position, uuid.NewString())
	doc := chromem.Document{
		ID:        id,
		Content:   chunkText,
		Embedding: embedding,
		Metadata: map[string]string{
			"filename":       filename,
			"split_strategy": strategy,
			"position":       strconv.Itoa(position),
			"created_at":     time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return "", fmt.Errorf("add chunk %d: %w", position, err)
	}
	return id, nil
}
