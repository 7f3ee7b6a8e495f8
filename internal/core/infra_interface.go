package core

import (
	"context"

	"github.com/markdave123-py/themis/internal/models"
)

// EmbeddingStore persists chunk embeddings.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type EmbeddingStore interface {
	// StoreEmbeddings writes one row per (chunk, vector) pair in a single
	// transaction. Either every row is committed or none is.
	StoreEmbeddings(ctx context.Context, documentID string, chunks []string, vectors [][]float32) error
	GetEmbeddingsByDocument(ctx context.Context, documentID string) ([]models.Embedding, error)
}

// ObjectClient reads documents from S3 or any object storage.
type ObjectClient interface {
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
