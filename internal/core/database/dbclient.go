package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markdave123-py/themis/internal/models"
)

// DbClient defines the persistence operations the service needs.
type DbClient interface {
	StoreEmbeddings(ctx context.Context, documentID string, chunks []string, vectors [][]float32) error
	GetEmbeddingsByDocument(ctx context.Context, documentID string) ([]models.Embedding, error)

	PoolStats() *pgxpool.Stat
	Close() error
}
