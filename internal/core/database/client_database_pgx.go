package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"github.com/markdave123-py/themis/internal/config"
	"github.com/markdave123-py/themis/internal/core"
	"github.com/markdave123-py/themis/internal/models"
)

const insertEmbeddingQuery = `
	INSERT INTO embeddings (document_id, chunk, embedding)
	VALUES ($1, $2, $3)
`

const selectEmbeddingsQuery = `
	SELECT id, document_id, chunk, embedding
	FROM embeddings
	WHERE document_id = $1
	ORDER BY id ASC
`

// DatabaseClient owns the connection pool. It is created once at startup,
// shared by reference and closed at shutdown.
type DatabaseClient struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

var (
	_ DbClient            = (*DatabaseClient)(nil)
	_ core.EmbeddingStore = (*DatabaseClient)(nil)
)

// NewDatabaseClient opens a pgx pool bounded by cfg.DBMinConns and
// cfg.DBMaxConns and exposes it through database/sql.
func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	poolCfg.MinConns = int32(cfg.DBMinConns)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// OpenDBFromPool disables idle conns in database/sql; the pgx pool keeps them.
	db := stdlib.OpenDBFromPool(pool)
	db.SetMaxOpenConns(cfg.DBMaxConns)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Info().
		Int("min_conns", cfg.DBMinConns).
		Int("max_conns", cfg.DBMaxConns).
		Msg("database connection pool created")

	return &DatabaseClient{db: db, pool: pool}, nil
}

func newDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// DB exposes the underlying handle for the migrator.
func (c *DatabaseClient) DB() *sql.DB {
	return c.db
}

func (c *DatabaseClient) Close() error {
	var err error
	if c.db != nil {
		err = c.db.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	return err
}

// PoolStats returns acquisition statistics of the pgx pool, or nil when the
// client was not built on one.
func (c *DatabaseClient) PoolStats() *pgxpool.Stat {
	if c.pool == nil {
		return nil
	}
	return c.pool.Stat()
}

// StoreEmbeddings checks out a single connection for the whole batch and
// inserts the rows in input order inside one transaction. Any failed insert
// rolls the batch back. The connection goes back to the pool on every path.
func (c *DatabaseClient) StoreEmbeddings(ctx context.Context, documentID string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEmbeddingQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, chunks[i], pgvector.NewVector(vectors[i])); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("document_id", documentID).Msg("rollback failed")
			}
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c *DatabaseClient) GetEmbeddingsByDocument(ctx context.Context, documentID string) ([]models.Embedding, error) {
	rows, err := c.db.QueryContext(ctx, selectEmbeddingsQuery, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Embedding
	for rows.Next() {
		var (
			e   models.Embedding
			vec pgvector.Vector
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Chunk, &vec); err != nil {
			return nil, err
		}
		e.Embedding = vec.Slice()
		out = append(out, e)
	}
	return out, rows.Err()
}
