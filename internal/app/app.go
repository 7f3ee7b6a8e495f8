package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/markdave123-py/themis/internal/config"
	"github.com/markdave123-py/themis/internal/core"
	db "github.com/markdave123-py/themis/internal/core/database"
	"github.com/markdave123-py/themis/internal/core/ingestion_engine"
	"github.com/markdave123-py/themis/internal/core/llm"
	objectclient "github.com/markdave123-py/themis/internal/core/object-client"
)

type App struct {
	DBClient *db.DatabaseClient
	Embedder core.EmbeddingProvider
	Ingestor *ingestion_engine.DocumentIngestor
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("database initialized and ready")

	a := &App{DBClient: dbClient}
	fail := func(err error) (*App, error) {
		a.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		m, err := db.NewMigrator(dbClient.DB(), "")
		if err != nil {
			return fail(err)
		}
		if err := m.Run(appCtx, db.Up); err != nil {
			return fail(fmt.Errorf("auto migrate: %w", err))
		}
	}

	var objClient core.ObjectClient
	if cfg.S3Enabled() {
		s3Client, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			return fail(err)
		}
		objClient = s3Client
	}

	embedder, err := llm.NewEmbedder(appCtx, cfg)
	if err != nil {
		return fail(fmt.Errorf("couldn't initialize the embedder, %w", err))
	}
	a.Embedder = embedder

	extractor := ingestion_engine.NewURLExtractor(objClient, cfg.FetchTimeout, cfg.MaxDocumentBytes)

	a.Ingestor = ingestion_engine.NewDocumentIngestor(dbClient, embedder, extractor, ingestion_engine.IngestConfig{
		ChunkSize: cfg.ChunkSize,
		EmbedDim:  cfg.EmbedDim,
	})
	a.Server = NewServer(cfg, a.Ingestor)

	return a, nil
}

// Close releases the embedder and the database pool.
func (a *App) Close() {
	if c, ok := a.Embedder.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close embedder")
		}
	}
	if a.DBClient != nil {
		if err := a.DBClient.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}
