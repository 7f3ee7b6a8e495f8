package ingestion_engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/markdave123-py/themis/internal/core"
)

// NewDocumentIngestor wires the pipeline collaborators.
func NewDocumentIngestor(store core.EmbeddingStore, emb core.EmbeddingProvider, extractor core.DocumentExtractor, cfg IngestConfig) *DocumentIngestor {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &DocumentIngestor{
		store: store, embedder: emb, extractor: extractor, cfg: cfg,
		newID: uuid.NewString,
	}
}

// Ingest extracts the text behind pdfURL, chunks it, embeds every chunk in a
// single provider call and stores the batch under a new document id. Nothing
// is retried; the first failing step aborts the call.
func (i *DocumentIngestor) Ingest(ctx context.Context, pdfURL string) (string, error) {
	if strings.TrimSpace(pdfURL) == "" {
		return "", core.ValidationError("no content url provided")
	}
	started := time.Now()

	text, err := i.extractor.ExtractText(ctx, pdfURL)
	if err != nil {
		return "", core.ExtractionError("extract text", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", core.ValidationError("no text content")
	}

	chunks, err := SplitText(text, i.cfg.ChunkSize)
	if err != nil {
		return "", core.ValidationError(err.Error())
	}

	vectors, err := i.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return "", core.GenerationError("embed chunks", err)
	}
	if err := i.checkVectors(chunks, vectors); err != nil {
		return "", core.GenerationError("embed chunks", err)
	}

	documentID := i.newID()
	if err := i.store.StoreEmbeddings(ctx, documentID, chunks, vectors); err != nil {
		return "", core.StorageError("store embeddings", err)
	}

	log.Info().
		Str("document_id", documentID).
		Int("chunks", len(chunks)).
		Dur("took", time.Since(started)).
		Msg("document ingested")
	return documentID, nil
}

func (i *DocumentIngestor) checkVectors(chunks []string, vectors [][]float32) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed size mismatch: got %d want %d", len(vectors), len(chunks))
	}
	if i.cfg.EmbedDim <= 0 {
		return nil
	}
	for k, v := range vectors {
		if len(v) != i.cfg.EmbedDim {
			return fmt.Errorf("vector %d has dimension %d, want %d", k, len(v), i.cfg.EmbedDim)
		}
	}
	return nil
}
