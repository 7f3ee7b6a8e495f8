package ingestion_engine

import (
	"github.com/markdave123-py/themis/internal/core"
)

// IngestConfig tunes the pipeline.
//
// ChunkSize: characters per chunk (DefaultChunkSize when zero).
// EmbedDim:  expected vector dimension; 0 skips the check.
type IngestConfig struct {
	ChunkSize int
	EmbedDim  int
}

// DocumentIngestor runs extract -> chunk -> embed -> store for one document
// per call:
//
// store:     persistence for chunk embeddings.
// embedder:  embedding provider (HuggingFace/Gemini/OpenAI).
// extractor: resolves a URL to plain text.
// cfg:       runtime tuning knobs for the pipeline.
type DocumentIngestor struct {
	store     core.EmbeddingStore
	embedder  core.EmbeddingProvider
	extractor core.DocumentExtractor
	cfg       IngestConfig
	newID     func() string
}
