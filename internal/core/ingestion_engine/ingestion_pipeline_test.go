package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/themis/internal/core"
	"github.com/markdave123-py/themis/internal/models"
)

// testExtractor implements core.DocumentExtractor for testing
type testExtractor struct {
	texts map[string]string
	err   error
	calls int
	mu    sync.Mutex
}

func (e *testExtractor) ExtractText(ctx context.Context, sourceURL string) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	return e.texts[sourceURL], nil
}

// testEmbedder returns a vector derived from each text so pairings can be checked.
type testEmbedder struct {
	dim   int
	err   error
	drop  bool
	calls int
	mu    sync.Mutex
}

func vectorFor(text string, dim int) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := float32(h.Sum32() % 10000)
	v := make([]float32, dim)
	for i := range v {
		v[i] = seed + float32(i)
	}
	return v
}

func (e *testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorFor(t, e.dim)
	}
	if e.drop && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

type storedRow struct {
	chunk  string
	vector []float32
}

// testStore keeps rows per document in memory.
type testStore struct {
	mu    sync.Mutex
	rows  map[string][]storedRow
	err   error
	calls int
}

func newTestStore() *testStore {
	return &testStore{rows: map[string][]storedRow{}}
}

func (s *testStore) StoreEmbeddings(ctx context.Context, documentID string, chunks []string, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	for i := range chunks {
		s.rows[documentID] = append(s.rows[documentID], storedRow{chunk: chunks[i], vector: vectors[i]})
	}
	return nil
}

func (s *testStore) GetEmbeddingsByDocument(ctx context.Context, documentID string) ([]models.Embedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Embedding
	for _, r := range s.rows[documentID] {
		out = append(out, models.Embedding{DocumentID: documentID, Chunk: r.chunk, Embedding: r.vector})
	}
	return out, nil
}

const docURL = "https://example.com/doc.pdf"

func TestIngestStoresChunksUnderNewDocumentID(t *testing.T) {
	text := strings.Repeat("a", 1000) + strings.Repeat("b", 1000) + "tail"
	extractor := &testExtractor{texts: map[string]string{docURL: text}}
	embedder := &testEmbedder{dim: 4}
	store := newTestStore()
	ing := NewDocumentIngestor(store, embedder, extractor, IngestConfig{EmbedDim: 4})

	id, err := ing.Ingest(context.Background(), docURL)
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "document id should be a uuid")
	assert.Equal(t, 1, embedder.calls, "all chunks go to the embedder in one call")

	rows, err := store.GetEmbeddingsByDocument(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, strings.Repeat("a", 1000), rows[0].Chunk)
	assert.Equal(t, strings.Repeat("b", 1000), rows[1].Chunk)
	assert.Equal(t, "tail", rows[2].Chunk)
	for _, r := range rows {
		assert.Equal(t, vectorFor(r.Chunk, 4), r.Embedding)
	}
}

func TestIngestGeneratesFreshIDs(t *testing.T) {
	extractor := &testExtractor{texts: map[string]string{docURL: "same text"}}
	ing := NewDocumentIngestor(newTestStore(), &testEmbedder{dim: 2}, extractor, IngestConfig{})

	first, err := ing.Ingest(context.Background(), docURL)
	require.NoError(t, err)
	second, err := ing.Ingest(context.Background(), docURL)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestIngestRequiresURLBeforeCallingCollaborators(t *testing.T) {
	extractor := &testExtractor{}
	embedder := &testEmbedder{dim: 2}
	store := newTestStore()
	ing := NewDocumentIngestor(store, embedder, extractor, IngestConfig{})

	for _, in := range []string{"", "   "} {
		_, err := ing.Ingest(context.Background(), in)
		assert.ErrorIs(t, err, core.ErrValidation)
	}
	assert.Zero(t, extractor.calls)
	assert.Zero(t, embedder.calls)
	assert.Zero(t, store.calls)
}

func TestIngestEmptyTextIsValidationError(t *testing.T) {
	for _, text := range []string{"", " \n\t "} {
		extractor := &testExtractor{texts: map[string]string{docURL: text}}
		embedder := &testEmbedder{dim: 2}
		store := newTestStore()
		ing := NewDocumentIngestor(store, embedder, extractor, IngestConfig{})

		_, err := ing.Ingest(context.Background(), docURL)
		require.ErrorIs(t, err, core.ErrValidation)
		assert.Equal(t, "no text content", err.Error())
		assert.Zero(t, embedder.calls)
		assert.Zero(t, store.calls)
	}
}

func TestIngestErrorKinds(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		extractor *testExtractor
		embedder  *testEmbedder
		store     *testStore
		cfg       IngestConfig
		kind      error
	}{
		{
			name:      "extraction failure",
			extractor: &testExtractor{err: boom},
			embedder:  &testEmbedder{dim: 2},
			store:     newTestStore(),
			kind:      core.ErrExtraction,
		},
		{
			name:      "generation failure",
			extractor: &testExtractor{texts: map[string]string{docURL: "text"}},
			embedder:  &testEmbedder{dim: 2, err: boom},
			store:     newTestStore(),
			kind:      core.ErrGeneration,
		},
		{
			name:      "vector count mismatch",
			extractor: &testExtractor{texts: map[string]string{docURL: "text"}},
			embedder:  &testEmbedder{dim: 2, drop: true},
			store:     newTestStore(),
			kind:      core.ErrGeneration,
		},
		{
			name:      "wrong dimension",
			extractor: &testExtractor{texts: map[string]string{docURL: "text"}},
			embedder:  &testEmbedder{dim: 3},
			store:     newTestStore(),
			cfg:       IngestConfig{EmbedDim: 384},
			kind:      core.ErrGeneration,
		},
		{
			name:      "storage failure",
			extractor: &testExtractor{texts: map[string]string{docURL: "text"}},
			embedder:  &testEmbedder{dim: 2},
			store:     &testStore{rows: map[string][]storedRow{}, err: boom},
			kind:      core.ErrStorage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := NewDocumentIngestor(tt.store, tt.embedder, tt.extractor, tt.cfg)

			id, err := ing.Ingest(context.Background(), docURL)
			require.Error(t, err)
			assert.Empty(t, id)
			assert.ErrorIs(t, err, tt.kind)
			assert.NotErrorIs(t, err, core.ErrValidation)

			tt.store.mu.Lock()
			defer tt.store.mu.Unlock()
			assert.Empty(t, tt.store.rows)
		})
	}
}

func TestIngestConcurrentDocumentsKeepTheirPairs(t *testing.T) {
	const docs = 40

	texts := make(map[string]string, docs)
	for d := 0; d < docs; d++ {
		texts[fmt.Sprintf("https://example.com/%d.pdf", d)] = strings.Repeat(fmt.Sprintf("doc%02d|", d), 50+d)
	}
	store := newTestStore()
	ing := NewDocumentIngestor(store, &testEmbedder{dim: 3}, &testExtractor{texts: texts}, IngestConfig{ChunkSize: 16, EmbedDim: 3})

	ids := make(map[string]string, docs)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for u := range texts {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			id, err := ing.Ingest(context.Background(), u)
			assert.NoError(t, err)
			mu.Lock()
			ids[u] = id
			mu.Unlock()
		}(u)
	}
	wg.Wait()

	require.Len(t, ids, docs)
	for u, id := range ids {
		rows, err := store.GetEmbeddingsByDocument(context.Background(), id)
		require.NoError(t, err)

		var rebuilt strings.Builder
		for _, r := range rows {
			rebuilt.WriteString(r.Chunk)
			assert.Equal(t, vectorFor(r.Chunk, 3), r.Embedding)
		}
		assert.Equal(t, texts[u], rebuilt.String())
	}
}
