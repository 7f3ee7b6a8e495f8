package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/markdave123-py/themis/internal/core"
	"github.com/markdave123-py/themis/internal/core/ingestion_engine"
)

const maxRequestBody = 1 << 20

type EmbeddingHandler struct {
	ingestor ingestion_engine.Ingestor
}

func NewEmbeddingHandler(ing ingestion_engine.Ingestor) *EmbeddingHandler {
	return &EmbeddingHandler{ingestor: ing}
}

type EmbeddingRequest struct {
	Title       string  `json:"title"`
	ContentURL  *string `json:"content_url"`
	TextContent *string `json:"text_content"`
}

type EmbeddingResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Validate enforces a title and exactly one of content_url/text_content.
func (r *EmbeddingRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	hasURL, hasText := present(r.ContentURL), present(r.TextContent)
	switch {
	case !hasURL && !hasText:
		return errors.New("either content_url or text_content must be provided")
	case hasURL && hasText:
		return errors.New("provide only one of content_url or text_content")
	}
	return nil
}

// CreateEmbeddings ingests the document behind content_url.
// text_content passes validation but is not ingested yet and is rejected.
func (h *EmbeddingHandler) CreateEmbeddings(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	var req EmbeddingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		logger.Warn().Err(err).Msg("validation error")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !present(req.ContentURL) {
		writeError(w, http.StatusBadRequest, "text_content ingestion is not supported; provide content_url")
		return
	}

	documentID, err := h.ingestor.Ingest(r.Context(), *req.ContentURL)
	if err != nil {
		if r.Context().Err() != nil {
			// the timeout middleware answers 504; a gone client gets nothing
			logger.Warn().Err(err).Str("title", req.Title).Msg("request context ended during ingestion")
			return
		}
		if errors.Is(err, core.ErrValidation) {
			logger.Warn().Err(err).Str("title", req.Title).Msg("validation error")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error().Err(err).Str("title", req.Title).Str("content_url", *req.ContentURL).
			Msg("an error occurred while creating embeddings")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, EmbeddingResponse{
		Status:     "Success",
		Message:    "Content successfully processed and embedding stored.",
		DocumentID: documentID,
	})
}
