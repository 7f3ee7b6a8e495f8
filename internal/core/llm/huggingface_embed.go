package llm

import (
	"context"
	"fmt"

	hfembed "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"

	"github.com/markdave123-py/themis/internal/core"
)

const defaultHuggingFaceModel = "sentence-transformers/all-MiniLM-L6-v2"

// HuggingFaceEmbedder calls the HuggingFace inference API through langchaingo.
type HuggingFaceEmbedder struct {
	embedder  *hfembed.Huggingface
	modelName string
}

var _ core.EmbeddingProvider = (*HuggingFaceEmbedder)(nil)

func NewHuggingFaceEmbedder(token, modelName string) (*HuggingFaceEmbedder, error) {
	if token == "" {
		return nil, fmt.Errorf("huggingface token is empty")
	}
	if modelName == "" {
		modelName = defaultHuggingFaceModel
	}

	client, err := huggingface.New(
		huggingface.WithToken(token),
		huggingface.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("huggingface client: %w", err)
	}

	emb, err := hfembed.NewHuggingface(
		hfembed.WithClient(*client),
		hfembed.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("huggingface embedder: %w", err)
	}
	return &HuggingFaceEmbedder{embedder: emb, modelName: modelName}, nil
}

func (h *HuggingFaceEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := h.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("huggingface embed (%s): %w", h.modelName, err)
	}
	return vecs, nil
}
