package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/markdave123-py/themis/internal/config"
	"github.com/markdave123-py/themis/internal/core"
)

// NewEmbedder builds the provider named by cfg.EmbedProvider.
func NewEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	var (
		emb core.EmbeddingProvider
		err error
	)
	switch cfg.EmbedProvider {
	case config.ProviderHuggingFace:
		emb, err = NewHuggingFaceEmbedder(cfg.HuggingFaceToken, cfg.EmbedModel)
	case config.ProviderGemini:
		emb, err = NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	case config.ProviderOpenAI:
		emb, err = NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbedModel)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).Int("dim", cfg.EmbedDim).Msg("embedder ready")
	return emb, nil
}
