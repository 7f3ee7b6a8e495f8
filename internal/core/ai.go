package core

import "context"

// EmbeddingProvider turns texts into vectors. The result holds one vector per
// input text, in input order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
