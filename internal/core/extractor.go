package core

import "context"

// DocumentExtractor resolves a document reference and returns its plain text.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, sourceURL string) (string, error)
}
