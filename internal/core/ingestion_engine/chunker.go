package ingestion_engine

import (
	"errors"
	"unicode/utf8"
)

// DefaultChunkSize is the chunk length, in characters, used when none is configured.
const DefaultChunkSize = 1000

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// SplitText cuts text into contiguous, non-overlapping chunks of chunkSize
// characters; only the last chunk may be shorter. Lengths count Unicode code
// points, so a multi-byte character is never split across chunks.
func SplitText(text string, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/chunkSize+1)
	start, count := 0, 0
	for i := range text {
		if count == chunkSize {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks, nil
}
