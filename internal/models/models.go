package models

// Embedding is one stored chunk of a document together with its vector.
type Embedding struct {
	ID         int64     `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Chunk      string    `db:"chunk" json:"chunk"`
	Embedding  []float32 `db:"embedding" json:"embedding"` // pgvector column
}
