package ingestion_engine

import "context"

type Ingestor interface {
	Ingest(ctx context.Context, pdfURL string) (documentID string, err error)
}

var _ Ingestor = (*DocumentIngestor)(nil)
