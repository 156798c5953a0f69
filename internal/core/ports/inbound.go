package ports

import (
	"context"
	"io"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// DocumentIngestor is the inbound contract for synchronous document ingestion.
type DocumentIngestor interface {
	Ingest(ctx context.Context, filename, mimeType string, body io.Reader, collection string, chunkSize int) (*domain.IngestResult, error)
}

// QuestionAnswerer is the inbound contract for retrieval-augmented answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, collection string, topK int) (*domain.Answer, error)
}

// DocumentReader is the inbound read model for ingestion state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// ChunkRemover deletes a single stored chunk by id.
type ChunkRemover interface {
	Remove(ctx context.Context, collection, chunkID string) (bool, error)
}
