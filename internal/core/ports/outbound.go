package ports

import (
	"context"
	"io"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// TextExtractor turns a raw document stream into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data io.Reader) (string, error)
}

// Chunker splits extracted text into bounded-size segments.
type Chunker interface {
	Split(text string, maxChunkSize int) ([]string, error)
}

// Embedder builds fixed-length vectors for chunk and query text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator produces the final answer from assembled context.
// The generator is instructed to answer strictly from the context and to
// say so when the context is insufficient.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
}

// VectorIndex owns chunk persistence and similarity search.
// EnsureCollection is idempotent. Search against a collection that does
// not exist yet returns an empty result, not an error. Delete reports
// whether the collection accepted the deletion; backends acknowledge
// deletes of unknown ids, so only a missing collection reports false.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
	Store(ctx context.Context, collection, text string, vector []float32, metadata map[string]any) (string, error)
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedSource, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
	Ping(ctx context.Context, collection string) error
}

// ObjectStorage stores raw uploaded documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentRegistry persists per-document ingestion state.
type DocumentRegistry interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	MarkReady(ctx context.Context, id string, chunkCount int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// EventPublisher announces completed ingestions to downstream consumers.
type EventPublisher interface {
	PublishDocumentIngested(ctx context.Context, documentID string, chunkCount int) error
}
