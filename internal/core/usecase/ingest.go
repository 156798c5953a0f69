package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
	"github.com/mkuzmin/docanalyst/internal/core/ports"
)

// IngestConfig carries the orchestration defaults explicitly so tests can
// inject their own values instead of reading ambient configuration.
type IngestConfig struct {
	DefaultCollection string
	DefaultChunkSize  int
	VectorSize        int
}

// IngestDocumentUseCase runs the synchronous ingestion pipeline:
// store raw bytes, extract text, chunk, embed and store each chunk in
// original order. Chunk ids are assigned per store call, so re-ingesting
// the same document is additive and yields fresh ids.
type IngestDocumentUseCase struct {
	registry  ports.DocumentRegistry
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	events    ports.EventPublisher
	cfg       IngestConfig
}

func NewIngestDocumentUseCase(
	registry ports.DocumentRegistry,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	events ports.EventPublisher,
	cfg IngestConfig,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		registry:  registry,
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		events:    events,
		cfg:       cfg,
	}
}

func (uc *IngestDocumentUseCase) Ingest(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
	collection string,
	chunkSize int,
) (*domain.IngestResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("filename is required"))
	}
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("document body is required"))
	}
	if collection == "" {
		collection = uc.cfg.DefaultCollection
	}
	if chunkSize == 0 {
		chunkSize = uc.cfg.DefaultChunkSize
	}
	if chunkSize < 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"ingest document",
			fmt.Errorf("chunk size must be positive, got %d", chunkSize),
		)
	}

	if err := uc.index.EnsureCollection(ctx, collection, uc.cfg.VectorSize); err != nil {
		return nil, fmt.Errorf("ensure collection %q: %w", collection, err)
	}

	doc, err := uc.register(ctx, filename, mimeType, collection, body)
	if err != nil {
		return nil, err
	}

	chunkIDs, err := uc.pipeline(ctx, doc, collection, chunkSize)
	if err != nil {
		if failErr := uc.registry.MarkFailed(ctx, doc.ID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.registry.MarkReady(ctx, doc.ID, len(chunkIDs)); err != nil {
		return nil, fmt.Errorf("mark document ready: %w", err)
	}

	// The ingested event is advisory; a broker outage must not fail an
	// ingestion that already persisted its chunks.
	if err := uc.events.PublishDocumentIngested(ctx, doc.ID, len(chunkIDs)); err != nil {
		slog.Warn("publish ingested event failed", "document_id", doc.ID, "error", err)
	}

	return &domain.IngestResult{
		DocumentID: doc.ID,
		Collection: collection,
		ChunkIDs:   chunkIDs,
	}, nil
}

func (uc *IngestDocumentUseCase) register(
	ctx context.Context,
	filename, mimeType, collection string,
	body io.Reader,
) (*domain.Document, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Collection:  collection,
		Status:      domain.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.registry.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	return doc, nil
}

func (uc *IngestDocumentUseCase) pipeline(
	ctx context.Context,
	doc *domain.Document,
	collection string,
	chunkSize int,
) ([]string, error) {
	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, err
	}

	chunks, err := uc.chunker.Split(text, chunkSize)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	// Chunks go through embed+store strictly in order so the returned id
	// sequence mirrors the chunk sequence. On the first failure the rest
	// of the document is abandoned; already-stored chunks stay put.
	chunkIDs := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := uc.embedder.EmbedText(ctx, chunk)
		if err != nil {
			return nil, uc.abort(i, len(chunks), len(chunkIDs), fmt.Errorf("embed chunk: %w", err))
		}

		id, err := uc.index.Store(ctx, collection, chunk, vector, map[string]any{
			"document_id":  doc.ID,
			"filename":     doc.Filename,
			"storage_path": doc.StoragePath,
			"chunk_index":  i,
		})
		if err != nil {
			return nil, uc.abort(i, len(chunks), len(chunkIDs), fmt.Errorf("store chunk: %w", err))
		}
		chunkIDs = append(chunkIDs, id)
	}
	return chunkIDs, nil
}

func (uc *IngestDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	text, err := uc.extractor.Extract(ctx, doc.Filename, reader)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", errors.New("document contains no extractable text"))
	}
	return text, nil
}

func (uc *IngestDocumentUseCase) abort(index, total, stored int, err error) error {
	return fmt.Errorf("ingestion aborted at chunk %d of %d (%d chunks stored): %w", index+1, total, stored, err)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
