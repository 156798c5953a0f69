package bootstrap

import (
	"context"
	"fmt"

	"github.com/mkuzmin/docanalyst/internal/config"
	"github.com/mkuzmin/docanalyst/internal/core/ports"
	"github.com/mkuzmin/docanalyst/internal/core/usecase"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/chunking"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/extractor"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/llm/ollama"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/queue/nats"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/repository/postgres"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/resilience"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/storage/localfs"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Registry ports.DocumentRegistry
	Index    ports.VectorIndex

	IngestUC *usecase.IngestDocumentUseCase
	AnswerUC *usecase.AnswerUseCase
	RemoveUC *usecase.RemoveChunkUseCase

	closeFn func()
}

// New wires every adapter and use case. The default collection is
// created before the app is handed out, so the first upload and the
// first query hit a ready index.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	registry := postgres.NewDocumentRepository(db)
	if err := registry.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	events, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	index := qdrant.New(cfg.QdrantURL, cfg.VectorSize)
	if err := index.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		events.Close()
		_ = db.Close()
		return nil, fmt.Errorf("ensure default collection: %w", err)
	}

	chunker := chunking.NewSplitter()
	extract := extractor.NewDispatcher()

	ingestUC := usecase.NewIngestDocumentUseCase(
		registry, storage, extract, chunker, embedder, index, events,
		usecase.IngestConfig{
			DefaultCollection: cfg.QdrantCollection,
			DefaultChunkSize:  cfg.ChunkSize,
			VectorSize:        cfg.VectorSize,
		},
	)
	answerUC := usecase.NewAnswerUseCase(embedder, index, generator, usecase.AnswerConfig{
		DefaultCollection: cfg.QdrantCollection,
		DefaultTopK:       cfg.RAGTopK,
	})
	removeUC := usecase.NewRemoveChunkUseCase(index, cfg.QdrantCollection)

	return &App{
		Config: cfg,

		Registry: registry,
		Index:    index,

		IngestUC: ingestUC,
		AnswerUC: answerUC,
		RemoveUC: removeUC,

		closeFn: func() {
			events.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
