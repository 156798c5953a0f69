package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
	"github.com/mkuzmin/docanalyst/internal/core/ports"
)

type AnswerConfig struct {
	DefaultCollection string
	DefaultTopK       int
}

// AnswerUseCase runs the retrieval pipeline: embed the question, search
// the collection, assemble ranked context and generate an answer.
type AnswerUseCase struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	generator ports.AnswerGenerator
	cfg       AnswerConfig
}

func NewAnswerUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	cfg AnswerConfig,
) *AnswerUseCase {
	return &AnswerUseCase{
		embedder:  embedder,
		index:     index,
		generator: generator,
		cfg:       cfg,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question, collection string, topK int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("question is required"))
	}
	if collection == "" {
		collection = uc.cfg.DefaultCollection
	}
	if topK <= 0 {
		topK = uc.cfg.DefaultTopK
	}

	queryVector, err := uc.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	sources, err := uc.index.Search(ctx, collection, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("search collection %q: %w", collection, err)
	}

	// Even with zero hits the generator runs against empty context and is
	// expected to report that it cannot answer. Behavior stays uniform.
	answerText, err := uc.generator.GenerateAnswer(ctx, question, assembleContext(sources))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: sources,
	}, nil
}

// assembleContext concatenates retrieved chunk texts in ranked order,
// blank-line separated. No deduplication and no truncation here; ranking
// is the only ordering signal passed to the generator.
func assembleContext(sources []domain.RetrievedSource) string {
	if len(sources) == 0 {
		return ""
	}
	texts := make([]string, 0, len(sources))
	for _, source := range sources {
		texts = append(texts, source.Text)
	}
	return strings.Join(texts, "\n\n")
}
