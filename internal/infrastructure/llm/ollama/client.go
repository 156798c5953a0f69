package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Embedder implements the embedding port over Ollama's /api/embed.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": []string{text},
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := e.client.call(ctx, "ollama.embed", func(callCtx context.Context) error {
		return e.client.postJSON(callCtx, "/api/embed", request, &response, "embed")
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed text", err)
	}
	if len(response.Embeddings) == 0 || len(response.Embeddings[0]) == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed text", fmt.Errorf("empty embedding result"))
	}
	return response.Embeddings[0], nil
}

// Generator implements the generation port over Ollama's /api/generate.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	request := map[string]any{
		"model":  g.client.genModel,
		"prompt": buildAnswerPrompt(question, contextText),
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	err := g.client.call(ctx, "ollama.generate", func(callCtx context.Context) error {
		return g.client.postJSON(callCtx, "/api/generate", request, &response, "generate")
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return wrapTemporaryIfNeeded(operation, fn(ctx))
	}
	return wrapTemporaryIfNeeded(operation, c.executor.Execute(ctx, operation, fn, classifyOllamaError))
}
