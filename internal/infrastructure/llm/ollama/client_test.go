package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

func TestGeneratorBuildsContextOnlyPrompt(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", nil)
	gen := NewGenerator(client)
	_, err := gen.GenerateAnswer(context.Background(), "what is the total?", "chunk text\n\nmore text")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "what is the total?") || !strings.Contains(capturedPrompt, "chunk text") {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "ONLY the context") {
		t.Fatalf("expected context-only instruction in prompt: %s", capturedPrompt)
	}
}

func TestGeneratorEmptyContextGetsPlaceholder(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"I cannot answer this from the available documents."}`))
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed", nil))
	answer, err := gen.GenerateAnswer(context.Background(), "anything?", "")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "no documents matched") {
		t.Fatalf("expected placeholder for empty context, got %s", capturedPrompt)
	}
	if answer == "" {
		t.Fatalf("expected answer text")
	}
}

func TestEmbedTextReturnsVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", nil))
	vector, err := embedder.EmbedText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedText() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("expected 3-dim vector, got %v", vector)
	}
}

func TestEmbedTextWrapsFailureWithEmbeddingKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusNotFound)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", nil))
	_, err := embedder.EmbedText(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEmbedding) {
		t.Fatalf("expected embedding error kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestEmbedTextMarksRetryableStatusTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", nil))
	_, err := embedder.EmbedText(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
}
