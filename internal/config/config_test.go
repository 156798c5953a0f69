package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsWithoutEnvironment(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.APIPort)
	}
	if cfg.VectorSize != 768 || cfg.ChunkSize != 500 || cfg.RAGTopK != 3 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg)
	}
	if cfg.QdrantCollection != "documents" {
		t.Fatalf("expected default collection, got %q", cfg.QdrantCollection)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api_port: \"9000\"\nchunk_size: 250\nqdrant_collection: kb\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9000" || cfg.ChunkSize != 250 || cfg.QdrantCollection != "kb" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.RAGTopK != 3 {
		t.Fatalf("expected untouched default, got %d", cfg.RAGTopK)
	}
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: 250\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CHUNK_SIZE", "900")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 900 {
		t.Fatalf("expected env override, got %d", cfg.ChunkSize)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadReportsMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestMalformedEnvIntFallsBackToPrevious(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkSize != 500 {
		t.Fatalf("expected default on malformed value, got %d", cfg.ChunkSize)
	}
}
