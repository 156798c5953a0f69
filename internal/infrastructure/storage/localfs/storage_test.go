package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveThenOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "doc-1_notes.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(context.Background(), "doc-1_notes.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected stored content, got %q", data)
	}
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := storage.Save(ctx, "key", strings.NewReader("first")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Save(ctx, "key", strings.NewReader("second")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(ctx, "key")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Fatalf("expected overwritten content, got %q", data)
	}
}

func TestKeysWithPathSeparatorsAreRejected(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"", "..", "a/b", `a\b`, "../escape"} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestOpenMissingKeyFails(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := storage.Open(context.Background(), "absent"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
