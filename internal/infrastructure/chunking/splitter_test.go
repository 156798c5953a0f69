package chunking

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

func TestSplitPacksWholeSentences(t *testing.T) {
	s := NewSplitter()
	chunks, err := s.Split("A. B. C.", 4)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []string{"A.", "B.", "C."}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
}

func TestSplitCombinesSentencesUpToLimit(t *testing.T) {
	s := NewSplitter()
	chunks, err := s.Split("A. B. C.", 5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []string{"A. B.", "C."}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
}

func TestSplitKeepsOversizedSentenceIntact(t *testing.T) {
	s := NewSplitter()
	long := strings.Repeat("word ", 20) + "end."
	chunks, err := s.Split("Short. "+long+" Tail!", 10)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[1] != strings.TrimSpace(long) {
		t.Fatalf("expected oversized sentence preserved, got %q", chunks[1])
	}
	for i, chunk := range chunks {
		if i == 1 {
			continue
		}
		if utf8.RuneCountInString(chunk) > 10 {
			t.Fatalf("chunk %d exceeds limit: %q", i, chunk)
		}
	}
}

func TestSplitDropsEmptyFragments(t *testing.T) {
	s := NewSplitter()
	chunks, err := s.Split("A... B!!   ?", 100)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []string{"A. B!"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
}

func TestSplitKeepsUnterminatedTail(t *testing.T) {
	s := NewSplitter()
	chunks, err := s.Split("First sentence. trailing words", 100)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []string{"First sentence. trailing words"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter()
	for _, text := range []string{"", "   ", "\n\t "} {
		chunks, err := s.Split(text, 50)
		if err != nil {
			t.Fatalf("Split(%q) error = %v", text, err)
		}
		if len(chunks) != 0 {
			t.Fatalf("expected no chunks for %q, got %v", text, chunks)
		}
	}
}

func TestSplitRejectsNonPositiveSize(t *testing.T) {
	s := NewSplitter()
	for _, size := range []int{0, -1} {
		_, err := s.Split("A.", size)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input error for size %d, got %v", size, err)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewSplitter()
	text := "One sentence here. Another one there! A third? And a fourth."
	first, err := s.Split(text, 30)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	second, err := s.Split(text, 30)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical sequences, got %v vs %v", first, second)
	}
}

func TestSplitPreservesSentenceContentAndOrder(t *testing.T) {
	s := NewSplitter()
	text := "Alpha beta. Gamma delta! Epsilon? Zeta eta theta. Iota."
	chunks, err := s.Split(text, 25)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	joined := strings.Join(chunks, " ")
	normalize := func(in string) string {
		return strings.Join(strings.Fields(in), " ")
	}
	if normalize(joined) != normalize(text) {
		t.Fatalf("chunks do not reconstruct input:\n got %q\nwant %q", joined, text)
	}
}
