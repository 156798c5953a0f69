package chunking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// Splitter cuts text at sentence terminators and packs whole sentences
// into chunks of at most maxChunkSize runes. A single sentence longer
// than the limit becomes its own oversized chunk; sentences are never
// split mid-way.
type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

func (s *Splitter) Split(text string, maxChunkSize int) ([]string, error) {
	if maxChunkSize <= 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"split text",
			fmt.Errorf("chunk size must be positive, got %d", maxChunkSize),
		)
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	chunks := make([]string, 0, len(sentences))
	current := ""
	for _, sentence := range sentences {
		if current == "" {
			current = sentence
			continue
		}
		candidate := current + " " + sentence
		if utf8.RuneCountInString(candidate) > maxChunkSize {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		current = candidate
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks, nil
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences returns trimmed sentence-like units with their
// terminator attached. Fragments that are empty after trimming (runs of
// terminators, surrounding whitespace) are dropped.
func splitSentences(text string) []string {
	var sentences []string
	var content strings.Builder

	flush := func(terminator rune) {
		fragment := strings.TrimSpace(content.String())
		content.Reset()
		if fragment == "" {
			return
		}
		if terminator != 0 {
			fragment += string(terminator)
		}
		sentences = append(sentences, fragment)
	}

	for _, r := range text {
		if isSentenceTerminator(r) {
			flush(r)
			continue
		}
		content.WriteRune(r)
	}
	flush(0)

	return sentences
}
