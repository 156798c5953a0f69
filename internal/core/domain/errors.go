package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrExtraction       = errors.New("extraction failed")
	ErrEmbedding        = errors.New("embedding failed")
	ErrGeneration       = errors.New("generation failed")
	ErrIndex            = errors.New("vector index failure")
	ErrDocumentNotFound = errors.New("document not found")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
