package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
	"github.com/mkuzmin/docanalyst/internal/core/ports"
)

// RemoveChunkUseCase deletes a single stored chunk by id. Deletion is the
// only mutation a chunk ever sees after it is stored.
type RemoveChunkUseCase struct {
	index             ports.VectorIndex
	defaultCollection string
}

func NewRemoveChunkUseCase(index ports.VectorIndex, defaultCollection string) *RemoveChunkUseCase {
	return &RemoveChunkUseCase{
		index:             index,
		defaultCollection: defaultCollection,
	}
}

func (uc *RemoveChunkUseCase) Remove(ctx context.Context, collection, chunkID string) (bool, error) {
	if strings.TrimSpace(chunkID) == "" {
		return false, domain.WrapError(domain.ErrInvalidInput, "remove chunk", errors.New("chunk id is required"))
	}
	if collection == "" {
		collection = uc.defaultCollection
	}

	deleted, err := uc.index.Delete(ctx, collection, chunkID)
	if err != nil {
		return false, fmt.Errorf("delete chunk %s from %q: %w", chunkID, collection, err)
	}
	return deleted, nil
}
