package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// Extractor handles text-like files; binary input is rejected rather
// than indexed as garbage.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("read %s", filename), err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(
			domain.ErrExtraction,
			fmt.Sprintf("extract %s", filename),
			fmt.Errorf("unsupported binary format"),
		)
	}
	return strings.TrimSpace(string(raw)), nil
}
