package extractor

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/mkuzmin/docanalyst/internal/core/ports"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/extractor/pdf"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/extractor/plaintext"
	"github.com/mkuzmin/docanalyst/internal/infrastructure/extractor/xlsx"
)

// Dispatcher picks the concrete extractor by file extension. Anything
// without a dedicated parser falls through to the plaintext extractor,
// which rejects non-UTF-8 input.
type Dispatcher struct {
	pdf       ports.TextExtractor
	xlsx      ports.TextExtractor
	plaintext ports.TextExtractor
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		pdf:       pdf.NewExtractor(),
		xlsx:      xlsx.NewExtractor(),
		plaintext: plaintext.NewExtractor(),
	}
}

func (d *Dispatcher) Extract(ctx context.Context, filename string, data io.Reader) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return d.pdf.Extract(ctx, filename, data)
	case ".xlsx", ".xlsm":
		return d.xlsx.Extract(ctx, filename, data)
	default:
		return d.plaintext.Extract(ctx, filename, data)
	}
}
