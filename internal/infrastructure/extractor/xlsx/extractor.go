package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// Extractor flattens every sheet of a workbook into tab-separated lines.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, data io.Reader) (string, error) {
	file, err := excelize.OpenReader(data)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("parse %s", filename), err)
	}
	defer file.Close()

	var sb strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("read sheet %s of %s", sheet, filename), err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
