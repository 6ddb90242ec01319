package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/files"
	"wdicli/internal/infrastructure"
	"wdicli/pkg/contracts/domain"
)

// CSVWriter exports the long-format dataset as a single CSV sidecar with
// the same header and row order as the workbook.
type CSVWriter struct {
	manager *files.Manager
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager) *CSVWriter {
	return &CSVWriter{manager: manager}
}

// Write writes the full long table to outPath through the same atomic
// write-then-replace path as the workbook. The file carries a UTF-8 BOM
// for Excel compatibility; missing values become empty fields.
func (w *CSVWriter) Write(ctx context.Context, table *domain.LongTable, outPath, runID string) error {
	logger := infrastructure.LoggerFromContext(ctx)

	tmpPath := w.manager.TempPath(outPath, runID)
	if err := w.writeFile(tmpPath, table); err != nil {
		_ = w.manager.RemoveIfExists(tmpPath)
		return apperrors.ExportFailed(err)
	}

	if err := w.manager.ReplaceFile(tmpPath, outPath); err != nil {
		_ = w.manager.RemoveIfExists(tmpPath)
		return apperrors.ExportFailed(err)
	}

	logger.InfoContext(ctx, "CSV sidecar written",
		slog.String("path", w.manager.ResolvePath(outPath)),
		slog.Int("records", len(table.Records)))

	return nil
}

func (w *CSVWriter) writeFile(path string, table *domain.LongTable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// UTF-8 BOM helps Excel recognize the encoding
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range table.Records {
		if err := writer.Write(recordStrings(table, rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	return file.Sync()
}
