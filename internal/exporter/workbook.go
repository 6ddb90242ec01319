package exporter

import (
	"context"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/files"
	"wdicli/internal/infrastructure"
	"wdicli/pkg/contracts/domain"
)

// WorkbookWriter writes the long-format dataset into a single .xlsx
// workbook, one sheet per page, using stream writers so large pages
// don't inflate memory with cell objects.
type WorkbookWriter struct {
	manager *files.Manager
}

// NewWorkbookWriter creates a new workbook writer instance
func NewWorkbookWriter(manager *files.Manager) *WorkbookWriter {
	return &WorkbookWriter{manager: manager}
}

// Write writes every page as a sheet, appends the indicator reference
// sheet when the source carries indicator names, and atomically replaces
// outPath with the finished workbook. The workbook is saved to a
// temporary sibling first; a failed save removes it and leaves the
// target untouched.
func (w *WorkbookWriter) Write(ctx context.Context, table *domain.LongTable, pages []SheetPage, outPath, runID string) error {
	logger := infrastructure.LoggerFromContext(ctx)

	f := excelize.NewFile()
	defer f.Close()

	header := table.Header()
	for i, page := range pages {
		if i == 0 {
			// Reuse the default sheet the workbook is created with
			if err := f.SetSheetName(f.GetSheetName(0), page.Name); err != nil {
				return apperrors.ExportFailed(err)
			}
		} else {
			if _, err := f.NewSheet(page.Name); err != nil {
				return apperrors.ExportFailed(err)
			}
		}

		if err := writeSheet(f, table, page, header); err != nil {
			return apperrors.ExportFailed(err)
		}

		logger.InfoContext(ctx, "Sheet written",
			slog.String("sheet", page.Name),
			slog.Int("rows", len(page.Rows)))
	}

	if table.IndicatorNameIdx != -1 && len(table.Indicators) > 0 {
		if err := writeIndicatorInfo(f, table.Indicators); err != nil {
			return apperrors.ExportFailed(err)
		}
		logger.InfoContext(ctx, "Sheet written",
			slog.String("sheet", IndicatorInfoSheet),
			slog.Int("rows", len(table.Indicators)))
	}

	tmpPath := w.manager.TempPath(outPath, runID)
	if err := f.SaveAs(tmpPath); err != nil {
		// Never leave the temporary file behind
		_ = w.manager.RemoveIfExists(tmpPath)
		return apperrors.ExportFailed(err)
	}

	if err := w.manager.ReplaceFile(tmpPath, outPath); err != nil {
		_ = w.manager.RemoveIfExists(tmpPath)
		return apperrors.ExportFailed(err)
	}

	logger.InfoContext(ctx, "Workbook written",
		slog.String("path", w.manager.ResolvePath(outPath)),
		slog.Int("sheets", len(pages)),
		slog.Int("records", len(table.Records)))

	return nil
}

// writeSheet streams one page into its sheet: a header row followed by
// one row per record, in page order
func writeSheet(f *excelize.File, table *domain.LongTable, page SheetPage, header []string) error {
	sw, err := f.NewStreamWriter(page.Name)
	if err != nil {
		return err
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return err
	}

	for r, idx := range page.Rows {
		rec := table.Records[idx]
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, recordCells(table, rec, len(header))); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// recordCells renders one record as typed cell values: id strings, the
// year as an integer, the value as a float or an empty cell when
// missing, then attribute strings
func recordCells(table *domain.LongTable, rec domain.LongRecord, width int) []interface{} {
	cells := make([]interface{}, 0, width)
	for _, id := range rec.IDs {
		cells = append(cells, id)
	}
	cells = append(cells, rec.Year)
	if rec.Missing {
		cells = append(cells, nil)
	} else {
		cells = append(cells, rec.Value)
	}
	for i := range table.AttrColumns {
		if i < len(rec.Attrs) {
			cells = append(cells, rec.Attrs[i])
		} else {
			cells = append(cells, "")
		}
	}
	return cells
}

// writeIndicatorInfo appends the indicator reference sheet with the
// unique (code, name) pairs in first-appearance order
func writeIndicatorInfo(f *excelize.File, indicators []domain.IndicatorDetail) error {
	if _, err := f.NewSheet(IndicatorInfoSheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(IndicatorInfoSheet)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", []interface{}{"Indicator Code", "Indicator Name"}); err != nil {
		return err
	}
	for i, ind := range indicators {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{ind.Code, ind.Name}); err != nil {
			return err
		}
	}

	return sw.Flush()
}
