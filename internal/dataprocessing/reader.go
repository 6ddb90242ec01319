package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/infrastructure"
	"wdicli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbackEncodings are tried in order when the raw bytes are not valid
// UTF-8. A decode that yields replacement runes is treated as a miss so
// the next encoding gets a chance; latin-1 maps every byte, so the chain
// cannot run out before it.
var fallbackEncodings = []struct {
	name    string
	charmap *charmap.Charmap
}{
	{"windows-1252", charmap.Windows1252},
	{"latin-1", charmap.ISO8859_1},
	{"iso-8859-9", charmap.ISO8859_9},
}

// ReadTable reads a delimited text file into a WideTable. Header cells
// are whitespace-trimmed and ragged rows are padded or truncated to the
// header width so downstream indexing is total.
func ReadTable(ctx context.Context, path string) (*domain.WideTable, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.InputNotFound(path, err)
		}
		return nil, apperrors.InputUnreadable(path, err)
	}

	text, encoding, err := decodeBytes(data)
	if err != nil {
		return nil, apperrors.InputUnreadable(path, err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.InputUnreadable(path, err)
	}
	if len(records) == 0 {
		return nil, apperrors.InputUnreadable(path, fmt.Errorf("file contains no rows"))
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(columns))
		copy(row, rec)
		rows = append(rows, row)
	}

	logger.InfoContext(ctx, "Input file read",
		slog.String("path", path),
		slog.String("encoding", encoding),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(rows)))

	return &domain.WideTable{Columns: columns, Rows: rows}, nil
}

// decodeBytes decodes raw file bytes into a UTF-8 string, reporting the
// encoding that succeeded
func decodeBytes(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.charmap.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded), enc.name, nil
	}

	return "", "", fmt.Errorf("no supported encoding could decode the file")
}
