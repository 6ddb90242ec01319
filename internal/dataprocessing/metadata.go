package dataprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/infrastructure"
	"wdicli/pkg/contracts/domain"
)

// LoadMetadata reads an entity metadata CSV and extracts the requested
// attribute columns keyed by entity identifier. The key column is found
// by the same match-substring convention as the main dataset. An empty
// attrs list selects every non-key column. Duplicate rows for one entity
// overwrite earlier ones: last one wins.
func LoadMetadata(ctx context.Context, path, keyConvention string, attrs []string) (*domain.MetadataTable, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	wide, err := ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}

	keyIdx := findColumn(wide.Columns, keyConvention)
	if keyIdx == -1 {
		return nil, apperrors.SchemaInvalid("metadata file has no column matching " + strconv.Quote(keyConvention))
	}

	var attrIdx []int
	var attrColumns []string
	if len(attrs) == 0 {
		for i, name := range wide.Columns {
			if i != keyIdx {
				attrIdx = append(attrIdx, i)
				attrColumns = append(attrColumns, name)
			}
		}
	} else {
		for _, name := range attrs {
			i := wide.ColumnIndex(name)
			if i == -1 {
				return nil, apperrors.SchemaInvalid("metadata file has no column " + strconv.Quote(name))
			}
			attrIdx = append(attrIdx, i)
			attrColumns = append(attrColumns, name)
		}
	}

	table := &domain.MetadataTable{
		KeyColumn:   wide.Columns[keyIdx],
		AttrColumns: attrColumns,
		ByEntity:    make(map[string][]string, len(wide.Rows)),
	}

	for _, row := range wide.Rows {
		key := strings.TrimSpace(row[keyIdx])
		if key == "" {
			continue
		}
		values := make([]string, len(attrIdx))
		for pos, i := range attrIdx {
			values[pos] = strings.TrimSpace(row[i])
		}
		table.ByEntity[key] = values
	}

	logger.InfoContext(ctx, "Metadata loaded",
		slog.String("path", path),
		slog.String("key_column", table.KeyColumn),
		slog.Any("attributes", attrColumns),
		slog.Int("entities", len(table.ByEntity)))

	return table, nil
}

// MergeMetadata left-joins metadata attributes into every long record by
// entity identifier. Entities absent from the metadata keep empty
// attribute values; no record is ever dropped by the merge.
func MergeMetadata(ctx context.Context, long *domain.LongTable, meta *domain.MetadataTable) {
	logger := infrastructure.LoggerFromContext(ctx)

	long.AttrColumns = meta.AttrColumns
	empty := make([]string, len(meta.AttrColumns))

	matched := 0
	for i := range long.Records {
		if values, ok := meta.ByEntity[long.EntityID(long.Records[i])]; ok {
			long.Records[i].Attrs = values
			matched++
		} else {
			long.Records[i].Attrs = empty
		}
	}

	logger.InfoContext(ctx, "Metadata merged",
		slog.Int("records", len(long.Records)),
		slog.Int("matched_records", matched),
		slog.Int("unmatched_records", len(long.Records)-matched))
}
