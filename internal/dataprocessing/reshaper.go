package dataprocessing

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/infrastructure"
	"wdicli/pkg/contracts/domain"
)

// naMarkers are the cell values published indicator files use for "no
// data". They become Missing records during coercion, never errors.
var naMarkers = map[string]struct{}{
	"..":   {},
	"":     {},
	" ":    {},
	"NA":   {},
	"N/A":  {},
	"#N/A": {},
}

// ColumnRoles holds the match-substrings used to locate the key columns
// in the wide header. The first header cell containing the substring
// takes the role. Entity and Indicator are required; IndicatorName may
// be empty when the source carries no indicator names.
type ColumnRoles struct {
	Entity        string
	Indicator     string
	IndicatorName string
}

// DefaultColumnRoles matches WDI-style headers
func DefaultColumnRoles() ColumnRoles {
	return ColumnRoles{
		Entity:        "Country Code",
		Indicator:     "Indicator Code",
		IndicatorName: "Indicator Name",
	}
}

var yearRunRe = regexp.MustCompile(`\d{4}`)

// yearColumn reports whether a header cell names a year column and which
// year it carries. A column qualifies when its name hints at a year
// ("19", "20" or "YR") and contains a four-digit run; the first such run
// is the year. Candidates without a four-digit run stay id columns.
func yearColumn(name string) (int, bool) {
	if !strings.Contains(name, "19") && !strings.Contains(name, "20") && !strings.Contains(name, "YR") {
		return 0, false
	}
	run := yearRunRe.FindString(name)
	if run == "" {
		return 0, false
	}
	year, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return year, true
}

// findColumn returns the index of the first column whose name contains
// the convention substring, or -1. An empty convention never matches.
func findColumn(columns []string, convention string) int {
	if convention == "" {
		return -1
	}
	for i, c := range columns {
		if strings.Contains(c, convention) {
			return i
		}
	}
	return -1
}

// Reshape melts a wide table into long format without loss: every
// (row, year column) cell becomes exactly one record. Cells that fail
// numeric coercion are represented as Missing and counted, never
// dropped. Records are emitted row-major, so an entity-then-indicator
// sorted source yields entity, indicator, year ordering.
func Reshape(ctx context.Context, wide *domain.WideTable, roles ColumnRoles) (*domain.LongTable, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	entityIdx := findColumn(wide.Columns, roles.Entity)
	if entityIdx == -1 {
		return nil, apperrors.SchemaInvalid("no column matching " + strconv.Quote(roles.Entity))
	}
	indicatorIdx := findColumn(wide.Columns, roles.Indicator)
	if indicatorIdx == -1 {
		return nil, apperrors.SchemaInvalid("no column matching " + strconv.Quote(roles.Indicator))
	}
	indicatorNameIdx := findColumn(wide.Columns, roles.IndicatorName)

	// Role columns are id columns by definition, even if their names
	// happen to contain a four-digit run
	roleIdx := map[int]bool{entityIdx: true, indicatorIdx: true}
	if indicatorNameIdx != -1 {
		roleIdx[indicatorNameIdx] = true
	}

	var (
		idCols   []int
		yearCols []int
		years    []int
	)
	for i, name := range wide.Columns {
		if !roleIdx[i] {
			if year, ok := yearColumn(name); ok {
				yearCols = append(yearCols, i)
				years = append(years, year)
				continue
			}
		}
		idCols = append(idCols, i)
	}

	if len(yearCols) == 0 {
		return nil, apperrors.SchemaInvalid("no year columns detected")
	}

	table := &domain.LongTable{
		IDColumns:        make([]string, len(idCols)),
		IndicatorNameIdx: -1,
		Records:          make([]domain.LongRecord, 0, len(wide.Rows)*len(yearCols)),
	}
	for pos, i := range idCols {
		table.IDColumns[pos] = wide.Columns[i]
		switch i {
		case entityIdx:
			table.EntityIdx = pos
		case indicatorIdx:
			table.IndicatorIdx = pos
		case indicatorNameIdx:
			table.IndicatorNameIdx = pos
		}
	}

	seenIndicators := make(map[string]bool)

	for _, row := range wide.Rows {
		ids := make([]string, len(idCols))
		for pos, i := range idCols {
			ids[pos] = strings.TrimSpace(row[i])
		}

		code := ids[table.IndicatorIdx]
		if !seenIndicators[code] {
			seenIndicators[code] = true
			detail := domain.IndicatorDetail{Code: code}
			if table.IndicatorNameIdx != -1 {
				detail.Name = ids[table.IndicatorNameIdx]
			}
			table.Indicators = append(table.Indicators, detail)
		}

		for pos, i := range yearCols {
			record := domain.LongRecord{IDs: ids, Year: years[pos]}
			value, missing, malformed := coerceValue(row[i])
			if missing {
				record.Missing = true
				if malformed {
					table.MalformedCells++
				} else {
					table.NACells++
				}
			} else {
				record.Value = value
			}
			table.Records = append(table.Records, record)
		}
	}

	logger.InfoContext(ctx, "Wide table reshaped",
		slog.Int("wide_rows", len(wide.Rows)),
		slog.Int("year_columns", len(yearCols)),
		slog.Int("id_columns", len(idCols)),
		slog.Int("long_records", len(table.Records)),
		slog.Int("indicators", len(table.Indicators)),
		slog.Int("na_cells", table.NACells),
		slog.Int("malformed_cells", table.MalformedCells))

	return table, nil
}

// coerceValue parses one cell into a float64. NA markers and empty cells
// report missing; anything else that fails to parse reports missing and
// malformed. Thousands separators are stripped before parsing.
func coerceValue(cell string) (value float64, missing, malformed bool) {
	trimmed := strings.TrimSpace(cell)
	if _, ok := naMarkers[trimmed]; ok {
		return 0, true, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return 0, true, true
	}
	return value, false, false
}
