package exporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wdicli/internal/config"
	apperrors "wdicli/internal/errors"
	"wdicli/internal/files"
	"wdicli/pkg/contracts/domain"
)

func newTestWriter(t *testing.T) (*WorkbookWriter, *config.Paths) {
	t.Helper()
	base := t.TempDir()
	paths := config.NewPaths(base, config.Default().Paths)
	require.NoError(t, paths.EnsureDirectories())
	return NewWorkbookWriter(files.NewManager(paths)), paths
}

// sampleTable builds a merged long table with indicator names and one
// missing value
func sampleTable() *domain.LongTable {
	return &domain.LongTable{
		IDColumns:        []string{"Country Code", "Indicator Name", "Indicator Code"},
		EntityIdx:        0,
		IndicatorNameIdx: 1,
		IndicatorIdx:     2,
		AttrColumns:      []string{"Income Group"},
		Records: []domain.LongRecord{
			{IDs: []string{"ABW", "Population", "SP.POP.TOTL"}, Year: 2000, Value: 90853, Attrs: []string{"High income"}},
			{IDs: []string{"ABW", "Population", "SP.POP.TOTL"}, Year: 2001, Missing: true, Attrs: []string{"High income"}},
			{IDs: []string{"ALB", "Population", "SP.POP.TOTL"}, Year: 2000, Value: 3089027, Attrs: []string{""}},
			{IDs: []string{"ALB", "GDP per capita", "NY.GDP.PCAP.CD"}, Year: 2000, Value: 1126.68, Attrs: []string{""}},
		},
		Indicators: []domain.IndicatorDetail{
			{Code: "SP.POP.TOTL", Name: "Population"},
			{Code: "NY.GDP.PCAP.CD", Name: "GDP per capita"},
		},
	}
}

func TestWorkbookWrite(t *testing.T) {
	w, paths := newTestWriter(t)
	table := sampleTable()
	pages := BuildPages(table, 1000, true)

	err := w.Write(context.Background(), table, pages, "output/result.xlsx", "run-1")
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.GetOutputPath("result.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"SP.POP.TOTL", "NY.GDP.PCAP.CD", IndicatorInfoSheet}, f.GetSheetList())

	// Header row
	header, err := f.GetRows("SP.POP.TOTL")
	require.NoError(t, err)
	assert.Equal(t, []string{"Country Code", "Indicator Name", "Indicator Code", "Year", "Value", "Income Group"}, header[0])

	// First data row
	v, err := f.GetCellValue("SP.POP.TOTL", "E2")
	require.NoError(t, err)
	assert.Equal(t, "90853", v)
	year, err := f.GetCellValue("SP.POP.TOTL", "D2")
	require.NoError(t, err)
	assert.Equal(t, "2000", year)
	attr, err := f.GetCellValue("SP.POP.TOTL", "F2")
	require.NoError(t, err)
	assert.Equal(t, "High income", attr)

	// Missing value is an empty cell, the row itself is present
	missing, err := f.GetCellValue("SP.POP.TOTL", "E3")
	require.NoError(t, err)
	assert.Equal(t, "", missing)
	missingYear, err := f.GetCellValue("SP.POP.TOTL", "D3")
	require.NoError(t, err)
	assert.Equal(t, "2001", missingYear)

	// Indicator reference sheet
	info, err := f.GetRows(IndicatorInfoSheet)
	require.NoError(t, err)
	require.Len(t, info, 3)
	assert.Equal(t, []string{"Indicator Code", "Indicator Name"}, info[0])
	assert.Equal(t, []string{"SP.POP.TOTL", "Population"}, info[1])
	assert.Equal(t, []string{"NY.GDP.PCAP.CD", "GDP per capita"}, info[2])
}

func TestWorkbookWriteRowSplitPagination(t *testing.T) {
	w, paths := newTestWriter(t)

	table := sampleTable()
	pages := BuildPages(table, 3, false)
	require.Len(t, pages, 2)

	err := w.Write(context.Background(), table, pages, "output/split.xlsx", "run-2")
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.GetOutputPath("split.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	part1, err := f.GetRows("Part1")
	require.NoError(t, err)
	assert.Len(t, part1, 4) // header + 3 records
	part2, err := f.GetRows("Part2")
	require.NoError(t, err)
	assert.Len(t, part2, 2) // header + 1 record
}

func TestWorkbookWriteNoIndicatorNames(t *testing.T) {
	w, paths := newTestWriter(t)

	table := sampleTable()
	table.IndicatorNameIdx = -1

	pages := BuildPages(table, 1000, false)
	err := w.Write(context.Background(), table, pages, "output/plain.xlsx", "run-3")
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.GetOutputPath("plain.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), IndicatorInfoSheet)
}

func TestWorkbookWriteIdempotent(t *testing.T) {
	w, paths := newTestWriter(t)
	table := sampleTable()
	pages := BuildPages(table, 1000, true)

	require.NoError(t, w.Write(context.Background(), table, pages, "output/a.xlsx", "run-a"))
	require.NoError(t, w.Write(context.Background(), table, pages, "output/b.xlsx", "run-b"))

	fa, err := excelize.OpenFile(paths.GetOutputPath("a.xlsx"))
	require.NoError(t, err)
	defer fa.Close()
	fb, err := excelize.OpenFile(paths.GetOutputPath("b.xlsx"))
	require.NoError(t, err)
	defer fb.Close()

	require.Equal(t, fa.GetSheetList(), fb.GetSheetList())
	for _, sheet := range fa.GetSheetList() {
		rowsA, err := fa.GetRows(sheet)
		require.NoError(t, err)
		rowsB, err := fb.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, rowsA, rowsB, "sheet %s differs", sheet)
	}
}

func TestWorkbookWriteFailureLeavesNoPartialFile(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(base, config.Default().Paths)
	// Output directory deliberately not created, so saving the temporary
	// workbook fails
	w := NewWorkbookWriter(files.NewManager(paths))

	table := sampleTable()
	pages := BuildPages(table, 1000, true)

	err := w.Write(context.Background(), table, pages, "output/result.xlsx", "run-x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExportFailed))

	// Neither the target nor the temporary file exists afterwards
	_, statErr := os.Stat(paths.GetOutputPath("result.xlsx"))
	assert.True(t, os.IsNotExist(statErr))

	entries, readErr := os.ReadDir(filepath.Dir(paths.OutputDir))
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
