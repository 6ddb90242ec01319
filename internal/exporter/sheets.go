package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"wdicli/pkg/contracts/domain"
)

const (
	// MaxSheetNameLength is the spreadsheet sheet name limit
	MaxSheetNameLength = 31
	// singleBaseLength caps an indicator code used alone as a sheet name
	singleBaseLength = 28
	// partBaseLength caps the indicator code prefix of paginated sheet names
	partBaseLength = 20

	// IndicatorInfoSheet holds the unique (code, name) reference pairs
	IndicatorInfoSheet = "Indicator_Info"
)

// SheetPage is one output sheet: a derived unique name and the indices
// of the long records it contains, preserving original record order.
type SheetPage struct {
	Name string
	Rows []int
}

// invalidSheetChars are forbidden in sheet names and replaced with "_"
var invalidSheetChars = strings.NewReplacer(
	":", "_",
	"\\", "_",
	"/", "_",
	"?", "_",
	"*", "_",
	"[", "_",
	"]", "_",
)

// sheetNamer produces sanitized, truncated, collision-free sheet names.
// Naming is deterministic: the same sequence of bases always yields the
// same names.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	// The reference sheet name is reserved up front so a page can never
	// collide with it
	return &sheetNamer{used: map[string]bool{IndicatorInfoSheet: true}}
}

// Name derives a usable sheet name from base: invalid characters
// replaced, truncated to the limit, fallback when empty, numeric suffix
// on collision with the suffixed name still fitting the limit.
func (n *sheetNamer) Name(base, fallback string) string {
	name := invalidSheetChars.Replace(strings.TrimSpace(base))
	if name == "" {
		name = fallback
	}
	name = truncate(name, MaxSheetNameLength)

	if !n.used[name] {
		n.used[name] = true
		return name
	}

	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		candidate := truncate(name, MaxSheetNameLength-len(suffix)) + suffix
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

// truncate caps s at limit characters. The sheet name limit counts
// characters, not bytes, so cutting on runes keeps multi-byte names
// valid UTF-8.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// BuildPages partitions the long table into sheet pages of at most
// rowsPerSheet records each, preserving record order. In row-split mode
// pages are named Part1, Part2, ... In per-indicator mode each
// indicator's records are paginated independently in first-appearance
// order. An empty table still yields one empty page so the workbook has
// a header-only sheet.
func BuildPages(table *domain.LongTable, rowsPerSheet int, splitByIndicator bool) []SheetPage {
	namer := newSheetNamer()

	if !splitByIndicator || len(table.Indicators) == 0 {
		return rowSplitPages(table, rowsPerSheet, namer)
	}

	byIndicator := make(map[string][]int, len(table.Indicators))
	for i, rec := range table.Records {
		code := table.IndicatorID(rec)
		byIndicator[code] = append(byIndicator[code], i)
	}

	var pages []SheetPage
	for _, ind := range table.Indicators {
		rows := byIndicator[ind.Code]
		pageCount := (len(rows) + rowsPerSheet - 1) / rowsPerSheet

		if pageCount <= 1 {
			fallback := fmt.Sprintf("Sheet%d", len(pages)+1)
			pages = append(pages, SheetPage{
				Name: namer.Name(truncate(ind.Code, singleBaseLength), fallback),
				Rows: rows,
			})
			continue
		}

		for p := 0; p < pageCount; p++ {
			start := p * rowsPerSheet
			end := min(start+rowsPerSheet, len(rows))
			base := fmt.Sprintf("%s_p%d", truncate(ind.Code, partBaseLength), p+1)
			pages = append(pages, SheetPage{
				Name: namer.Name(base, fmt.Sprintf("Sheet%d", len(pages)+1)),
				Rows: rows[start:end],
			})
		}
	}

	return pages
}

// rowSplitPages paginates the whole table into contiguous PartN pages
func rowSplitPages(table *domain.LongTable, rowsPerSheet int, namer *sheetNamer) []SheetPage {
	total := len(table.Records)
	pageCount := (total + rowsPerSheet - 1) / rowsPerSheet
	if pageCount == 0 {
		pageCount = 1
	}

	pages := make([]SheetPage, 0, pageCount)
	for p := 0; p < pageCount; p++ {
		start := p * rowsPerSheet
		end := min(start+rowsPerSheet, total)
		rows := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, i)
		}
		base := fmt.Sprintf("Part%d", p+1)
		pages = append(pages, SheetPage{Name: namer.Name(base, base), Rows: rows})
	}

	return pages
}
