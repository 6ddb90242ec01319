package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
)

// sheetSummary describes one sheet of a workbook
type sheetSummary struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

func main() {
	file := flag.String("file", "", "workbook to inspect (.xlsx)")
	asJSON := flag.Bool("json", false, "emit machine-readable JSON instead of a table")
	flag.Parse()

	// Allow the workbook as a bare positional argument too
	if *file == "" && flag.NArg() > 0 {
		*file = flag.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: sheetinfo [-json] -file <workbook.xlsx>")
		os.Exit(2)
	}

	summaries, err := inspectWorkbook(*file)
	if err != nil {
		slog.Error("Failed to inspect workbook",
			slog.String("file", *file),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := render(os.Stdout, summaries, *asJSON); err != nil {
		slog.Error("Failed to render output", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// inspectWorkbook opens a workbook and summarizes each sheet: row count
// and the width of its widest row
func inspectWorkbook(path string) ([]sheetSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var summaries []sheetSummary
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		columns := 0
		for _, row := range rows {
			if len(row) > columns {
				columns = len(row)
			}
		}

		summaries = append(summaries, sheetSummary{
			Name:    sheet,
			Rows:    len(rows),
			Columns: columns,
		})
	}

	return summaries, nil
}

// render writes the summaries as an ASCII table or as JSON
func render(w io.Writer, summaries []sheetSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Sheet", "Rows", "Columns"})
	t.SetAutoFormatHeaders(false)
	for _, s := range summaries {
		t.Append([]string{s.Name, strconv.Itoa(s.Rows), strconv.Itoa(s.Columns)})
	}
	t.Render()

	return nil
}
