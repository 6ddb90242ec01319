package exporter

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"wdicli/pkg/contracts/domain"
)

// PreviewRows is the number of records shown after a successful export
const PreviewRows = 15

// WritePreview renders the first PreviewRows records of the long table
// as an ASCII table. Informational only; errors rendering it do not
// affect the pipeline outcome.
func WritePreview(w io.Writer, table *domain.LongTable) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(table.Header())
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)

	n := len(table.Records)
	if n > PreviewRows {
		n = PreviewRows
	}
	for _, rec := range table.Records[:n] {
		t.Append(recordStrings(table, rec))
	}

	t.Render()
}
