package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"wdicli/pkg/contracts/domain"
)

// formatFloat formats a float value with up to 6 decimal places, removing trailing zeros
func formatFloat(f float64) string {
	formatted := fmt.Sprintf("%.6f", f)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")
	return formatted
}

// formatYear formats a year as a plain integer
func formatYear(y int) string {
	return strconv.Itoa(y)
}

// recordStrings renders one long record as output cells in header order.
// Missing values become empty cells. Attribute cells are padded when the
// record carries fewer values than the merged attribute columns.
func recordStrings(table *domain.LongTable, rec domain.LongRecord) []string {
	cells := make([]string, 0, len(table.IDColumns)+2+len(table.AttrColumns))
	cells = append(cells, rec.IDs...)
	cells = append(cells, formatYear(rec.Year))
	if rec.Missing {
		cells = append(cells, "")
	} else {
		cells = append(cells, formatFloat(rec.Value))
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
