package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wdicli/pkg/contracts/domain"
)

// WriteFile writes content to dir/name and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WideCSV is a small WDI-style wide dataset: two entities, two
// indicators, three year columns, with NA markers and one malformed
// cell mixed in.
const WideCSV = `Country Name,Country Code,Indicator Name,Indicator Code,2000,2001 [YR2001],2002
Aruba,ABW,Population,SP.POP.TOTL,90853,92898,94992
Aruba,ABW,GDP per capita,NY.GDP.PCAP.CD,20620.7,..,20434.9
Albania,ALB,Population,SP.POP.TOTL,3089027,3060173,3051010
Albania,ALB,GDP per capita,NY.GDP.PCAP.CD,not-a-number,1281.66,1425.12
`

// MetadataCSV is entity metadata for WideCSV. ALB appears twice to
// exercise the last-one-wins duplicate policy; ABW is intentionally
// absent so left-join behavior is observable.
const MetadataCSV = `Country Code,Region,Income Group
ALB,Europe & Central Asia,Upper middle income
XKX,Europe & Central Asia,Upper middle income
ALB,Europe & Central Asia,Lower middle income
`

// BuildLongTable produces a small in-memory long table without going
// through the reshape pass. n records are spread over two indicators.
func BuildLongTable(n int) *domain.LongTable {
	table := &domain.LongTable{
		IDColumns:        []string{"Country Code", "Indicator Code"},
		EntityIdx:        0,
		IndicatorIdx:     1,
		IndicatorNameIdx: -1,
	}

	codes := []string{"SP.POP.TOTL", "NY.GDP.PCAP.CD"}
	for i := 0; i < n; i++ {
		code := codes[i%len(codes)]
		table.Records = append(table.Records, domain.LongRecord{
			IDs:   []string{"ABW", code},
			Year:  2000 + i%25,
			Value: float64(i),
		})
	}
	table.Indicators = []domain.IndicatorDetail{
		{Code: codes[0], Name: "Population"},
		{Code: codes[1], Name: "GDP per capita"},
	}
	return table
}
