package dataprocessing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wdicli/internal/errors"
	"wdicli/internal/shared/testutil"
)

func TestReadTable(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "main.csv",
		" Country Code , Indicator Code ,2000,2001\nABW,SP.POP.TOTL,90853\nALB,NY.GDP.PCAP.CD,1126.68,1281.66,extra\n")

	table, err := ReadTable(context.Background(), path)
	require.NoError(t, err)

	// Header cells are trimmed
	assert.Equal(t, []string{"Country Code", "Indicator Code", "2000", "2001"}, table.Columns)

	// Ragged rows are padded or truncated to the header width
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"ABW", "SP.POP.TOTL", "90853", ""}, table.Rows[0])
	assert.Equal(t, []string{"ALB", "NY.GDP.PCAP.CD", "1126.68", "1281.66"}, table.Rows[1])
}

func TestReadTableStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "bom.csv", "\xEF\xBB\xBFCountry Code,2000\nABW,1\n")

	table, err := ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Country Code", table.Columns[0])
}

func TestReadTableMissingFile(t *testing.T) {
	err := func() error {
		_, err := ReadTable(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
		return err
	}()

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInputNotFound))
	assert.Equal(t, 3, apperrors.ExitCode(err))
}

func TestReadTableEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "empty.csv", "")

	_, err := ReadTable(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInputUnreadable))
}

func TestReadTableEncodingFallback(t *testing.T) {
	dir := t.TempDir()
	// "Côte d'Ivoire" with 0xF4 (ô) is invalid UTF-8 and decodes via
	// windows-1252
	path := testutil.WriteFile(t, dir, "cp1252.csv", "Country Name,2000\nC\xF4te d'Ivoire,1\n")

	table, err := ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Côte d'Ivoire", table.Rows[0][0])
}

func TestDecodeBytes(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		expected    string
		expectedEnc string
		expectError bool
	}{
		{
			name:        "plain ascii",
			input:       []byte("abc"),
			expected:    "abc",
			expectedEnc: "utf-8",
		},
		{
			name:        "valid utf-8 multibyte",
			input:       []byte("Côte"),
			expected:    "Côte",
			expectedEnc: "utf-8",
		},
		{
			name:        "utf-8 with BOM",
			input:       []byte("\xEF\xBB\xBFabc"),
			expected:    "abc",
			expectedEnc: "utf-8",
		},
		{
			name:        "windows-1252 e acute",
			input:       []byte("caf\xE9"),
			expected:    "café",
			expectedEnc: "windows-1252",
		},
		{
			name:        "windows-1252 smart quotes",
			input:       []byte("\x93quoted\x94"),
			expected:    "“quoted”",
			expectedEnc: "windows-1252",
		},
		{
			name:        "byte undefined in windows-1252 falls through to latin-1",
			input:       []byte("a\x81b"),
			expected:    "a\u0081b",
			expectedEnc: "latin-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, enc, err := decodeBytes(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decoded)
			assert.Equal(t, tt.expectedEnc, enc)
		})
	}
}
