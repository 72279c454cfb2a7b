package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `timestamp,bar_name,brand_name,opening_balance,purchase,consumed,closing_balance
2025-01-06 18:30:00,Lobby,Negroni Gin,10,0,1.5,8.5
2025-01-07 21:00:00,Rooftop,Mezcal,5,2,0.5,6.5
`

func TestReadSampleExport(t *testing.T) {
	records, err := NewReader().Read(strings.NewReader(sampleExport), "sample.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Lobby", first.BarName)
	assert.Equal(t, "Negroni Gin", first.BrandName)
	assert.Equal(t, 1.5, first.Consumed)
	assert.Equal(t, 10.0, first.OpeningBalance)
	assert.Equal(t, 8.5, first.ClosingBalance)
	assert.Equal(t, 2025, first.Timestamp.Year())
}

func TestReadHeaderVariants(t *testing.T) {
	// Exports rename and reorder columns; mapping is by normalized header.
	input := `Brand,Consumed Volume,Date,Bar
Mezcal,2.5,2025-01-06,Lobby
`
	records, err := NewReader().Read(strings.NewReader(input), "variant.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Lobby", records[0].BarName)
	assert.Equal(t, "Mezcal", records[0].BrandName)
	assert.Equal(t, 2.5, records[0].Consumed)
}

func TestReadMissingRequiredColumn(t *testing.T) {
	input := `timestamp,bar_name,opening_balance
2025-01-06,Lobby,10
`
	_, err := NewReader().Read(strings.NewReader(input), "broken.csv")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken.csv", parseErr.File)
	assert.Equal(t, 1, parseErr.Line)
}

func TestReadMalformedTimestamp(t *testing.T) {
	input := `timestamp,bar_name,brand_name,consumed
not-a-date,Lobby,Mezcal,1
`
	_, err := NewReader().Read(strings.NewReader(input), "bad_ts.csv")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
}

func TestReadNegativeConsumed(t *testing.T) {
	input := `timestamp,bar_name,brand_name,consumed
2025-01-06,Lobby,Mezcal,-3
`
	_, err := NewReader().Read(strings.NewReader(input), "negative.csv")
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestReadEmptyBarName(t *testing.T) {
	input := `timestamp,bar_name,brand_name,consumed
2025-01-06,,Mezcal,3
`
	_, err := NewReader().Read(strings.NewReader(input), "empty_bar.csv")
	require.Error(t, err)
}

func TestReadLenientBalances(t *testing.T) {
	input := `timestamp,bar_name,brand_name,consumed,opening_balance,closing_balance
2025-01-06,Lobby,Mezcal,3,,garbage
`
	records, err := NewReader().Read(strings.NewReader(input), "lenient.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].OpeningBalance)
	assert.Equal(t, 0.0, records[0].ClosingBalance)
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte(sampleExport), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte(sampleExport), 0644))

	records, err := NewReader().ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestReadDirEmpty(t *testing.T) {
	_, err := NewReader().ReadDir(t.TempDir())
	assert.Error(t, err)
}
