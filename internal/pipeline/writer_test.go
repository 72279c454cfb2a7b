package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barflow/barpar/internal/domain"
)

func sampleResult() *Result {
	return &Result{
		RunID: "test-run",
		Date:  time.Date(2025, 2, 3, 4, 0, 0, 0, time.UTC),
		Results: []KeyResult{
			{
				Series: domain.WeeklySeries{Key: domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"}},
				Recommendation: domain.Recommendation{
					Bar: "Lobby", Brand: "Mezcal",
					ExpectedDemand: 140, SafetyStock: 21, ParLevel: 161,
				},
				Accuracy: domain.AccuracyReport{
					Bar: "Lobby", Brand: "Mezcal", MAE: 4.0, Points: 3,
				},
			},
		},
	}
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	writer := NewReportWriter(dir)

	paths, err := writer.Write(sampleResult())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	recPath := filepath.Join(dir, "20250203", "recommendations.csv")
	assert.Equal(t, recPath, paths[0])

	file, err := os.Open(recPath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"bar", "brand", "expected_demand", "safety_stock", "par_level"}, rows[0])
	assert.Equal(t, []string{"Lobby", "Mezcal", "140.00", "21.00", "161.00"}, rows[1])
}

func TestWriteAccuracyReport(t *testing.T) {
	dir := t.TempDir()
	writer := NewReportWriter(dir)

	paths, err := writer.Write(sampleResult())
	require.NoError(t, err)

	file, err := os.Open(paths[1])
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"bar", "brand", "mae", "points"}, rows[0])
	assert.Equal(t, []string{"Lobby", "Mezcal", "4.00", "3"}, rows[1])
}
