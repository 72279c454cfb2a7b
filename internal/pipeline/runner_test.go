package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barflow/barpar/internal/domain"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WorkerCount = 2
	return cfg
}

func weeklyRecords(bar, brand string, weeklyConsumed ...float64) []domain.ConsumptionRecord {
	start := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	records := make([]domain.ConsumptionRecord, len(weeklyConsumed))
	for i, v := range weeklyConsumed {
		records[i] = domain.ConsumptionRecord{
			Timestamp: start.AddDate(0, 0, 7*i),
			BarName:   bar,
			BrandName: brand,
			Consumed:  v,
		}
	}
	return records
}

func TestRunProducesRecommendationPerKey(t *testing.T) {
	runner := NewRunner(testConfig(), nil)

	var records []domain.ConsumptionRecord
	records = append(records, weeklyRecords("Lobby", "Mezcal", 100, 110, 120, 130)...)
	records = append(records, weeklyRecords("Rooftop", "Negroni Gin", 10, 10, 10, 10)...)

	result, err := runner.Run(context.Background(), records)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 8, result.Records)
	require.Len(t, result.Results, 2)
	assert.Empty(t, result.Skipped)

	recs := result.Recommendations()
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.ExpectedDemand, 0.0)
		assert.InDelta(t, rec.ExpectedDemand+rec.SafetyStock, rec.ParLevel, 1e-9)
	}

	// Linear series: one lead-time week of demand is 140.
	var lobby *domain.Recommendation
	for i := range recs {
		if recs[i].Bar == "Lobby" {
			lobby = &recs[i]
		}
	}
	require.NotNil(t, lobby)
	assert.InDelta(t, 140, lobby.ExpectedDemand, 1e-6)
	assert.InDelta(t, 161, lobby.ParLevel, 1e-6)
}

func TestRunSkipsBadSeriesAndContinues(t *testing.T) {
	runner := NewRunner(testConfig(), nil)

	records := weeklyRecords("Lobby", "Mezcal", 100, 110, 120, 130)
	records = append(records, domain.ConsumptionRecord{
		Timestamp: time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC),
		BarName:   "Rooftop",
		BrandName: "Corrupted",
		Consumed:  math.NaN(),
	})

	result, err := runner.Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "Lobby", result.Results[0].Series.Key.Bar)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, domain.SeriesKey{Bar: "Rooftop", Brand: "Corrupted"}, result.Skipped[0].Key)
	assert.NotEmpty(t, result.Skipped[0].Reason)
}

func TestRunEmptyInput(t *testing.T) {
	runner := NewRunner(testConfig(), nil)

	_, err := runner.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunCanceledContext(t *testing.T) {
	runner := NewRunner(testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, weeklyRecords("Lobby", "Mezcal", 1, 2, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	records := append(
		weeklyRecords("Lobby", "Mezcal", 7, 13, 4, 19, 11),
		weeklyRecords("Rooftop", "Amaro", 3, 0, 5, 2, 8)...,
	)

	first, err := NewRunner(testConfig(), nil).Run(context.Background(), records)
	require.NoError(t, err)

	second, err := NewRunner(testConfig(), nil).Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Forecast.Params, second.Results[i].Forecast.Params)
		assert.Equal(t, first.Results[i].Recommendation.ParLevel, second.Results[i].Recommendation.ParLevel)
		assert.Equal(t, first.Results[i].Accuracy.MAE, second.Results[i].Accuracy.MAE)
	}
}
