package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barflow/barpar/internal/domain"
)

func TestFitLinearSeries(t *testing.T) {
	// A perfectly linear series has zero one-step-ahead error for every
	// coefficient pair, so the fitted state must extend the line exactly.
	model := New(Config{})
	require.NoError(t, model.Fit([]float64{100, 110, 120, 130}))

	forecast := model.Forecast(2)
	require.Len(t, forecast, 2)
	assert.InDelta(t, 140, forecast[0], 1e-6)
	assert.InDelta(t, 150, forecast[1], 1e-6)
}

func TestFitDeterministic(t *testing.T) {
	values := []float64{12, 9, 17, 4, 11, 15, 8}

	first := New(Config{})
	require.NoError(t, first.Fit(values))

	for i := 0; i < 5; i++ {
		again := New(Config{})
		require.NoError(t, again.Fit(values))
		assert.Equal(t, first.Params(), again.Params())
		assert.Equal(t, first.Forecast(4), again.Forecast(4))
	}
}

func TestFitSinglePointFlatForecast(t *testing.T) {
	model := New(Config{})
	require.NoError(t, model.Fit([]float64{42}))

	forecast := model.Forecast(3)
	assert.Equal(t, []float64{42, 42, 42}, forecast)
	assert.Equal(t, 0.0, model.Params().Trend)
}

func TestFitFixedCoefficients(t *testing.T) {
	model := New(Config{Alpha: 0.5, Beta: 0.5})
	require.NoError(t, model.Fit([]float64{10, 12, 14, 13}))

	params := model.Params()
	assert.Equal(t, 0.5, params.Alpha)
	assert.Equal(t, 0.5, params.Beta)
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty series", nil},
		{"NaN value", []float64{1, math.NaN(), 3}},
		{"positive infinity", []float64{1, math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Config{})
			err := model.Fit(tt.values)
			require.Error(t, err)

			var fitErr *FitError
			assert.ErrorAs(t, err, &fitErr)
		})
	}
}

func TestForecastBeforeFit(t *testing.T) {
	model := New(Config{})
	assert.Nil(t, model.Forecast(4))
}

func TestForecastSeries(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	series := domain.WeeklySeries{
		Key: domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"},
		Points: []domain.WeeklyPoint{
			{WeekStart: monday, Consumed: 100},
			{WeekStart: monday.AddDate(0, 0, 7), Consumed: 110},
			{WeekStart: monday.AddDate(0, 0, 14), Consumed: 120},
			{WeekStart: monday.AddDate(0, 0, 21), Consumed: 130},
		},
	}

	result, err := ForecastSeries(series, Config{}, 2)
	require.NoError(t, err)

	assert.Equal(t, series.Key, result.Key)
	require.Len(t, result.Points, 2)
	assert.Equal(t, monday.AddDate(0, 0, 28), result.Points[0].WeekStart)
	assert.Equal(t, monday.AddDate(0, 0, 35), result.Points[1].WeekStart)
	assert.InDelta(t, 140, result.Points[0].Value, 1e-6)
	assert.InDelta(t, 150, result.Points[1].Value, 1e-6)
}

func TestForecastSeriesFitErrorCarriesKey(t *testing.T) {
	series := domain.WeeklySeries{
		Key: domain.SeriesKey{Bar: "Rooftop", Brand: "Amaro"},
		Points: []domain.WeeklyPoint{
			{Consumed: math.NaN()},
			{Consumed: 5},
		},
	}

	_, err := ForecastSeries(series, Config{}, 2)
	require.Error(t, err)

	var fitErr *FitError
	require.ErrorAs(t, err, &fitErr)
	assert.Equal(t, series.Key, fitErr.Key)
}

func TestDecliningTrendGoesNegative(t *testing.T) {
	// Steep decline: the extrapolation is allowed to cross zero here. The
	// clamp is the recommender's job, not the model's.
	model := New(Config{})
	require.NoError(t, model.Fit([]float64{50, 40, 30, 20, 10}))

	forecast := model.Forecast(3)
	require.Len(t, forecast, 3)
	assert.Less(t, forecast[2], 0.0)
}
