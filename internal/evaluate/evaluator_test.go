package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barflow/barpar/internal/domain"
)

func seriesOf(values ...float64) domain.WeeklySeries {
	points := make([]domain.WeeklyPoint, len(values))
	for i, v := range values {
		points[i] = domain.WeeklyPoint{Consumed: v}
	}
	return domain.WeeklySeries{
		Key:    domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"},
		Points: points,
	}
}

func forecastOf(values ...float64) domain.ForecastResult {
	points := make([]domain.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = domain.ForecastPoint{Value: v}
	}
	return domain.ForecastResult{
		Key:    domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"},
		Points: points,
	}
}

func TestEvaluateMAE(t *testing.T) {
	e := NewEvaluator(3)

	report := e.Evaluate(seriesOf(100, 110, 120), forecastOf(95, 115, 118))

	assert.Equal(t, "Lobby", report.Bar)
	assert.Equal(t, "Mezcal", report.Brand)
	assert.Equal(t, 3, report.Points)
	assert.InDelta(t, 4.0, report.MAE, 1e-9)
}

func TestEvaluateShortSeries(t *testing.T) {
	// Horizon 4 but only 2 observed weeks: k clamps to 2 and compares the
	// last 2 actuals with the first 2 forecasts.
	e := NewEvaluator(4)

	report := e.Evaluate(seriesOf(10, 20), forecastOf(12, 25, 30, 35))

	assert.Equal(t, 2, report.Points)
	assert.InDelta(t, 3.5, report.MAE, 1e-9)
}

func TestEvaluateShortForecast(t *testing.T) {
	e := NewEvaluator(4)

	report := e.Evaluate(seriesOf(10, 20, 30, 40, 50), forecastOf(48, 52))

	assert.Equal(t, 2, report.Points)
	// last 2 actuals are 40, 50 -> errors 8, 2.
	assert.InDelta(t, 5.0, report.MAE, 1e-9)
}

func TestEvaluateEmptyForecast(t *testing.T) {
	e := NewEvaluator(4)

	report := e.Evaluate(seriesOf(10, 20), domain.ForecastResult{})

	assert.Equal(t, 0, report.Points)
	assert.Equal(t, 0.0, report.MAE)
}
