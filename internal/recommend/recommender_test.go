package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barflow/barpar/internal/domain"
)

func forecastFor(values ...float64) domain.ForecastResult {
	points := make([]domain.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = domain.ForecastPoint{Value: v}
	}
	return domain.ForecastResult{
		Key:    domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"},
		Points: points,
	}
}

func TestRecommend(t *testing.T) {
	r := NewRecommender(0.15, 1)

	rec := r.Recommend(forecastFor(140, 150, 160, 170))

	assert.Equal(t, "Lobby", rec.Bar)
	assert.Equal(t, "Mezcal", rec.Brand)
	assert.InDelta(t, 140, rec.ExpectedDemand, 1e-9)
	assert.InDelta(t, 21, rec.SafetyStock, 1e-9)
	assert.InDelta(t, 161, rec.ParLevel, 1e-9)
}

func TestRecommendMultiWeekLeadTime(t *testing.T) {
	r := NewRecommender(0.15, 2)

	rec := r.Recommend(forecastFor(100, 50, 999))

	assert.InDelta(t, 150, rec.ExpectedDemand, 1e-9)
	assert.InDelta(t, 172.5, rec.ParLevel, 1e-9)
}

func TestRecommendClampsNegativeDemand(t *testing.T) {
	r := NewRecommender(0.15, 1)

	rec := r.Recommend(forecastFor(-30, -40))

	assert.Equal(t, 0.0, rec.ExpectedDemand)
	assert.Equal(t, 0.0, rec.SafetyStock)
	assert.Equal(t, 0.0, rec.ParLevel)
}

func TestRecommendLeadTimeBeyondHorizon(t *testing.T) {
	r := NewRecommender(0.15, 10)

	rec := r.Recommend(forecastFor(10, 20))

	assert.InDelta(t, 30, rec.ExpectedDemand, 1e-9)
}

func TestRecommendInvariant(t *testing.T) {
	r := NewRecommender(0.2, 1)

	rec := r.Recommend(forecastFor(80))

	assert.InDelta(t, rec.ExpectedDemand+rec.SafetyStock, rec.ParLevel, 1e-9)
	assert.InDelta(t, rec.ExpectedDemand*0.2, rec.SafetyStock, 1e-9)
	assert.GreaterOrEqual(t, rec.ExpectedDemand, 0.0)
}
