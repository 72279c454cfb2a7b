package recommend

import (
	"math"
	"time"

	"github.com/barflow/barpar/internal/domain"
)

// Recommender converts forecasts into par-level stocking advice.
type Recommender struct {
	safetyStockRatio float64
	leadTimeWeeks    int
}

func NewRecommender(safetyStockRatio float64, leadTimeWeeks int) *Recommender {
	if leadTimeWeeks < 1 {
		leadTimeWeeks = 1
	}
	return &Recommender{
		safetyStockRatio: safetyStockRatio,
		leadTimeWeeks:    leadTimeWeeks,
	}
}

// Recommend computes the stocking recommendation for one forecast:
//
//  1. Expected demand = sum of the first lead-time weeks of the forecast.
//     A declining trend can extrapolate below zero; a negative stocking
//     recommendation is physically meaningless, so demand clamps to 0.
//  2. Safety stock = expected demand x safety stock ratio.
//  3. Par level = expected demand + safety stock.
func (r *Recommender) Recommend(fc domain.ForecastResult) domain.Recommendation {
	weeks := r.leadTimeWeeks
	if weeks > len(fc.Points) {
		weeks = len(fc.Points)
	}

	var expectedDemand float64
	for _, p := range fc.Points[:weeks] {
		expectedDemand += p.Value
	}
	expectedDemand = math.Max(0, expectedDemand)

	safetyStock := expectedDemand * r.safetyStockRatio

	return domain.Recommendation{
		Bar:            fc.Key.Bar,
		Brand:          fc.Key.Brand,
		ExpectedDemand: expectedDemand,
		SafetyStock:    safetyStock,
		ParLevel:       expectedDemand + safetyStock,
		CreatedAt:      time.Now().UTC(),
	}
}
