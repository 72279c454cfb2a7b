// internal/domain/models.go
package domain

import "time"

// ConsumptionRecord is one POS transaction row. Records are read once per
// run and never mutated.
type ConsumptionRecord struct {
	Timestamp      time.Time `json:"timestamp" db:"recorded_at"`
	BarName        string    `json:"bar_name" db:"bar_name"`
	BrandName      string    `json:"brand_name" db:"brand_name"`
	OpeningBalance float64   `json:"opening_balance" db:"opening_balance"`
	Purchase       float64   `json:"purchase" db:"purchase"`
	Consumed       float64   `json:"consumed" db:"consumed"`
	ClosingBalance float64   `json:"closing_balance" db:"closing_balance"`
}

// SeriesKey identifies one forecastable (bar, brand) unit.
type SeriesKey struct {
	Bar   string `json:"bar" db:"bar_name"`
	Brand string `json:"brand" db:"brand_name"`
}

func (k SeriesKey) String() string {
	return k.Bar + "/" + k.Brand
}

// WeeklyPoint is one zero-filled weekly bucket of a series.
type WeeklyPoint struct {
	WeekStart time.Time `json:"week_start" db:"week_start"`
	Consumed  float64   `json:"consumed" db:"consumed"`
}

// WeeklySeries is the ordered weekly history of one key. Week starts are
// strictly increasing with no gaps; weeks without transactions appear with
// value 0.
type WeeklySeries struct {
	Key    SeriesKey     `json:"key"`
	Points []WeeklyPoint `json:"points"`
}

// Values returns the consumed volumes in week order.
func (s WeeklySeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Consumed
	}
	return out
}

// LastWeek returns the start date of the most recent observed week.
func (s WeeklySeries) LastWeek() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].WeekStart
}

// ForecastPoint is one predicted future weekly value. Values are not
// clamped here; the trend extrapolation may go negative.
type ForecastPoint struct {
	WeekStart time.Time `json:"week_start"`
	Value     float64   `json:"value"`
}

// ModelParams are the fitted Holt smoothing parameters and final state.
type ModelParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Level float64 `json:"level"`
	Trend float64 `json:"trend"`
	SSE   float64 `json:"sse"`
}

// ForecastResult is the fixed-horizon forecast for one key.
type ForecastResult struct {
	Key    SeriesKey       `json:"key"`
	Points []ForecastPoint `json:"points"`
	Params ModelParams     `json:"params"`
}

// Values returns the predicted volumes in week order.
func (r ForecastResult) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Value
	}
	return out
}

// Recommendation is the derived stocking advice for one key. ExpectedDemand
// is clamped to >= 0 before the buffer is applied.
type Recommendation struct {
	Bar            string    `json:"bar" db:"bar_name"`
	Brand          string    `json:"brand" db:"brand_name"`
	ExpectedDemand float64   `json:"expected_demand" db:"expected_demand"`
	SafetyStock    float64   `json:"safety_stock" db:"safety_stock"`
	ParLevel       float64   `json:"par_level" db:"par_level"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (r Recommendation) Key() SeriesKey {
	return SeriesKey{Bar: r.Bar, Brand: r.Brand}
}

// AccuracyReport is the per-key forecast error against trailing actuals.
type AccuracyReport struct {
	Bar    string  `json:"bar" db:"bar_name"`
	Brand  string  `json:"brand" db:"brand_name"`
	MAE    float64 `json:"mae" db:"mae"`
	Points int     `json:"points" db:"points"`
}

// RecommendationFilter narrows API queries.
type RecommendationFilter struct {
	Bars     []string `json:"bars"`
	Brands   []string `json:"brands"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// RecommendationSummary aggregates a run's recommendations per bar.
type RecommendationSummary struct {
	Bar           string  `json:"bar" db:"bar_name"`
	Brands        int     `json:"brands" db:"brands"`
	TotalParLevel float64 `json:"total_par_level" db:"total_par_level"`
}
