// Package forecast implements additive Holt exponential smoothing (level +
// trend, no seasonal component) for weekly consumption series.
//
// The recursions are the classical ones:
//
//	Level: L_t = alpha*Y_t + (1-alpha)*(L_{t-1} + T_{t-1})
//	Trend: T_t = beta*(L_t - L_{t-1}) + (1-beta)*T_{t-1}
//
// Forecast for step h beyond the last observation: L_n + h*T_n.
package forecast

import (
	"fmt"
	"math"

	"github.com/barflow/barpar/internal/domain"
)

// FitError marks a series that cannot be modeled. The caller skips the key
// and continues with the rest of the run.
type FitError struct {
	Key    domain.SeriesKey
	Reason string
}

func (e *FitError) Error() string {
	return fmt.Sprintf("cannot fit model for %s: %s", e.Key, e.Reason)
}

// Config controls the smoothing fit. Zero Alpha/Beta means estimate them
// from the data by minimizing in-sample one-step-ahead squared error over a
// GridStep-spaced grid of the unit square.
type Config struct {
	Alpha    float64
	Beta     float64
	GridStep float64
}

const defaultGridStep = 0.05

// Model is a fitted Holt smoother for one series.
type Model struct {
	cfg    Config
	params domain.ModelParams
	fitted bool
}

func New(cfg Config) *Model {
	if cfg.GridStep <= 0 || cfg.GridStep > 1 {
		cfg.GridStep = defaultGridStep
	}
	return &Model{cfg: cfg}
}

// Fit estimates the smoothing coefficients and runs the recursion over the
// observed values. The fit is deterministic: the same series always yields
// the same parameters.
//
// A single-point series cannot support a trend estimate; the declared
// fallback is trend = 0, so the forecast extrapolates flat from the one
// observation.
func (m *Model) Fit(values []float64) error {
	if len(values) == 0 {
		return &FitError{Reason: "empty series"}
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FitError{Reason: fmt.Sprintf("non-finite value %v in series", v)}
		}
	}

	if len(values) == 1 {
		m.params = domain.ModelParams{Alpha: 1, Beta: 0, Level: values[0], Trend: 0}
		m.fitted = true
		return nil
	}

	alpha, beta := m.cfg.Alpha, m.cfg.Beta
	if alpha == 0 || beta == 0 {
		alpha, beta = m.optimize(values)
	}

	level, trend, sse := run(values, alpha, beta)
	if math.IsNaN(level) || math.IsNaN(trend) {
		return &FitError{Reason: "smoothing recursion diverged"}
	}

	m.params = domain.ModelParams{Alpha: alpha, Beta: beta, Level: level, Trend: trend, SSE: sse}
	m.fitted = true
	return nil
}

// Forecast returns h future values extrapolated from the fitted state.
func (m *Model) Forecast(h int) []float64 {
	if !m.fitted || h < 1 {
		return nil
	}
	out := make([]float64, h)
	for i := 1; i <= h; i++ {
		out[i-1] = m.params.Level + float64(i)*m.params.Trend
	}
	return out
}

// Params returns the fitted parameters and final state.
func (m *Model) Params() domain.ModelParams {
	return m.params
}

// optimize grid-searches the unit square for the coefficient pair with the
// lowest one-step-ahead SSE. Ties keep the first (lowest) pair, which makes
// the search order part of the contract.
func (m *Model) optimize(values []float64) (bestAlpha, bestBeta float64) {
	step := m.cfg.GridStep
	bestAlpha, bestBeta = step, 0.0
	bestSSE := math.MaxFloat64

	for alpha := step; alpha <= 1.0+1e-9; alpha += step {
		for beta := 0.0; beta <= 1.0+1e-9; beta += step {
			_, _, sse := run(values, alpha, beta)
			if sse < bestSSE {
				bestSSE = sse
				bestAlpha = alpha
				bestBeta = beta
			}
		}
	}

	return bestAlpha, bestBeta
}

// run executes the Holt recursion over the series, returning the final
// level, trend, and the accumulated one-step-ahead squared error.
//
// Initial state follows the standard convention: L_1 = v_1 and
// T_1 = v_2 - v_1.
func run(values []float64, alpha, beta float64) (level, trend, sse float64) {
	level = values[0]
	trend = values[1] - values[0]

	for t := 1; t < len(values); t++ {
		oneStep := level + trend
		err := values[t] - oneStep
		sse += err * err

		prevLevel := level
		level = alpha*values[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	return level, trend, sse
}

// ForecastSeries fits a model to one weekly series and produces the H-week
// forecast with dates continuing the weekly ticks after the last observed
// week.
func ForecastSeries(series domain.WeeklySeries, cfg Config, horizon int) (domain.ForecastResult, error) {
	model := New(cfg)
	if err := model.Fit(series.Values()); err != nil {
		if fitErr, ok := err.(*FitError); ok {
			fitErr.Key = series.Key
		}
		return domain.ForecastResult{}, err
	}

	values := model.Forecast(horizon)
	points := make([]domain.ForecastPoint, len(values))
	last := series.LastWeek()
	for i, v := range values {
		points[i] = domain.ForecastPoint{
			WeekStart: last.AddDate(0, 0, 7*(i+1)),
			Value:     v,
		}
	}

	return domain.ForecastResult{
		Key:    series.Key,
		Points: points,
		Params: model.Params(),
	}, nil
}
