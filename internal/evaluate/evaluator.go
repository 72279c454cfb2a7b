package evaluate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/barflow/barpar/internal/domain"
)

// Evaluator reports forecast accuracy as mean absolute error against the
// most recent observed weeks.
//
// The comparison is in-sample: the trailing actuals were part of the fit.
// That matches how the original workflow scored itself and is kept for
// behavioral parity; it flatters the error relative to a held-out split.
type Evaluator struct {
	horizon int
}

func NewEvaluator(horizon int) *Evaluator {
	if horizon < 1 {
		horizon = 1
	}
	return &Evaluator{horizon: horizon}
}

// Evaluate aligns the last k observed values with the first k forecast
// values, k = min(horizon, observed weeks), and averages |actual - forecast|.
func (e *Evaluator) Evaluate(series domain.WeeklySeries, fc domain.ForecastResult) domain.AccuracyReport {
	k := e.horizon
	if n := len(series.Points); k > n {
		k = n
	}
	if f := len(fc.Points); k > f {
		k = f
	}

	report := domain.AccuracyReport{
		Bar:    series.Key.Bar,
		Brand:  series.Key.Brand,
		Points: k,
	}
	if k == 0 {
		return report
	}

	actuals := series.Values()
	forecasts := fc.Values()
	absErrors := make([]float64, k)
	offset := len(actuals) - k
	for i := 0; i < k; i++ {
		absErrors[i] = math.Abs(actuals[offset+i] - forecasts[i])
	}

	report.MAE = stat.Mean(absErrors, nil)
	return report
}
