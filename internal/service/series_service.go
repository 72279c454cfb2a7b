package service

import (
	"context"
	"fmt"

	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/forecast"
	"github.com/barflow/barpar/internal/repository/postgres"
	"github.com/barflow/barpar/internal/timeseries"
)

// SeriesService exposes one key's weekly history and on-demand forecast for
// inspection, bypassing the batch pipeline.
type SeriesService struct {
	consumption *postgres.ConsumptionRepository
	aggregator  *timeseries.Aggregator
	forecastCfg forecast.Config
	horizon     int
}

func NewSeriesService(
	consumption *postgres.ConsumptionRepository,
	aggregator *timeseries.Aggregator,
	forecastCfg forecast.Config,
	horizon int,
) *SeriesService {
	if horizon < 1 {
		horizon = 4
	}
	return &SeriesService{
		consumption: consumption,
		aggregator:  aggregator,
		forecastCfg: forecastCfg,
		horizon:     horizon,
	}
}

// SeriesDetail bundles a key's observed weekly series with its forecast.
// Forecast is nil when the model could not be fitted; FitError carries the
// reason.
type SeriesDetail struct {
	Series   domain.WeeklySeries    `json:"series"`
	Forecast *domain.ForecastResult `json:"forecast,omitempty"`
	FitError string                 `json:"fit_error,omitempty"`
}

// ErrSeriesNotFound is returned when the key has no consumption history.
var ErrSeriesNotFound = fmt.Errorf("no consumption history for key")

// GetSeries loads the key's history, aggregates it to weekly buckets, and
// fits a fresh forecast.
func (s *SeriesService) GetSeries(ctx context.Context, key domain.SeriesKey) (*SeriesDetail, error) {
	records, err := s.consumption.LoadKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrSeriesNotFound
	}

	series := s.aggregator.Aggregate(records)
	if len(series) == 0 {
		return nil, ErrSeriesNotFound
	}

	detail := &SeriesDetail{Series: series[0]}

	result, err := forecast.ForecastSeries(series[0], s.forecastCfg, s.horizon)
	if err != nil {
		detail.FitError = err.Error()
		return detail, nil
	}
	detail.Forecast = &result

	return detail, nil
}
