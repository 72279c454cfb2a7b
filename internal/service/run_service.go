package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/pipeline"
	"github.com/barflow/barpar/internal/repository/postgres"
)

// RunService triggers forecast pipeline runs over the stored consumption
// history and persists their outputs. At most one run executes at a time.
type RunService struct {
	consumption *postgres.ConsumptionRepository
	results     *postgres.RecommendationRepository
	runner      *pipeline.Runner
	runs        *pipeline.Repository
	forecasts   *ForecastService

	mu      sync.Mutex
	running bool
}

func NewRunService(
	consumption *postgres.ConsumptionRepository,
	results *postgres.RecommendationRepository,
	runner *pipeline.Runner,
	runs *pipeline.Repository,
	forecasts *ForecastService,
) *RunService {
	return &RunService{
		consumption: consumption,
		results:     results,
		runner:      runner,
		runs:        runs,
		forecasts:   forecasts,
	}
}

// ErrRunInProgress is returned when a trigger arrives while a run is
// already executing.
var ErrRunInProgress = fmt.Errorf("a forecast run is already in progress")

// Trigger executes a full pipeline run: load history, fit and recommend
// per key, persist outputs, invalidate caches.
func (s *RunService) Trigger(ctx context.Context) (*pipeline.Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	records, err := s.consumption.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption history: %w", err)
	}

	result, err := s.runner.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	if err := s.results.SaveRun(ctx, result.RunID, result.Recommendations(), result.AccuracyReports()); err != nil {
		return nil, fmt.Errorf("failed to persist run outputs: %w", err)
	}

	if s.forecasts != nil {
		s.forecasts.InvalidateCache(ctx)
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("keys", len(result.Results)).
		Int("skipped", len(result.Skipped)).
		Msg("forecast run completed")

	return result, nil
}

// LatestRun returns the most recent run's ledger entry, or nil when no run
// has happened yet.
func (s *RunService) LatestRun(ctx context.Context) (*pipeline.ForecastRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.GetLatestRun(ctx)
}

// SkippedKeys returns the keys the given run skipped, with reasons.
func (s *RunService) SkippedKeys(ctx context.Context, runID int64) ([]*pipeline.KeyJob, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.GetSkippedKeyJobs(ctx, runID)
}
