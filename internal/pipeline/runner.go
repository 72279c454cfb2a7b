package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/evaluate"
	"github.com/barflow/barpar/internal/forecast"
	"github.com/barflow/barpar/internal/recommend"
	"github.com/barflow/barpar/internal/timeseries"
)

// Runner executes the aggregation -> forecast -> recommendation -> accuracy
// pipeline over a batch of consumption records.
type Runner struct {
	config      Config
	aggregator  *timeseries.Aggregator
	recommender *recommend.Recommender
	evaluator   *evaluate.Evaluator
	repo        *Repository // nil when running without a run ledger
}

// NewRunner creates a pipeline runner. repo may be nil; run tracking is
// then skipped entirely.
func NewRunner(cfg Config, repo *Repository) *Runner {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &Runner{
		config:      cfg,
		aggregator:  timeseries.NewAggregator(cfg.WeekAnchor),
		recommender: recommend.NewRecommender(cfg.SafetyStockRatio, cfg.LeadTimeWeeks),
		evaluator:   evaluate.NewEvaluator(cfg.HorizonWeeks),
		repo:        repo,
	}
}

// Run processes one batch of records. Keys whose series fail to fit are
// skipped and reported in Result.Skipped; everything else completes.
func (r *Runner) Run(ctx context.Context, records []domain.ConsumptionRecord) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no consumption records to process")
	}

	series := r.aggregator.Aggregate(records)

	result := &Result{
		RunID:   uuid.NewString(),
		Date:    time.Now().UTC(),
		Records: len(records),
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("records", len(records)).
		Int("keys", len(series)).
		Msg("starting forecast run")

	run, err := r.createRun(ctx, result, len(series))
	if err != nil {
		return nil, fmt.Errorf("failed to create run ledger entry: %w", err)
	}

	keyResults, skipped, err := r.processKeysParallel(ctx, series)
	if err != nil {
		r.failRun(ctx, run, err)
		return nil, err
	}
	result.Results = keyResults
	result.Skipped = skipped

	if err := r.completeRun(ctx, run, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("completed", len(keyResults)).
		Int("skipped", len(skipped)).
		Msg("forecast run finished")

	return result, nil
}

// processKeysParallel fans the series out over a bounded worker pool. Keys
// are fully independent, so each worker writes only to its own output slot
// and no locks are needed around the results.
func (r *Runner) processKeysParallel(ctx context.Context, series []domain.WeeklySeries) ([]KeyResult, []SkippedKey, error) {
	type slot struct {
		result KeyResult
		err    error
	}

	slots := make([]slot, len(series))
	indexChan := make(chan int, len(series))
	var wg sync.WaitGroup

	for w := 0; w < r.config.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				result, err := r.processKey(series[i])
				slots[i] = slot{result: result, err: err}
			}
		}()
	}

	for i := range series {
		select {
		case <-ctx.Done():
			close(indexChan)
			wg.Wait()
			return nil, nil, ctx.Err()
		case indexChan <- i:
		}
	}
	close(indexChan)
	wg.Wait()

	results := make([]KeyResult, 0, len(series))
	var skipped []SkippedKey
	for i, s := range slots {
		if s.err != nil {
			log.Warn().
				Str("bar", series[i].Key.Bar).
				Str("brand", series[i].Key.Brand).
				Err(s.err).
				Msg("skipping series")
			skipped = append(skipped, SkippedKey{Key: series[i].Key, Reason: s.err.Error()})
			continue
		}
		results = append(results, s.result)
	}

	return results, skipped, nil
}

// processKey runs one key's forecast -> recommendation -> accuracy chain.
func (r *Runner) processKey(series domain.WeeklySeries) (KeyResult, error) {
	fc, err := forecast.ForecastSeries(series, forecast.Config{
		Alpha:    r.config.Alpha,
		Beta:     r.config.Beta,
		GridStep: r.config.GridStep,
	}, r.config.HorizonWeeks)
	if err != nil {
		return KeyResult{}, err
	}

	return KeyResult{
		Series:         series,
		Forecast:       fc,
		Recommendation: r.recommender.Recommend(fc),
		Accuracy:       r.evaluator.Evaluate(series, fc),
	}, nil
}

func (r *Runner) createRun(ctx context.Context, result *Result, totalKeys int) (*ForecastRun, error) {
	if r.repo == nil {
		return nil, nil
	}

	run := &ForecastRun{
		RunID:        result.RunID,
		Date:         result.Date,
		Status:       StatusProcessing,
		TotalKeys:    totalKeys,
		TotalRecords: result.Records,
		StartedAt:    time.Now().UTC(),
	}
	if err := r.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *Runner) completeRun(ctx context.Context, run *ForecastRun, result *Result) error {
	if r.repo == nil || run == nil {
		return nil
	}

	now := time.Now().UTC()
	run.Status = StatusCompleted
	run.SkippedKeys = len(result.Skipped)
	run.CompletedAt = &now
	if err := r.repo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to complete run ledger entry: %w", err)
	}

	for _, kr := range result.Results {
		job := &KeyJob{
			ForecastRunID: run.ID,
			Bar:           kr.Series.Key.Bar,
			Brand:         kr.Series.Key.Brand,
			Status:        KeyStatusCompleted,
			ProcessedAt:   &now,
		}
		if err := r.repo.CreateKeyJob(ctx, job); err != nil {
			log.Warn().Err(err).Msg("failed to record key job")
		}
	}
	for _, sk := range result.Skipped {
		job := &KeyJob{
			ForecastRunID: run.ID,
			Bar:           sk.Key.Bar,
			Brand:         sk.Key.Brand,
			Status:        KeyStatusSkipped,
			ErrorMessage:  sk.Reason,
			ProcessedAt:   &now,
		}
		if err := r.repo.CreateKeyJob(ctx, job); err != nil {
			log.Warn().Err(err).Msg("failed to record skipped key job")
		}
	}

	return nil
}

func (r *Runner) failRun(ctx context.Context, run *ForecastRun, cause error) {
	if r.repo == nil || run == nil {
		return
	}

	now := time.Now().UTC()
	run.Status = StatusFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now
	if err := r.repo.UpdateRun(ctx, run); err != nil {
		log.Error().Err(err).Msg("failed to mark run as failed")
	}
}
