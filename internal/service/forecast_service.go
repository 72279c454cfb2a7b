package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/cache"
	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/repository/postgres"
)

// ForecastService serves recommendations and accuracy reports produced by
// pipeline runs, with a read-through cache in front of Postgres.
type ForecastService struct {
	repo  *postgres.RecommendationRepository
	cache cache.RecommendationCache
}

func NewForecastService(repo *postgres.RecommendationRepository, cacheImpl cache.RecommendationCache) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecommendationCache()
	}
	return &ForecastService{repo: repo, cache: cacheImpl}
}

func (s *ForecastService) GetRecommendations(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error) {
	if recs, total, ok, err := s.cache.GetList(ctx, filter); err == nil && ok {
		return recs, total, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("recommendations: cache get failed")
	}

	recs, total, err := s.repo.GetRecommendations(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.SetList(ctx, filter, recs, total); err != nil {
		log.Warn().Err(err).Msg("recommendations: cache set failed")
	}

	return recs, total, nil
}

func (s *ForecastService) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.RecommendationSummary, error) {
	if summaries, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("recommendations: cache get summary failed")
	}

	summaries, err := s.repo.GetSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, filter, summaries); err != nil {
		log.Warn().Err(err).Msg("recommendations: cache set summary failed")
	}

	return summaries, nil
}

func (s *ForecastService) GetAccuracyReports(ctx context.Context, filter domain.RecommendationFilter) ([]domain.AccuracyReport, error) {
	return s.repo.GetAccuracyReports(ctx, filter)
}

// InvalidateCache drops all cached query results. Called after a pipeline
// run replaces the stored recommendations.
func (s *ForecastService) InvalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("recommendations: cache invalidation failed")
	}
}
