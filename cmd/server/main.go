package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/barflow/barpar/internal/api"
	"github.com/barflow/barpar/internal/cache"
	"github.com/barflow/barpar/internal/config"
	"github.com/barflow/barpar/internal/forecast"
	"github.com/barflow/barpar/internal/pipeline"
	"github.com/barflow/barpar/internal/repository/postgres"
	"github.com/barflow/barpar/internal/service"
	"github.com/barflow/barpar/internal/timeseries"
	"github.com/barflow/barpar/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	recCache, err := cache.NewRecommendationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		recCache = cache.NewNoopRecommendationCache()
	}

	consumptionRepo := postgres.NewConsumptionRepository(db)
	recommendationRepo := postgres.NewRecommendationRepository(db)
	runRepo := pipeline.NewRepository(db.DB.DB)

	pipelineCfg := pipeline.Config{
		SafetyStockRatio: cfg.Forecast.SafetyStockRatio,
		LeadTimeWeeks:    cfg.Forecast.LeadTimeWeeks,
		HorizonWeeks:     cfg.Forecast.HorizonWeeks,
		WeekAnchor:       cfg.Forecast.WeekAnchor,
		Alpha:            cfg.Forecast.Alpha,
		Beta:             cfg.Forecast.Beta,
		GridStep:         cfg.Forecast.GridStep,
		WorkerCount:      cfg.Forecast.WorkerCount,
		ReportDir:        cfg.App.ReportDir,
	}
	runner := pipeline.NewRunner(pipelineCfg, runRepo)

	forecastService := service.NewForecastService(recommendationRepo, recCache)
	runService := service.NewRunService(consumptionRepo, recommendationRepo, runner, runRepo, forecastService)
	seriesService := service.NewSeriesService(
		consumptionRepo,
		timeseries.NewAggregator(cfg.Forecast.WeekAnchor),
		forecast.Config{
			Alpha:    cfg.Forecast.Alpha,
			Beta:     cfg.Forecast.Beta,
			GridStep: cfg.Forecast.GridStep,
		},
		cfg.Forecast.HorizonWeeks,
	)

	var scheduler *cron.Cron
	if cfg.Scheduler.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Scheduler.CronSpec, func() {
			if _, err := runService.Trigger(context.Background()); err != nil {
				logger.Log.Error().Err(err).Msg("Scheduled forecast run failed")
			}
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Str("spec", cfg.Scheduler.CronSpec).Msg("Invalid scheduler cron spec")
		}
		scheduler.Start()
		logger.Log.Info().Str("spec", cfg.Scheduler.CronSpec).Msg("Forecast scheduler started")
	}

	router := api.NewRouter(&api.Services{
		ForecastService: forecastService,
		RunService:      runService,
		SeriesService:   seriesService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
