package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/barflow/barpar/internal/config"
	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/ingest"
	"github.com/barflow/barpar/internal/pipeline"
	"github.com/barflow/barpar/internal/repository/postgres"
	"github.com/barflow/barpar/internal/storage"
	"github.com/barflow/barpar/pkg/logger"
)

func pipelineConfig(cfg *config.Config, reportDir string) pipeline.Config {
	return pipeline.Config{
		SafetyStockRatio: cfg.Forecast.SafetyStockRatio,
		LeadTimeWeeks:    cfg.Forecast.LeadTimeWeeks,
		HorizonWeeks:     cfg.Forecast.HorizonWeeks,
		WeekAnchor:       cfg.Forecast.WeekAnchor,
		Alpha:            cfg.Forecast.Alpha,
		Beta:             cfg.Forecast.Beta,
		GridStep:         cfg.Forecast.GridStep,
		WorkerCount:      cfg.Forecast.WorkerCount,
		ReportDir:        reportDir,
	}
}

// runSeed imports every CSV export under data-dir into Postgres. A malformed
// file aborts the whole import; nothing is half-written.
func runSeed(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	records, err := ingest.NewReader().ReadDir(c.String("data-dir"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no consumption records found in %s", c.String("data-dir"))
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.NewConsumptionRepository(db).InsertBatch(c.Context, records); err != nil {
		return err
	}

	logger.Log.Info().Int("records", len(records)).Msg("import complete")
	return nil
}

// runForecast executes one full pipeline run and writes the CSV reports.
// With --from-db the history comes from Postgres and the run is recorded in
// the run ledger; otherwise it is a standalone file-based run.
func runForecast(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	var (
		records []domain.ConsumptionRecord
		repo    *pipeline.Repository
		err     error
	)

	if c.Bool("from-db") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		records, err = postgres.NewConsumptionRepository(db).LoadAll(c.Context)
		if err != nil {
			return err
		}
		repo = pipeline.NewRepository(db.DB.DB)
	} else {
		records, err = ingest.NewReader().ReadDir(c.String("data-dir"))
		if err != nil {
			return err
		}
	}

	runner := pipeline.NewRunner(pipelineConfig(cfg, c.String("report-dir")), repo)
	result, err := runner.Run(c.Context, records)
	if err != nil {
		return err
	}

	paths, err := pipeline.NewReportWriter(c.String("report-dir")).Write(result)
	if err != nil {
		return err
	}

	if c.Bool("archive") {
		if !cfg.Storage.Enabled {
			return fmt.Errorf("archive requested but storage is not configured")
		}
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return err
		}
		if err := client.EnsureBucket(c.Context); err != nil {
			return err
		}
		if err := pipeline.NewReportArchiver(client, "reports").Archive(c.Context, result, paths); err != nil {
			return err
		}
	}

	for _, sk := range result.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s / %s: %s\n", sk.Key.Bar, sk.Key.Brand, sk.Reason)
	}

	return nil
}

// runEvaluate prints the per-key accuracy table without persisting anything.
func runEvaluate(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	records, err := ingest.NewReader().ReadDir(c.String("data-dir"))
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pipelineConfig(cfg, ""), nil)
	result, err := runner.Run(c.Context, records)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BAR\tBRAND\tMAE\tPOINTS")
	for _, report := range result.AccuracyReports() {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", report.Bar, report.Brand, report.MAE, report.Points)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "%d keys skipped\n", len(result.Skipped))
	}

	return nil
}
