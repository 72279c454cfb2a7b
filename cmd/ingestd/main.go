package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/barflow/barpar/internal/config"
	"github.com/barflow/barpar/internal/drive"
	"github.com/barflow/barpar/internal/repository/postgres"
	"github.com/barflow/barpar/pkg/logger"
)

// ingestd pulls POS consumption exports from Google Drive into Postgres,
// both on a poll interval and on demand over HTTP.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	consumptionRepo := postgres.NewConsumptionRepository(db)
	importRepo := postgres.NewImportRepository(db)
	ingestService := drive.NewIngestService(driveService, consumptionRepo, importRepo)

	r := mux.NewRouter()

	driveHandler := drive.NewHandler(driveService, ingestService)
	driveHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Drive.FolderPath != "" {
		folderID, err := driveService.FindFolderByPath(cfg.Drive.FolderPath)
		if err != nil {
			log.Fatalf("Failed to resolve drive folder %s: %v", cfg.Drive.FolderPath, err)
		}
		watcher := drive.NewWatcher(ingestService, folderID, cfg.Drive.PollInterval)
		go watcher.Run(ctx)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Log.Info().Str("addr", addr).Msg("ingestd starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("ingestd failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Log.Error().Err(err).Msg("ingestd shutdown failed")
	}
	logger.Log.Info().Msg("ingestd exiting")
}
