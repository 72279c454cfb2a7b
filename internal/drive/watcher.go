package drive

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher polls a Drive folder and ingests new exports as they appear.
type Watcher struct {
	ingest   *IngestService
	folderID string
	interval time.Duration
}

func NewWatcher(ingest *IngestService, folderID string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Watcher{
		ingest:   ingest,
		folderID: folderID,
		interval: interval,
	}
}

// Run polls until the context is canceled. One failed sync does not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("drive watcher stopped")
			return
		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *Watcher) sync(ctx context.Context) {
	files, err := w.ingest.SyncFolder(ctx, w.folderID)
	if err != nil {
		log.Error().Err(err).Msg("drive sync failed")
		return
	}
	if files > 0 {
		log.Info().Int("files", files).Msg("drive sync ingested new exports")
	}
}
