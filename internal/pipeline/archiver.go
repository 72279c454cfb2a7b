package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/storage"
)

// ReportArchiver copies a run's CSV reports to object storage so they
// survive local disk rotation.
type ReportArchiver struct {
	store  storage.ObjectStorage
	prefix string
}

func NewReportArchiver(store storage.ObjectStorage, prefix string) *ReportArchiver {
	if prefix == "" {
		prefix = "reports"
	}
	return &ReportArchiver{store: store, prefix: prefix}
}

// Archive uploads the report files under <prefix>/<run date>/.
func (a *ReportArchiver) Archive(ctx context.Context, result *Result, paths []string) error {
	for _, path := range paths {
		key := fmt.Sprintf("%s/%s/%s", a.prefix, result.Date.Format("20060102"), filepath.Base(path))
		if err := a.store.UploadFile(ctx, key, path); err != nil {
			return fmt.Errorf("failed to archive %s: %w", path, err)
		}
		log.Info().Str("run_id", result.RunID).Str("key", key).Msg("archived run report")
	}
	return nil
}
