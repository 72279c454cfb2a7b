package drive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/ingest"
	"github.com/barflow/barpar/internal/repository/postgres"
)

// IngestService pulls POS consumption exports from Drive and loads them
// into Postgres. An import ledger keeps re-syncs idempotent at the file
// level; record upserts handle overlap inside files.
type IngestService struct {
	driveService *Service
	reader       *ingest.Reader
	consumption  *postgres.ConsumptionRepository
	imports      *postgres.ImportRepository
}

func NewIngestService(
	driveService *Service,
	consumption *postgres.ConsumptionRepository,
	imports *postgres.ImportRepository,
) *IngestService {
	return &IngestService{
		driveService: driveService,
		reader:       ingest.NewReader(),
		consumption:  consumption,
		imports:      imports,
	}
}

// IngestFile streams one Drive file through the CSV reader into the
// consumption table. Parse failures abort the whole file; nothing is
// written and the ledger is not updated.
func (s *IngestService) IngestFile(ctx context.Context, fileID, fileName string) (int, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.driveService.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	records, err := s.reader.Read(pr, fileName)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}

	if err := s.consumption.InsertBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store records from %s: %w", fileName, err)
	}

	if s.imports != nil {
		if err := s.imports.MarkImported(ctx, fileID, fileName, len(records)); err != nil {
			return 0, err
		}
	}

	return len(records), nil
}

// SyncFolder ingests every CSV in the folder that the ledger has not seen
// yet. Returns the number of files ingested.
func (s *IngestService) SyncFolder(ctx context.Context, folderID string) (int, error) {
	files, err := s.driveService.ListFiles(folderID)
	if err != nil {
		return 0, err
	}

	ingested := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return ingested, ctx.Err()
		default:
		}

		if strings.ToLower(filepath.Ext(f.Name)) != ".csv" {
			continue
		}

		if s.imports != nil {
			done, err := s.imports.IsImported(ctx, f.ID)
			if err != nil {
				return ingested, err
			}
			if done {
				continue
			}
		}

		count, err := s.IngestFile(ctx, f.ID, f.Name)
		if err != nil {
			return ingested, err
		}

		log.Info().
			Str("file", f.Name).
			Int("records", count).
			Msg("ingested drive export")
		ingested++
	}

	return ingested, nil
}
