package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ImportRecord is one entry in the drive import ledger. Files already in
// the ledger are skipped on the next sync.
type ImportRecord struct {
	ID         int64     `db:"id"`
	FileID     string    `db:"file_id"`
	FileName   string    `db:"file_name"`
	Records    int       `db:"records"`
	ImportedAt time.Time `db:"imported_at"`
}

// ImportRepository tracks which remote export files have been ingested.
type ImportRepository struct {
	db *DB
}

func NewImportRepository(db *DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// IsImported reports whether the file has already been ingested.
func (r *ImportRepository) IsImported(ctx context.Context, fileID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM drive_imports WHERE file_id = $1`
	if err := r.db.GetContext(ctx, &count, query, fileID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check import ledger: %w", err)
	}
	return count > 0, nil
}

// MarkImported records a successful ingestion.
func (r *ImportRepository) MarkImported(ctx context.Context, fileID, fileName string, records int) error {
	query := `
		INSERT INTO drive_imports (file_id, file_name, records, imported_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (file_id)
		DO UPDATE SET file_name = EXCLUDED.file_name, records = EXCLUDED.records, imported_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, fileID, fileName, records); err != nil {
		return fmt.Errorf("failed to update import ledger: %w", err)
	}
	return nil
}

// ListImports returns the ledger, newest first.
func (r *ImportRepository) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, file_id, file_name, records, imported_at
		FROM drive_imports
		ORDER BY imported_at DESC
		LIMIT $1
	`
	var imports []ImportRecord
	if err := r.db.SelectContext(ctx, &imports, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return imports, nil
}
