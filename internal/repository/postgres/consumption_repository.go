package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/barflow/barpar/internal/domain"
)

// ConsumptionRepository persists and loads raw POS consumption records.
type ConsumptionRepository struct {
	db *DB
}

func NewConsumptionRepository(db *DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

// InsertBatch upserts a batch of consumption records inside one
// transaction. Re-importing the same export is idempotent.
func (r *ConsumptionRepository) InsertBatch(ctx context.Context, records []domain.ConsumptionRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO consumption_records (
				recorded_at, bar_name, brand_name,
				opening_balance, purchase, consumed, closing_balance,
				created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (recorded_at, bar_name, brand_name)
			DO UPDATE SET
				opening_balance = EXCLUDED.opening_balance,
				purchase = EXCLUDED.purchase,
				consumed = EXCLUDED.consumed,
				closing_balance = EXCLUDED.closing_balance
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.Timestamp, rec.BarName, rec.BrandName,
				rec.OpeningBalance, rec.Purchase, rec.Consumed, rec.ClosingBalance,
			); err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		return nil
	})
}

// LoadSince loads all records observed at or after the given time, oldest
// first.
func (r *ConsumptionRepository) LoadSince(ctx context.Context, since time.Time) ([]domain.ConsumptionRecord, error) {
	query := `
		SELECT recorded_at, bar_name, brand_name,
		       opening_balance, purchase, consumed, closing_balance
		FROM consumption_records
		WHERE recorded_at >= $1
		ORDER BY recorded_at
	`

	var records []domain.ConsumptionRecord
	if err := r.db.SelectContext(ctx, &records, query, since); err != nil {
		return nil, fmt.Errorf("failed to load consumption records: %w", err)
	}

	return records, nil
}

// LoadAll loads the full consumption history, oldest first.
func (r *ConsumptionRepository) LoadAll(ctx context.Context) ([]domain.ConsumptionRecord, error) {
	return r.LoadSince(ctx, time.Time{})
}

// LoadKey loads the history of one (bar, brand) key, oldest first.
func (r *ConsumptionRepository) LoadKey(ctx context.Context, key domain.SeriesKey) ([]domain.ConsumptionRecord, error) {
	query := `
		SELECT recorded_at, bar_name, brand_name,
		       opening_balance, purchase, consumed, closing_balance
		FROM consumption_records
		WHERE bar_name = $1 AND brand_name = $2
		ORDER BY recorded_at
	`

	var records []domain.ConsumptionRecord
	if err := r.db.SelectContext(ctx, &records, query, key.Bar, key.Brand); err != nil {
		return nil, fmt.Errorf("failed to load key history: %w", err)
	}

	return records, nil
}
