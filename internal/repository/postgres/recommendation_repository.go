package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/barflow/barpar/internal/domain"
)

// RecommendationRepository persists per-run recommendations and accuracy
// reports and serves the API queries.
type RecommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// SaveRun stores a run's recommendations and accuracy reports in one
// transaction, replacing any previous values per key.
func (r *RecommendationRepository) SaveRun(ctx context.Context, runID string, recs []domain.Recommendation, reports []domain.AccuracyReport) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		recQuery := `
			INSERT INTO recommendations (
				run_id, bar_name, brand_name,
				expected_demand, safety_stock, par_level, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (bar_name, brand_name)
			DO UPDATE SET
				run_id = EXCLUDED.run_id,
				expected_demand = EXCLUDED.expected_demand,
				safety_stock = EXCLUDED.safety_stock,
				par_level = EXCLUDED.par_level,
				created_at = NOW()
		`

		recStmt, err := tx.PrepareContext(ctx, recQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare recommendation statement: %w", err)
		}
		defer recStmt.Close()

		for _, rec := range recs {
			if _, err := recStmt.ExecContext(ctx,
				runID, rec.Bar, rec.Brand,
				rec.ExpectedDemand, rec.SafetyStock, rec.ParLevel,
			); err != nil {
				return fmt.Errorf("failed to upsert recommendation for %s/%s: %w", rec.Bar, rec.Brand, err)
			}
		}

		accQuery := `
			INSERT INTO accuracy_reports (
				run_id, bar_name, brand_name, mae, points, created_at
			) VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (bar_name, brand_name)
			DO UPDATE SET
				run_id = EXCLUDED.run_id,
				mae = EXCLUDED.mae,
				points = EXCLUDED.points,
				created_at = NOW()
		`

		accStmt, err := tx.PrepareContext(ctx, accQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare accuracy statement: %w", err)
		}
		defer accStmt.Close()

		for _, report := range reports {
			if _, err := accStmt.ExecContext(ctx,
				runID, report.Bar, report.Brand, report.MAE, report.Points,
			); err != nil {
				return fmt.Errorf("failed to upsert accuracy for %s/%s: %w", report.Bar, report.Brand, err)
			}
		}

		return nil
	})
}

// GetRecommendations returns the latest recommendations matching the
// filter, paginated, with the total match count.
func (r *RecommendationRepository) GetRecommendations(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error) {
	where, args := buildFilter(filter)

	countQuery := "SELECT COUNT(*) FROM recommendations" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query := fmt.Sprintf(`
		SELECT bar_name, brand_name, expected_demand, safety_stock, par_level, created_at
		FROM recommendations%s
		ORDER BY bar_name, brand_name
		LIMIT %d OFFSET %d
	`, where, pageSize, (page-1)*pageSize)

	var recs []domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to load recommendations: %w", err)
	}

	return recs, total, nil
}

// GetSummary aggregates the latest recommendations per bar.
func (r *RecommendationRepository) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.RecommendationSummary, error) {
	where, args := buildFilter(filter)

	query := fmt.Sprintf(`
		SELECT bar_name, COUNT(*) AS brands, COALESCE(SUM(par_level), 0) AS total_par_level
		FROM recommendations%s
		GROUP BY bar_name
		ORDER BY bar_name
	`, where)

	var summaries []domain.RecommendationSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	return summaries, nil
}

// GetAccuracyReports returns the latest per-key MAE reports matching the
// filter.
func (r *RecommendationRepository) GetAccuracyReports(ctx context.Context, filter domain.RecommendationFilter) ([]domain.AccuracyReport, error) {
	where, args := buildFilter(filter)

	query := fmt.Sprintf(`
		SELECT bar_name, brand_name, mae, points
		FROM accuracy_reports%s
		ORDER BY bar_name, brand_name
	`, where)

	var reports []domain.AccuracyReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load accuracy reports: %w", err)
	}

	return reports, nil
}

// buildFilter renders the filter's bar/brand constraints as a WHERE clause
// with positional args.
func buildFilter(filter domain.RecommendationFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(filter.Bars) > 0 {
		placeholders := make([]string, len(filter.Bars))
		for i, bar := range filter.Bars {
			args = append(args, bar)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "bar_name IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Brands) > 0 {
		placeholders := make([]string, len(filter.Brands))
		for i, brand := range filter.Brands {
			args = append(args, brand)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "brand_name IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
