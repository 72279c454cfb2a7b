package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ReportWriter persists a run's outputs as CSV reports under a per-date
// directory, consumable by any external reporting layer.
type ReportWriter struct {
	dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Write emits recommendations.csv and accuracy.csv for the run and returns
// the written paths.
func (w *ReportWriter) Write(result *Result) ([]string, error) {
	outDir := filepath.Join(w.dir, result.Date.Format("20060102"))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	recPath := filepath.Join(outDir, "recommendations.csv")
	if err := w.writeRecommendations(recPath, result); err != nil {
		return nil, err
	}

	accPath := filepath.Join(outDir, "accuracy.csv")
	if err := w.writeAccuracy(accPath, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("dir", outDir).
		Int("rows", len(result.Results)).
		Msg("wrote run reports")

	return []string{recPath, accPath}, nil
}

func (w *ReportWriter) writeRecommendations(path string, result *Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"bar", "brand", "expected_demand", "safety_stock", "par_level"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range result.Recommendations() {
		row := []string{
			rec.Bar,
			rec.Brand,
			formatFloat(rec.ExpectedDemand),
			formatFloat(rec.SafetyStock),
			formatFloat(rec.ParLevel),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func (w *ReportWriter) writeAccuracy(path string, result *Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"bar", "brand", "mae", "points"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, report := range result.AccuracyReports() {
		row := []string{
			report.Bar,
			report.Brand,
			formatFloat(report.MAE),
			strconv.Itoa(report.Points),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
