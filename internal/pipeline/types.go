package pipeline

import (
	"time"

	"github.com/barflow/barpar/internal/domain"
)

// Config holds the knobs for one forecasting run.
type Config struct {
	SafetyStockRatio float64
	LeadTimeWeeks    int
	HorizonWeeks     int
	WeekAnchor       time.Weekday
	Alpha            float64 // 0 = estimate from data
	Beta             float64 // 0 = estimate from data
	GridStep         float64
	WorkerCount      int // concurrent per-key workers
	ReportDir        string
}

// DefaultConfig returns sensible defaults matching the documented
// forecasting constants.
func DefaultConfig() Config {
	return Config{
		SafetyStockRatio: 0.15,
		LeadTimeWeeks:    1,
		HorizonWeeks:     4,
		WeekAnchor:       time.Monday,
		GridStep:         0.05,
		WorkerCount:      4,
		ReportDir:        "data/reports",
	}
}

// RunStatus represents the state of a forecast run.
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// KeyJobStatus represents the state of a single (bar, brand) key within a
// run.
type KeyJobStatus string

const (
	KeyStatusQueued    KeyJobStatus = "queued"
	KeyStatusCompleted KeyJobStatus = "completed"
	KeyStatusSkipped   KeyJobStatus = "skipped"
)

// ForecastRun tracks one execution of the forecasting pipeline.
type ForecastRun struct {
	ID           int64
	RunID        string // UUID, stable across ledger and report archive
	Date         time.Time
	Status       RunStatus
	TotalKeys    int
	SkippedKeys  int
	TotalRecords int
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}

// KeyJob tracks the processing of a single series key within a run.
type KeyJob struct {
	ID            int64
	ForecastRunID int64
	Bar           string
	Brand         string
	Status        KeyJobStatus
	ErrorMessage  string
	ProcessedAt   *time.Time
}

// KeyResult is the full output for one key.
type KeyResult struct {
	Series         domain.WeeklySeries
	Forecast       domain.ForecastResult
	Recommendation domain.Recommendation
	Accuracy       domain.AccuracyReport
}

// SkippedKey records a key whose series failed to fit.
type SkippedKey struct {
	Key    domain.SeriesKey
	Reason string
}

// Result is the complete output of one run. Skipped keys do not appear in
// Results; a bad series never aborts the rest of the run.
type Result struct {
	RunID   string
	Date    time.Time
	Records int
	Results []KeyResult
	Skipped []SkippedKey
}

// Recommendations returns the run's recommendations in key order.
func (r *Result) Recommendations() []domain.Recommendation {
	out := make([]domain.Recommendation, len(r.Results))
	for i, kr := range r.Results {
		out[i] = kr.Recommendation
	}
	return out
}

// AccuracyReports returns the run's per-key MAE reports in key order.
func (r *Result) AccuracyReports() []domain.AccuracyReport {
	out := make([]domain.AccuracyReport, len(r.Results))
	for i, kr := range r.Results {
		out[i] = kr.Accuracy
	}
	return out
}
