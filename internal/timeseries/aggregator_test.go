package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barflow/barpar/internal/domain"
)

func record(ts string, bar, brand string, consumed float64) domain.ConsumptionRecord {
	t, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		panic(err)
	}
	return domain.ConsumptionRecord{
		Timestamp: t,
		BarName:   bar,
		BrandName: brand,
		Consumed:  consumed,
	}
}

func TestWeekStart(t *testing.T) {
	agg := NewAggregator(time.Monday)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"monday maps to itself", "2025-01-06 00:00:00", "2025-01-06"},
		{"midweek maps back to monday", "2025-01-08 13:45:00", "2025-01-06"},
		{"sunday maps back six days", "2025-01-12 23:59:59", "2025-01-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := time.Parse("2006-01-02 15:04:05", tt.in)
			require.NoError(t, err)
			got := agg.WeekStart(in)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestWeekStartSundayAnchor(t *testing.T) {
	agg := NewAggregator(time.Sunday)

	in, err := time.Parse("2006-01-02", "2025-01-08")
	require.NoError(t, err)

	got := agg.WeekStart(in)
	assert.Equal(t, "2025-01-05", got.Format("2006-01-02"))
	assert.Equal(t, time.Sunday, got.Weekday())
}

func TestAggregateSumsWithinWeek(t *testing.T) {
	agg := NewAggregator(time.Monday)

	records := []domain.ConsumptionRecord{
		record("2025-01-06 18:00:00", "Lobby", "Negroni Gin", 2),
		record("2025-01-08 21:30:00", "Lobby", "Negroni Gin", 3),
		record("2025-01-12 23:00:00", "Lobby", "Negroni Gin", 1.5),
	}

	series := agg.Aggregate(records)
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 1)
	assert.Equal(t, 6.5, series[0].Points[0].Consumed)
}

func TestAggregateZeroFillsGaps(t *testing.T) {
	agg := NewAggregator(time.Monday)

	// Weeks of Jan 6 and Jan 27; Jan 13 and Jan 20 are silent.
	records := []domain.ConsumptionRecord{
		record("2025-01-07 19:00:00", "Lobby", "Mezcal", 4),
		record("2025-01-28 19:00:00", "Lobby", "Mezcal", 8),
	}

	series := agg.Aggregate(records)
	require.Len(t, series, 1)

	points := series[0].Points
	require.Len(t, points, 4)
	assert.Equal(t, []float64{4, 0, 0, 8}, series[0].Values())

	for i := 1; i < len(points); i++ {
		gap := points[i].WeekStart.Sub(points[i-1].WeekStart)
		assert.Equal(t, 7*24*time.Hour, gap)
	}
}

func TestAggregateSplitsKeys(t *testing.T) {
	agg := NewAggregator(time.Monday)

	records := []domain.ConsumptionRecord{
		record("2025-01-06 18:00:00", "Rooftop", "Mezcal", 1),
		record("2025-01-06 18:00:00", "Lobby", "Mezcal", 2),
		record("2025-01-06 18:00:00", "Lobby", "Negroni Gin", 3),
	}

	series := agg.Aggregate(records)
	require.Len(t, series, 3)

	// Output sorted by bar then brand.
	assert.Equal(t, domain.SeriesKey{Bar: "Lobby", Brand: "Mezcal"}, series[0].Key)
	assert.Equal(t, domain.SeriesKey{Bar: "Lobby", Brand: "Negroni Gin"}, series[1].Key)
	assert.Equal(t, domain.SeriesKey{Bar: "Rooftop", Brand: "Mezcal"}, series[2].Key)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := NewAggregator(time.Monday)
	assert.Empty(t, agg.Aggregate(nil))
}
