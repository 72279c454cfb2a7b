// Package timeseries turns raw consumption records into fixed-frequency
// weekly series, one per (bar, brand) key.
package timeseries

import (
	"sort"
	"time"

	"github.com/barflow/barpar/internal/domain"
)

const week = 7 * 24 * time.Hour

// Aggregator buckets records into calendar weeks anchored to a fixed
// weekday and zero-fills the gaps.
type Aggregator struct {
	anchor time.Weekday
}

func NewAggregator(anchor time.Weekday) *Aggregator {
	return &Aggregator{anchor: anchor}
}

// WeekStart returns the start of the week containing t: the most recent
// anchor weekday at midnight UTC.
func (a *Aggregator) WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(a.anchor) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// Aggregate sums consumed volume per (week, bar, brand) and resamples each
// key's buckets to a gapless weekly sequence spanning its first to last
// observed week. Input order does not matter; output is sorted by key so
// runs are deterministic.
func (a *Aggregator) Aggregate(records []domain.ConsumptionRecord) []domain.WeeklySeries {
	type span struct {
		totals      map[time.Time]float64
		first, last time.Time
	}

	byKey := make(map[domain.SeriesKey]*span)
	for _, rec := range records {
		key := domain.SeriesKey{Bar: rec.BarName, Brand: rec.BrandName}
		ws := a.WeekStart(rec.Timestamp)

		s, ok := byKey[key]
		if !ok {
			s = &span{totals: make(map[time.Time]float64), first: ws, last: ws}
			byKey[key] = s
		}
		s.totals[ws] += rec.Consumed
		if ws.Before(s.first) {
			s.first = ws
		}
		if ws.After(s.last) {
			s.last = ws
		}
	}

	series := make([]domain.WeeklySeries, 0, len(byKey))
	for key, s := range byKey {
		n := int(s.last.Sub(s.first)/week) + 1
		points := make([]domain.WeeklyPoint, 0, n)
		for ws := s.first; !ws.After(s.last); ws = ws.AddDate(0, 0, 7) {
			points = append(points, domain.WeeklyPoint{
				WeekStart: ws,
				Consumed:  s.totals[ws],
			})
		}
		series = append(series, domain.WeeklySeries{Key: key, Points: points})
	}

	sort.Slice(series, func(i, j int) bool {
		if series[i].Key.Bar != series[j].Key.Bar {
			return series[i].Key.Bar < series[j].Key.Bar
		}
		return series[i].Key.Brand < series[j].Key.Brand
	})

	return series
}
