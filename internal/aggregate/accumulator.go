// Package aggregate builds the per-day trip summary from a directory of
// bike-share CSV files.
//
// Each file is reduced to a Partial by exactly one worker. Partials are
// folded together by a Merger in whatever order they complete; every merge
// is a field-wise sum so the order does not matter. The merged days are then
// padded to a gap-free calendar and finalized into averages.
package aggregate

import "github.com/jgoulah/bikestats/pkg/models"

// DayAccumulator holds running sums for one calendar day.
// DailyCount always equals the sum of HourlyCounts and DailyDurationSum the
// sum of HourlyDurationSum; fields only ever grow.
type DayAccumulator struct {
	HourlyCounts      [models.HoursPerDay]int64
	HourlyDurationSum [models.HoursPerDay]float64
	DailyCount        int64
	DailyDurationSum  float64
}

// Add records one trip starting in the given hour
func (a *DayAccumulator) Add(hour int, duration int64) {
	d := float64(duration)
	a.HourlyCounts[hour]++
	a.HourlyDurationSum[hour] += d
	a.DailyCount++
	a.DailyDurationSum += d
}

// Merge adds every field of b into a
func (a *DayAccumulator) Merge(b *DayAccumulator) {
	for h := range a.HourlyCounts {
		a.HourlyCounts[h] += b.HourlyCounts[h]
		a.HourlyDurationSum[h] += b.HourlyDurationSum[h]
	}
	a.DailyCount += b.DailyCount
	a.DailyDurationSum += b.DailyDurationSum
}

// Days maps an ISO date (YYYY-MM-DD) to its accumulator
type Days map[string]*DayAccumulator

// GetOrCreate returns the accumulator for date, inserting a zero one if absent
func (d Days) GetOrCreate(date string) *DayAccumulator {
	acc, ok := d[date]
	if !ok {
		acc = &DayAccumulator{}
		d[date] = acc
	}
	return acc
}
