package models

import (
	"math"
	"strconv"
)

// HoursPerDay is the number of hourly buckets in a day
const HoursPerDay = 24

// Seconds is a duration in seconds that always encodes as a JSON real
type Seconds float64

// MarshalJSON writes whole values with a trailing ".0" so consumers never see an integer
func (s Seconds) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("0.0"), nil
	}
	b := strconv.AppendFloat(nil, f, 'f', -1, 64)
	for _, c := range b {
		if c == '.' {
			return b, nil
		}
	}
	return append(b, '.', '0'), nil
}

// DailyMetric is the finalized summary for one calendar day
type DailyMetric struct {
	HourlyCounts     [HoursPerDay]int64   `json:"hourly_counts"`
	HourlyDurations  [HoursPerDay]Seconds `json:"hourly_durations"` // Per-hour average
	DailyCount       int64                `json:"daily_count"`
	DailyAvgDuration Seconds              `json:"daily_avg_dur"`
}
