package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jgoulah/bikestats/pkg/models"
)

// Finalize converts accumulators into per-day averages
func Finalize(days Days) map[string]models.DailyMetric {
	out := make(map[string]models.DailyMetric, len(days))
	for date, acc := range days {
		out[date] = finalizeDay(acc)
	}
	return out
}

func finalizeDay(acc *DayAccumulator) models.DailyMetric {
	m := models.DailyMetric{
		HourlyCounts: acc.HourlyCounts,
		DailyCount:   acc.DailyCount,
	}
	for h, n := range acc.HourlyCounts {
		if n > 0 {
			m.HourlyDurations[h] = models.Seconds(acc.HourlyDurationSum[h] / float64(n))
		}
	}
	if acc.DailyCount > 0 {
		m.DailyAvgDuration = models.Seconds(acc.DailyDurationSum / float64(acc.DailyCount))
	}
	return m
}

// SortedDates returns the keys of metrics in ascending date order
func SortedDates[V any](metrics map[string]V) []string {
	dates := make([]string, 0, len(metrics))
	for d := range metrics {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// WriteJSON writes v as indented JSON to path. Map keys are emitted in
// sorted order so identical input produces identical bytes. The file is
// written to a temporary name first and renamed into place.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
