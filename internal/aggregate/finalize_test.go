package aggregate

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/bikestats/pkg/models"
)

func TestFinalize_Averages(t *testing.T) {
	days := make(Days)
	acc := days.GetOrCreate("2024-01-15")
	acc.Add(8, 600)
	acc.Add(8, 301)
	acc.Add(17, 100)
	days.GetOrCreate("2024-01-16")

	out := Finalize(days)
	require.Len(t, out, 2)

	m := out["2024-01-15"]
	assert.Equal(t, int64(2), m.HourlyCounts[8])
	assert.Equal(t, models.Seconds(450.5), m.HourlyDurations[8])
	assert.Equal(t, models.Seconds(100), m.HourlyDurations[17])
	assert.Equal(t, models.Seconds(0), m.HourlyDurations[0])
	assert.Equal(t, int64(3), m.DailyCount)
	assert.InDelta(t, 1001.0/3, float64(m.DailyAvgDuration), 1e-9)

	assert.Equal(t, models.DailyMetric{}, out["2024-01-16"])
}

func TestFinalize_Consistency(t *testing.T) {
	days := make(Days)
	for i := 0; i < 100; i++ {
		days.GetOrCreate("2024-06-01").Add(i%24, int64(i*37%43201))
	}
	acc := days["2024-06-01"]

	m := Finalize(days)["2024-06-01"]
	var total int64
	for h := range m.HourlyCounts {
		total += m.HourlyCounts[h]
		if m.HourlyCounts[h] > 0 {
			assert.InDelta(t, acc.HourlyDurationSum[h], math.Round(float64(m.HourlyDurations[h])*float64(m.HourlyCounts[h])), 1e-6)
		}
	}
	assert.Equal(t, m.DailyCount, total)
	assert.InDelta(t, acc.DailyDurationSum, math.Round(float64(m.DailyAvgDuration)*float64(m.DailyCount)), 1e-6)
}

func TestWriteJSON_Format(t *testing.T) {
	days := make(Days)
	days.GetOrCreate("2024-01-15").Add(8, 600)
	days.GetOrCreate("2024-01-14")

	path := filepath.Join(t.TempDir(), "out", "daily.json")
	require.NoError(t, WriteJSON(path, Finalize(days)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "{\n    \"2024-01-14\": {\n        \"hourly_counts\": ["))
	assert.Less(t, strings.Index(text, "2024-01-14"), strings.Index(text, "2024-01-15"))
	assert.Contains(t, text, "\"daily_avg_dur\": 600.0")
	assert.Contains(t, text, "\"daily_avg_dur\": 0.0")
	assert.True(t, strings.HasSuffix(text, "}\n"))

	field := func(s string) int { return strings.Index(text, s) }
	assert.Less(t, field("hourly_counts"), field("hourly_durations"))
	assert.Less(t, field("hourly_durations"), field("daily_count"))
	assert.Less(t, field("daily_count"), field("daily_avg_dur"))

	var decoded map[string]models.DailyMetric
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, models.Seconds(600), decoded["2024-01-15"].HourlyDurations[8])
}

func TestWriteJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(path, Finalize(make(Days))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
