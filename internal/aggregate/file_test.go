package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/bikestats/internal/tripparse"
)

func TestAggregateFile_StartDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "Duration,Start date,End date\n600,01/15/2024 08:30,01/15/2024 08:40\n")

	p, err := AggregateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, tripparse.SchemaStartDuration, p.Schema)
	require.Contains(t, p.Days, "2024-01-15")
	acc := p.Days["2024-01-15"]
	assert.Equal(t, int64(1), acc.HourlyCounts[8])
	assert.Equal(t, 600.0, acc.HourlyDurationSum[8])
	assert.Equal(t, int64(1), acc.DailyCount)
	assert.Equal(t, FileStats{
		MinDate: "2024-01-15", MaxDate: "2024-01-15",
		TotalRecords: 1, AcceptedRecords: 1,
		MinDuration: 600, MaxDuration: 600,
	}, p.Stats)
}

func TestAggregateFile_StartEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "b.csv", "ride_id,started_at,ended_at\n"+
		"r1,2024-03-01T10:00:00,2024-03-01T10:05:30\n"+
		"r2,2024-03-02 07:00:00.250,2024-03-02 07:01:00\n")

	p, err := AggregateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, tripparse.SchemaStartEnd, p.Schema)
	assert.Equal(t, int64(1), p.Days["2024-03-01"].HourlyCounts[10])
	assert.Equal(t, 330.0, p.Days["2024-03-01"].HourlyDurationSum[10])
	assert.Equal(t, 59.0, p.Days["2024-03-02"].HourlyDurationSum[7])
	assert.Equal(t, "2024-03-01", p.Stats.MinDate)
	assert.Equal(t, "2024-03-02", p.Stats.MaxDate)
	assert.Equal(t, int64(59), p.Stats.MinDuration)
	assert.Equal(t, int64(330), p.Stats.MaxDuration)
}

func TestAggregateFile_OutOfRangeOnlyRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.csv", "Start date,Duration\n2024/01/15 08:30,50000\n")

	p, err := AggregateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, p.Days)
	assert.Equal(t, int64(1), p.Stats.TotalRecords)
	assert.Equal(t, int64(1), p.Stats.BadRecords)
	assert.Equal(t, int64(0), p.Stats.AcceptedRecords)
	assert.Empty(t, p.Stats.MinDate)
	assert.Empty(t, p.Stats.MaxDate)
}

func TestAggregateFile_BadRowsDoNotStopFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "d.csv", "Start date,Duration\n"+
		"2024/01/15 08:30,abc\n"+
		"2024/01/15\n"+
		"not a date,60\n"+
		"2024/01/15 09:00,-5\n"+
		"2024/01/15 09:00,120\n"+
		"2024/01/16 23:10,43200\n")

	p, err := AggregateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(6), p.Stats.TotalRecords)
	assert.Equal(t, int64(4), p.Stats.BadRecords)
	assert.Equal(t, int64(2), p.Stats.AcceptedRecords)
	assert.Equal(t, int64(1), p.Days["2024-01-15"].HourlyCounts[9])
	assert.Equal(t, int64(1), p.Days["2024-01-16"].HourlyCounts[23])
	assert.Equal(t, int64(43200), p.Stats.MaxDuration)
	assert.Equal(t, int64(120), p.Stats.MinDuration)
}

func TestAggregateFile_UnsupportedHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "e.csv", "tripduration,starttime\n600,2024-01-01 00:00:00\n")

	p, err := AggregateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, tripparse.SchemaUnknown, p.Schema)
	assert.Empty(t, p.Days)
	assert.Equal(t, FileStats{}, p.Stats)
}

func TestAggregateFile_EmptyAndHeaderOnly(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{
		"empty.csv":  "",
		"header.csv": "started_at,ended_at\n",
	} {
		t.Run(name, func(t *testing.T) {
			p, err := AggregateFile(context.Background(), writeFile(t, dir, name, content))
			require.NoError(t, err)
			assert.Empty(t, p.Days)
			assert.Empty(t, p.Stats.MinDate)
			assert.Zero(t, p.Stats.TotalRecords)
		})
	}
}

func TestAggregateFile_MissingFile(t *testing.T) {
	_, err := AggregateFile(context.Background(), "/does/not/exist.csv")
	assert.Error(t, err)
}

func TestAggregateFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.csv", "Start date,Duration\n2024/01/15 08:30,60\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
