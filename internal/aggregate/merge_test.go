package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePartials() []*Partial {
	a := newPartial("a.csv")
	a.Days.GetOrCreate("2024-01-01").Add(8, 600)
	a.Days.GetOrCreate("2024-01-02").Add(9, 120)
	a.Stats = FileStats{MinDate: "2024-01-01", MaxDate: "2024-01-02", TotalRecords: 3, BadRecords: 1, AcceptedRecords: 2, MinDuration: 120, MaxDuration: 600}

	b := newPartial("b.csv")
	b.Days.GetOrCreate("2024-01-02").Add(9, 300)
	b.Days.GetOrCreate("2024-01-05").Add(23, 43200)
	b.Stats = FileStats{MinDate: "2024-01-02", MaxDate: "2024-01-05", TotalRecords: 2, AcceptedRecords: 2, MinDuration: 300, MaxDuration: 43200}

	// No accepted trips: its zero extrema must not leak into the global stats.
	c := newPartial("c.csv")
	c.Stats = FileStats{TotalRecords: 4, BadRecords: 4}

	d := newPartial("d.csv")
	d.Days.GetOrCreate("2023-12-31").Add(0, 7)
	d.Stats = FileStats{MinDate: "2023-12-31", MaxDate: "2023-12-31", TotalRecords: 1, AcceptedRecords: 1, MinDuration: 7, MaxDuration: 7}

	return []*Partial{a, b, c, d}
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := make([]int, 0, n)
			q = append(q, p[:i]...)
			q = append(q, n-1)
			q = append(q, p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestMerger_OrderIndependent(t *testing.T) {
	parts := samplePartials()

	reference := NewMerger()
	for _, p := range parts {
		reference.Add(p)
	}

	perms := permutations(len(parts))
	require.Len(t, perms, 24)
	for _, perm := range perms {
		m := NewMerger()
		for _, i := range perm {
			m.Add(parts[i])
		}
		assert.Equal(t, reference.Days(), m.Days(), "order %v", perm)
		assert.Equal(t, reference.Stats(), m.Stats(), "order %v", perm)
	}
}

func TestMerger_Values(t *testing.T) {
	m := NewMerger()
	for _, p := range samplePartials() {
		m.Add(p)
	}
	m.Fail("broken.csv")

	day := m.Days()["2024-01-02"]
	assert.Equal(t, int64(2), day.HourlyCounts[9])
	assert.Equal(t, 420.0, day.HourlyDurationSum[9])
	assert.Equal(t, int64(2), day.DailyCount)
	assert.Equal(t, 420.0, day.DailyDurationSum)

	stats := m.Stats()
	assert.Equal(t, "2023-12-31", stats.MinDate)
	assert.Equal(t, "2024-01-05", stats.MaxDate)
	assert.Equal(t, int64(10), stats.TotalRecords)
	assert.Equal(t, int64(5), stats.BadRecords)
	assert.Equal(t, int64(5), stats.AcceptedRecords)
	assert.Equal(t, int64(7), stats.MinDuration)
	assert.Equal(t, int64(43200), stats.MaxDuration)
	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, 1, stats.FailedFiles)
	assert.Equal(t, []string{"broken.csv"}, m.Failed())
}

func TestMerger_DoesNotModifyPartials(t *testing.T) {
	parts := samplePartials()
	m := NewMerger()
	m.Add(parts[0])
	m.Add(parts[1])

	assert.Equal(t, int64(1), parts[0].Days["2024-01-02"].DailyCount)
	assert.Equal(t, int64(1), parts[1].Days["2024-01-02"].DailyCount)
}
