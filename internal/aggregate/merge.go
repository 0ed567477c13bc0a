package aggregate

// Merger folds partial results into one set of days and global stats.
// The outcome does not depend on the order partials are added in.
type Merger struct {
	days   Days
	stats  GlobalStats
	failed []string
}

// NewMerger returns an empty Merger
func NewMerger() *Merger {
	return &Merger{days: make(Days)}
}

// Add merges one successful partial. p is not modified.
func (m *Merger) Add(p *Partial) {
	for date, acc := range p.Days {
		m.days.GetOrCreate(date).Merge(acc)
	}
	m.stats.add(p.Stats)
}

// Fail records a file that produced no partial
func (m *Merger) Fail(path string) {
	m.stats.FailedFiles++
	m.failed = append(m.failed, path)
}

// Days returns the merged accumulators
func (m *Merger) Days() Days {
	return m.days
}

// Stats returns the combined statistics
func (m *Merger) Stats() GlobalStats {
	return m.stats
}

// Failed returns the paths passed to Fail, in call order
func (m *Merger) Failed() []string {
	return m.failed
}
