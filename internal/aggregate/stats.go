package aggregate

// FileStats describes one processed file.
// MinDuration and MaxDuration are only meaningful when AcceptedRecords > 0.
type FileStats struct {
	MinDate         string // empty when no trip was accepted
	MaxDate         string
	TotalRecords    int64
	BadRecords      int64
	AcceptedRecords int64
	MinDuration     int64
	MaxDuration     int64
}

func (s *FileStats) observe(date string, duration int64) {
	if s.AcceptedRecords == 0 {
		s.MinDate, s.MaxDate = date, date
		s.MinDuration, s.MaxDuration = duration, duration
	} else {
		s.MinDate = min(s.MinDate, date)
		s.MaxDate = max(s.MaxDate, date)
		s.MinDuration = min(s.MinDuration, duration)
		s.MaxDuration = max(s.MaxDuration, duration)
	}
	s.AcceptedRecords++
}

// GlobalStats combines FileStats across a whole run
type GlobalStats struct {
	FileStats
	Files       int
	FailedFiles int
}

func (g *GlobalStats) add(s FileStats) {
	g.Files++
	g.TotalRecords += s.TotalRecords
	g.BadRecords += s.BadRecords

	if s.MinDate != "" && (g.MinDate == "" || s.MinDate < g.MinDate) {
		g.MinDate = s.MinDate
	}
	if s.MaxDate != "" && (g.MaxDate == "" || s.MaxDate > g.MaxDate) {
		g.MaxDate = s.MaxDate
	}

	if s.AcceptedRecords > 0 {
		if g.AcceptedRecords == 0 {
			g.MinDuration, g.MaxDuration = s.MinDuration, s.MaxDuration
		} else {
			g.MinDuration = min(g.MinDuration, s.MinDuration)
			g.MaxDuration = max(g.MaxDuration, s.MaxDuration)
		}
		g.AcceptedRecords += s.AcceptedRecords
	}
}
