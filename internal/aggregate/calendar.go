package aggregate

import (
	"fmt"
	"time"
)

// FillCalendar makes sure every date in [minDate, maxDate] has an entry,
// inserting zero accumulators for missing days. It returns how many days
// were inserted. An empty bound means nothing was observed and is a no-op.
func FillCalendar(days Days, minDate, maxDate string) (int, error) {
	if minDate == "" || maxDate == "" {
		return 0, nil
	}
	start, err := time.Parse(time.DateOnly, minDate)
	if err != nil {
		return 0, fmt.Errorf("parsing start date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, maxDate)
	if err != nil {
		return 0, fmt.Errorf("parsing end date: %w", err)
	}

	added := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		if _, ok := days[key]; !ok {
			days.GetOrCreate(key)
			added++
		}
	}
	return added, nil
}
