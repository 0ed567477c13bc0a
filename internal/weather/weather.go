// Package weather collects daily station observations and joins them onto
// the bike summary by date.
package weather

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jgoulah/bikestats/internal/logging"
	"github.com/jgoulah/bikestats/pkg/models"
)

// ErrNoDateColumn is returned for a weather file without a "date" header
var ErrNoDateColumn = errors.New("no date column")

// fieldSetters maps a weather column to the WeatherDay field it fills
var fieldSetters = map[string]func(*models.WeatherDay, string){
	"tavg": func(w *models.WeatherDay, v string) { w.TAvg = v },
	"tmin": func(w *models.WeatherDay, v string) { w.TMin = v },
	"tmax": func(w *models.WeatherDay, v string) { w.TMax = v },
	"prcp": func(w *models.WeatherDay, v string) { w.Prcp = v },
	"snow": func(w *models.WeatherDay, v string) { w.Snow = v },
	"wdir": func(w *models.WeatherDay, v string) { w.WDir = v },
	"wspd": func(w *models.WeatherDay, v string) { w.WSpd = v },
	"wpgt": func(w *models.WeatherDay, v string) { w.WPgt = v },
	"pres": func(w *models.WeatherDay, v string) { w.Pres = v },
	"tsun": func(w *models.WeatherDay, v string) { w.TSun = v },
}

// Collect reads every *.csv in dir and returns one record per date, with
// empty records for missing days between the first and last date. Files are
// read in lexical order and later rows win. Unreadable files are logged and
// skipped.
func Collect(ctx context.Context, dir string) (map[string]models.WeatherDay, error) {
	ll := logging.FromContext(ctx)

	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)
	ll.Info("Discovered weather files", slog.String("source", dir), slog.Int("files", len(paths)))

	days := make(map[string]models.WeatherDay)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := readFile(path, days)
		if err != nil {
			ll.Error("Skipping weather file", slog.String("path", path), slog.Any("error", err))
			continue
		}
		ll.Debug("Read weather file", slog.String("path", path), slog.Int("rows", n))
	}

	added, err := fillGaps(days)
	if err != nil {
		return nil, err
	}
	if added > 0 {
		ll.Info("Filled missing weather days", slog.Int("days", added))
	}
	return days, nil
}

func readFile(path string, days map[string]models.WeatherDay) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return readRows(f, days)
}

func readRows(r io.Reader, days map[string]models.WeatherDay) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading header: %w", err)
	}

	dateIdx := -1
	setters := make(map[int]func(*models.WeatherDay, string))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "date" {
			dateIdx = i
		} else if set, ok := fieldSetters[name]; ok {
			setters[i] = set
		}
	}
	if dateIdx < 0 {
		return 0, ErrNoDateColumn
	}

	n := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("reading row %d: %w", n+2, err)
		}
		if dateIdx >= len(row) {
			continue
		}
		date, _, _ := strings.Cut(strings.TrimSpace(row[dateIdx]), " ")
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			continue
		}

		var day models.WeatherDay
		for i, set := range setters {
			if i < len(row) {
				set(&day, strings.TrimSpace(row[i]))
			}
		}
		days[date] = day
		n++
	}
	return n, nil
}

func fillGaps(days map[string]models.WeatherDay) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	start, err := time.Parse(time.DateOnly, dates[0])
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", dates[0], err)
	}
	end, err := time.Parse(time.DateOnly, dates[len(dates)-1])
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", dates[len(dates)-1], err)
	}

	added := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		if _, ok := days[key]; !ok {
			days[key] = models.WeatherDay{}
			added++
		}
	}
	return added, nil
}

// Join attaches weather to every bike day. Bike dates drive the result;
// days without weather get empty weather fields.
func Join(bikes map[string]models.DailyMetric, weather map[string]models.WeatherDay) map[string]models.MergedDay {
	out := make(map[string]models.MergedDay, len(bikes))
	for date, metric := range bikes {
		out[date] = models.MergedDay{DailyMetric: metric, WeatherDay: weather[date]}
	}
	return out
}

// ReadJSON decodes a keyed JSON document written by one of the pipeline steps
func ReadJSON[V any](path string) (map[string]V, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out map[string]V
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if out == nil {
		out = make(map[string]V)
	}
	return out, nil
}
