package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/bikestats/internal/logging"
	"github.com/jgoulah/bikestats/pkg/models"
)

// Options tune a pipeline run
type Options struct {
	Workers     int           // <= 0 uses DefaultWorkers
	FileTimeout time.Duration // <= 0 disables the per-file watchdog
}

// Run aggregates every trip file in sourceFolder, writes the per-day summary
// to outputPath and returns it. Files that fail are logged and left out.
// An empty or unusable input produces an empty summary, not an error.
func Run(ctx context.Context, sourceFolder, outputPath string, opts Options) (map[string]models.DailyMetric, GlobalStats, error) {
	ll := logging.FromContext(ctx)

	info, err := os.Stat(sourceFolder)
	if err != nil {
		return nil, GlobalStats{}, fmt.Errorf("reading source folder: %w", err)
	}
	if !info.IsDir() {
		return nil, GlobalStats{}, fmt.Errorf("source %s is not a directory", sourceFolder)
	}

	paths, err := Discover(sourceFolder)
	if err != nil {
		return nil, GlobalStats{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	ll.Info("Discovered trip files",
		slog.String("source", sourceFolder),
		slog.Int("files", len(paths)),
		slog.Int("workers", workers))

	merger := NewMerger()
	for res := range Dispatch(ctx, paths, workers, opts.FileTimeout) {
		if res.Err != nil {
			ll.Error("File failed, excluding it from the summary",
				slog.String("path", res.Path),
				slog.Any("error", res.Err))
			merger.Fail(res.Path)
			continue
		}
		merger.Add(res.Partial)
	}
	if err := ctx.Err(); err != nil {
		return nil, GlobalStats{}, fmt.Errorf("aggregation interrupted: %w", err)
	}

	stats := merger.Stats()
	ll.Info("Merged partial results",
		slog.Int("files", stats.Files),
		slog.Int("failedFiles", stats.FailedFiles),
		slog.String("total", humanize.Comma(stats.TotalRecords)),
		slog.String("bad", humanize.Comma(stats.BadRecords)),
		slog.Int64("maxDuration", stats.MaxDuration),
		slog.Int64("minDuration", stats.MinDuration),
		slog.String("minDate", stats.MinDate),
		slog.String("maxDate", stats.MaxDate))

	days := merger.Days()
	added, err := FillCalendar(days, stats.MinDate, stats.MaxDate)
	if err != nil {
		return nil, stats, err
	}
	if added > 0 {
		ll.Info("Filled empty days", slog.Int("days", added))
	}
	if len(days) == 0 {
		ll.Warn("No trips found, writing an empty summary", slog.String("source", sourceFolder))
	}

	metrics := Finalize(days)
	if err := WriteJSON(outputPath, metrics); err != nil {
		return nil, stats, err
	}
	ll.Info("Wrote daily summary", slog.String("output", outputPath), slog.Int("days", len(metrics)))

	return metrics, stats, nil
}
