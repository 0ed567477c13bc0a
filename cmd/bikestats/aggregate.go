package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jgoulah/bikestats/internal/aggregate"
	"github.com/jgoulah/bikestats/internal/logging"
	"github.com/spf13/cobra"
)

var (
	aggregateSource      string
	aggregateOutput      string
	aggregateWorkers     int
	aggregateFileTimeout time.Duration
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Build the daily bike usage summary from trip CSV files",
	Long: `Reads every *.csv trip export in the source directory in parallel, buckets rides by
start date and hour, fills calendar gaps and writes the per-day summary as JSON.`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateSource, "source", "", "Directory of trip CSV files (default from config, ./unzip)")
	aggregateCmd.Flags().StringVar(&aggregateOutput, "output", "", "Summary JSON path (default from config, ./daily_bike_data.json)")
	aggregateCmd.Flags().IntVar(&aggregateWorkers, "workers", 0, "Parallel file workers (0 = one per CPU)")
	aggregateCmd.Flags().DurationVar(&aggregateFileTimeout, "file-timeout", 0, "Give up on a single file after this long (0 = never)")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	started := time.Now()
	fmt.Printf("=== Aggregate started at %s ===\n", started.Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	source := cfg.GetSourceDir()
	if aggregateSource != "" {
		source = aggregateSource
	}
	output := cfg.GetOutput()
	if aggregateOutput != "" {
		output = aggregateOutput
	}
	opts := aggregate.Options{Workers: cfg.Workers, FileTimeout: cfg.FileTimeout}
	if cmd.Flags().Changed("workers") {
		opts.Workers = aggregateWorkers
	}
	if cmd.Flags().Changed("file-timeout") {
		opts.FileTimeout = aggregateFileTimeout
	}

	ctx := cmd.Context()
	ll := logging.FromContext(ctx).With(slog.String("run_id", uuid.NewString()))
	ctx = logging.WithLogger(ctx, ll)

	metrics, stats, err := aggregate.Run(ctx, source, output, opts)
	if err != nil {
		return fmt.Errorf("aggregating %s: %w", source, err)
	}

	fmt.Printf("Files processed: %d (%d failed)\n", stats.Files, stats.FailedFiles)
	fmt.Printf("Records read:    %s (%s bad, %s accepted)\n",
		humanize.Comma(stats.TotalRecords), humanize.Comma(stats.BadRecords), humanize.Comma(stats.AcceptedRecords))
	if stats.AcceptedRecords > 0 {
		fmt.Printf("Date range:      %s to %s\n", stats.MinDate, stats.MaxDate)
		fmt.Printf("Duration range:  %ds to %ds\n", stats.MinDuration, stats.MaxDuration)
	}
	fmt.Printf("Wrote %d days to %s in %s\n", len(metrics), output, time.Since(started).Round(time.Millisecond))
	return nil
}
