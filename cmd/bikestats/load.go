package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/bikestats/internal/weather"
	"github.com/jgoulah/bikestats/pkg/models"
	"github.com/spf13/cobra"
)

var (
	loadInput     string
	loadChunkSize int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load merged daily data into the SQLite database",
	Long:  `Reads the merged JSON file and replaces the stored row for each date, committing in chunks. Replaced days are queued for publishing again.`,
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadInput, "input", "", "Merged JSON path (default from config, ./merged_data.json)")
	loadCmd.Flags().IntVar(&loadChunkSize, "chunk-size", 0, "Rows per transaction (default from config, 5000)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	input := cfg.GetMergedOutput()
	if loadInput != "" {
		input = loadInput
	}
	chunkSize := cfg.GetLoadChunkSize()
	if loadChunkSize > 0 {
		chunkSize = loadChunkSize
	}

	days, err := weather.ReadJSON[models.MergedDay](input)
	if err != nil {
		return fmt.Errorf("reading merged data: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Loading %s days from %s...\n", humanize.Comma(int64(len(days))), input)
	loaded, err := db.LoadDays(days, chunkSize, func(n int) {
		fmt.Printf("  committed %s/%s\n", humanize.Comma(int64(n)), humanize.Comma(int64(len(days))))
	})
	if err != nil {
		return fmt.Errorf("loading days (%d committed): %w", loaded, err)
	}

	fmt.Printf("Loaded %s days\n", humanize.Comma(int64(loaded)))
	return nil
}
