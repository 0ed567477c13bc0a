package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listSince string
	listUntil string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored daily usage",
	Long:  `Displays stored daily ride counts, average durations and temperatures from the database.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "Only list days since this date (YYYY-MM-DD or relative like 7d)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only list days until this date (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	since, until, err := parseRange(listSince, listUntil)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	data, err := db.ListDays(since, until)
	if err != nil {
		return fmt.Errorf("listing days: %w", err)
	}
	if len(data) == 0 {
		fmt.Println("No data found")
		return nil
	}

	fmt.Println("\nDaily Bike Usage:")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("%-12s  %10s  %12s  %8s\n", "Date", "Rides", "Avg (s)", "Temp")
	fmt.Println("--------------------------------------------------")

	var total int64
	for _, day := range data {
		fmt.Printf("%-12s  %10s  %12.1f  %8.1f\n",
			day.Date, humanize.Comma(day.DailyCount), day.DailyAvgDuration, day.AvgTemperature)
		total += day.DailyCount
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total: %s rides (%d days)\n", humanize.Comma(total), len(data))
	return nil
}
