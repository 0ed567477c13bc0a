package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/bikestats/internal/publisher"
	"github.com/jgoulah/bikestats/pkg/models"
	"github.com/spf13/cobra"
)

var (
	publishSince string
	publishUntil string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored daily usage over MQTT",
	Long:  `Reads stored days from the database and publishes each as a retained JSON message on <prefix>/daily/<date>.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishSince, "since", "", "Only publish data since this date (YYYY-MM-DD or relative like 7d)")
	publishCmd.Flags().StringVar(&publishUntil, "until", "", "Only publish data until this date (YYYY-MM-DD)")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all records (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	since, until, err := parseRange(publishSince, publishUntil)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var data []models.BikeUsage
	if publishAll {
		data, err = db.ListDays(since, until)
	} else {
		data, err = db.ListUnpublishedDays()
		data = filterRange(data, since, until)
	}
	if err != nil {
		return fmt.Errorf("listing days: %w", err)
	}

	if len(data) == 0 {
		if publishAll {
			fmt.Println("No data found")
		} else {
			fmt.Println("No unpublished data found")
		}
		return nil
	}

	if publishLimit > 0 && len(data) > publishLimit {
		data = data[:publishLimit]
		fmt.Printf("Limiting to %d records (--limit flag)\n", publishLimit)
	}

	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing %d days...\n", len(data))
	published := 0
	for i, day := range data {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		fmt.Printf("[%d/%d] Publishing %s (%d rides)... ", i+1, len(data), day.Date, day.DailyCount)
		if err := pub.Publish(day); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(day.Date); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d days\n", published, len(data))
	return nil
}

// filterRange keeps days within [since, until]; empty bounds are open
func filterRange(data []models.BikeUsage, since, until string) []models.BikeUsage {
	if since == "" && until == "" {
		return data
	}
	var filtered []models.BikeUsage
	for _, day := range data {
		if since != "" && day.Date < since {
			continue
		}
		if until != "" && day.Date > until {
			continue
		}
		filtered = append(filtered, day)
	}
	return filtered
}

// parseRange turns the --since and --until flags into YYYY-MM-DD bounds
func parseRange(sinceStr, untilStr string) (string, string, error) {
	var since, until string
	if sinceStr != "" {
		t, err := parseDate(sinceStr)
		if err != nil {
			return "", "", fmt.Errorf("parsing --since date: %w", err)
		}
		since = t.Format(time.DateOnly)
	}
	if untilStr != "" {
		t, err := parseDate(untilStr)
		if err != nil {
			return "", "", fmt.Errorf("parsing --until date: %w", err)
		}
		until = t.Format(time.DateOnly)
	}
	return since, until, nil
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d")
func parseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, dateStr)
	if err == nil {
		return t, nil
	}

	// "7d" means 7 days ago
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(dateStr[:len(dateStr)-1], "%d", &days); err == nil {
			return time.Now().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}
