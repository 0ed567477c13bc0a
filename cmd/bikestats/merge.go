package main

import (
	"fmt"

	"github.com/jgoulah/bikestats/internal/aggregate"
	"github.com/jgoulah/bikestats/internal/weather"
	"github.com/jgoulah/bikestats/pkg/models"
	"github.com/spf13/cobra"
)

var (
	mergeBikes   string
	mergeWeather string
	mergeOutput  string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join the bike summary with daily weather",
	Long:  `Reads the bike and weather JSON files and writes one record per bike day with that day's weather attached. Days without weather get empty weather fields.`,
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeBikes, "bikes", "", "Bike summary JSON (default from config)")
	mergeCmd.Flags().StringVar(&mergeWeather, "weather", "", "Weather JSON (default from config)")
	mergeCmd.Flags().StringVar(&mergeOutput, "output", "", "Merged JSON path (default from config, ./merged_data.json)")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	bikesPath := cfg.GetOutput()
	if mergeBikes != "" {
		bikesPath = mergeBikes
	}
	weatherPath := cfg.GetWeatherOutput()
	if mergeWeather != "" {
		weatherPath = mergeWeather
	}
	output := cfg.GetMergedOutput()
	if mergeOutput != "" {
		output = mergeOutput
	}

	bikes, err := weather.ReadJSON[models.DailyMetric](bikesPath)
	if err != nil {
		return fmt.Errorf("reading bike summary: %w", err)
	}
	days, err := weather.ReadJSON[models.WeatherDay](weatherPath)
	if err != nil {
		return fmt.Errorf("reading weather: %w", err)
	}

	merged := weather.Join(bikes, days)
	if err := aggregate.WriteJSON(output, merged); err != nil {
		return err
	}

	matched := 0
	for date := range bikes {
		if _, ok := days[date]; ok {
			matched++
		}
	}
	fmt.Printf("Merged %d days (%d with weather) into %s\n", len(merged), matched, output)
	return nil
}
