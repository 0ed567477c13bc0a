package main

import (
	"fmt"

	"github.com/jgoulah/bikestats/internal/aggregate"
	"github.com/jgoulah/bikestats/internal/weather"
	"github.com/spf13/cobra"
)

var (
	weatherSource string
	weatherOutput string
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Collect daily weather observations into one JSON file",
	Long:  `Reads every *.csv weather export in the source directory, keys rows by date and fills missing days with empty records.`,
	RunE:  runWeather,
}

func init() {
	weatherCmd.Flags().StringVar(&weatherSource, "source", "", "Directory of weather CSV files (default from config, ./weather)")
	weatherCmd.Flags().StringVar(&weatherOutput, "output", "", "Weather JSON path (default from config, ./daily_weather_data.json)")
	rootCmd.AddCommand(weatherCmd)
}

func runWeather(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	source := cfg.GetWeatherSourceDir()
	if weatherSource != "" {
		source = weatherSource
	}
	output := cfg.GetWeatherOutput()
	if weatherOutput != "" {
		output = weatherOutput
	}

	days, err := weather.Collect(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("collecting weather from %s: %w", source, err)
	}
	if err := aggregate.WriteJSON(output, days); err != nil {
		return err
	}

	fmt.Printf("Wrote %d weather days to %s\n", len(days), output)
	return nil
}
