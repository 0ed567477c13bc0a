package models

// WeatherDay holds one day of station observations as raw strings.
// Empty strings mean the station did not report that value.
type WeatherDay struct {
	TAvg string `json:"tavg"`
	TMin string `json:"tmin"`
	TMax string `json:"tmax"`
	Prcp string `json:"prcp"`
	Snow string `json:"snow"`
	WDir string `json:"wdir"`
	WSpd string `json:"wspd"`
	WPgt string `json:"wpgt"`
	Pres string `json:"pres"`
	TSun string `json:"tsun"`
}

// MergedDay is a bike summary joined with that day's weather
type MergedDay struct {
	DailyMetric
	WeatherDay
}

// BikeUsage is a stored day as read back from the database
type BikeUsage struct {
	Date             string
	Year             int
	Month            int
	Day              int
	HourlyCounts     []int64
	HourlyDurations  []float64
	DailyCount       int64
	DailyAvgDuration float64
	AvgTemperature   float64
	MinTemperature   float64
	MaxTemperature   float64
	Precipitation    float64
	WindSpeed        float64
	Snow             float64
	Pressure         float64
}
