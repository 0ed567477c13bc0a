package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "BIKESTATS_"

// Config holds the application configuration
type Config struct {
	SourceDir     string        `yaml:"source_dir,omitempty"`
	Output        string        `yaml:"output,omitempty"`
	Workers       int           `yaml:"workers,omitempty"`      // 0 = one per CPU
	FileTimeout   time.Duration `yaml:"file_timeout,omitempty"` // 0 = no per-file watchdog
	Weather       WeatherConfig `yaml:"weather,omitempty"`
	MergedOutput  string        `yaml:"merged_output,omitempty"`
	Database      string        `yaml:"database,omitempty"`
	LoadChunkSize int           `yaml:"load_chunk_size,omitempty"`
	MQTT          MQTTConfig    `yaml:"mqtt,omitempty"`
	Log           LogConfig     `yaml:"log,omitempty"`
}

// WeatherConfig locates the weather station exports
type WeatherConfig struct {
	SourceDir string `yaml:"source_dir,omitempty"`
	Output    string `yaml:"output,omitempty"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// Load reads the config file, then applies .env and BIKESTATS_* environment overrides
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load(envFilePath(configPath))

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

func envFilePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ".env")
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setString("SOURCE_DIR", &c.SourceDir)
	setString("OUTPUT", &c.Output)
	setString("DATABASE", &c.Database)
	setString("MQTT_BROKER", &c.MQTT.Broker)
	setString("MQTT_USERNAME", &c.MQTT.Username)
	setString("MQTT_PASSWORD", &c.MQTT.Password)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvPrefix + "FILE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %sFILE_TIMEOUT: %w", EnvPrefix, err)
		}
		c.FileTimeout = d
	}
	return nil
}

// Validate checks values that would make a command misbehave
func (c *Config) Validate() error {
	var errs []string
	if c.Workers < 0 {
		errs = append(errs, "workers cannot be negative")
	}
	if c.FileTimeout < 0 {
		errs = append(errs, "file_timeout cannot be negative")
	}
	if c.LoadChunkSize < 0 {
		errs = append(errs, "load_chunk_size cannot be negative")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required when mqtt is enabled")
	}
	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// GetSourceDir returns the trip CSV directory, defaulting to ./unzip
func (c *Config) GetSourceDir() string {
	if c.SourceDir == "" {
		return "unzip"
	}
	return c.SourceDir
}

// GetOutput returns the daily summary path
func (c *Config) GetOutput() string {
	if c.Output == "" {
		return "daily_bike_data.json"
	}
	return c.Output
}

// GetWeatherSourceDir returns the weather CSV directory
func (c *Config) GetWeatherSourceDir() string {
	if c.Weather.SourceDir == "" {
		return "weather"
	}
	return c.Weather.SourceDir
}

// GetWeatherOutput returns the daily weather path
func (c *Config) GetWeatherOutput() string {
	if c.Weather.Output == "" {
		return "daily_weather_data.json"
	}
	return c.Weather.Output
}

// GetMergedOutput returns the joined bike+weather path
func (c *Config) GetMergedOutput() string {
	if c.MergedOutput == "" {
		return "merged_data.json"
	}
	return c.MergedOutput
}

// GetDatabase returns the SQLite database path
func (c *Config) GetDatabase() string {
	if c.Database == "" {
		return "bikestats.db"
	}
	return c.Database
}

// GetLoadChunkSize returns how many rows the loader commits at once (default 5000)
func (c *Config) GetLoadChunkSize() int {
	if c.LoadChunkSize <= 0 {
		return 5000
	}
	return c.LoadChunkSize
}

// GetTopicPrefix returns the MQTT topic prefix, defaulting to "bikestats"
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "bikestats"
	}
	return strings.TrimSuffix(m.TopicPrefix, "/")
}
