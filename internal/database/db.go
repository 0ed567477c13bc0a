package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/bikestats/pkg/models"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bike_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL UNIQUE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		hourly_counts TEXT NOT NULL,
		hourly_durations TEXT NOT NULL,
		daily_count INTEGER NOT NULL,
		daily_avg_dur REAL NOT NULL,
		avg_temperature REAL NOT NULL DEFAULT 0,
		min_temperature REAL NOT NULL DEFAULT 0,
		max_temperature REAL NOT NULL DEFAULT 0,
		precipitation REAL NOT NULL DEFAULT 0,
		windspeed REAL NOT NULL DEFAULT 0,
		snow REAL NOT NULL DEFAULT 0,
		pressure REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_bike_usage_year_month ON bike_usage(year, month, day);
	CREATE INDEX IF NOT EXISTS idx_bike_usage_published ON bike_usage(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

const insertDayQuery = `
	INSERT OR REPLACE INTO bike_usage (
		date, year, month, day, hourly_counts, hourly_durations, daily_count, daily_avg_dur,
		avg_temperature, min_temperature, max_temperature, precipitation, windspeed, snow, pressure,
		created_at, published
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`

// LoadDays replaces the stored rows for every date in days, committing in
// transactions of chunkSize rows. Dates are loaded in ascending order and
// replaced rows become unpublished again. progress, if set, is called with
// the running total after each commit.
func (db *DB) LoadDays(days map[string]models.MergedDay, chunkSize int, progress func(loaded int)) (int, error) {
	if chunkSize <= 0 {
		chunkSize = 5000
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	createdAt := time.Now().UTC().Format(time.RFC3339)
	loaded := 0
	for start := 0; start < len(dates); start += chunkSize {
		end := min(start+chunkSize, len(dates))
		if err := db.loadChunk(dates[start:end], days, createdAt); err != nil {
			return loaded, err
		}
		loaded = end
		if progress != nil {
			progress(loaded)
		}
	}
	return loaded, nil
}

func (db *DB) loadChunk(dates []string, days map[string]models.MergedDay, createdAt string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertDayQuery)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, date := range dates {
		args, err := dayArgs(date, days[date])
		if err != nil {
			return err
		}
		args = append(args, createdAt)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk: %w", err)
	}
	return nil
}

func dayArgs(date string, day models.MergedDay) ([]any, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	counts, err := json.Marshal(day.HourlyCounts)
	if err != nil {
		return nil, fmt.Errorf("encoding hourly counts: %w", err)
	}
	durations, err := json.Marshal(day.HourlyDurations)
	if err != nil {
		return nil, fmt.Errorf("encoding hourly durations: %w", err)
	}

	return []any{
		date, t.Year(), int(t.Month()), t.Day(),
		string(counts), string(durations),
		day.DailyCount, float64(day.DailyAvgDuration),
		WeatherValue(day.TAvg),
		WeatherValue(day.TMin),
		WeatherValue(day.TMax),
		WeatherValue(day.Prcp),
		WeatherValue(day.WSpd),
		WeatherValue(day.Snow),
		WeatherValue(day.Pres),
	}, nil
}

// WeatherValue converts a raw weather field to a number; blanks and junk load as 0
func WeatherValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

const selectColumns = `
	SELECT date, year, month, day, hourly_counts, hourly_durations, daily_count, daily_avg_dur,
		avg_temperature, min_temperature, max_temperature, precipitation, windspeed, snow, pressure
	FROM bike_usage
	`

// ListDays retrieves stored days within [since, until], ordered by date.
// Empty bounds are open.
func (db *DB) ListDays(since, until string) ([]models.BikeUsage, error) {
	query := selectColumns + `WHERE (? = '' OR date >= ?) AND (? = '' OR date <= ?) ORDER BY date`
	rows, err := db.conn.Query(query, since, since, until, until)
	if err != nil {
		return nil, fmt.Errorf("querying bike usage: %w", err)
	}
	defer rows.Close()
	return scanDays(rows)
}

// ListUnpublishedDays retrieves days not yet published, ordered by date
func (db *DB) ListUnpublishedDays() ([]models.BikeUsage, error) {
	rows, err := db.conn.Query(selectColumns + `WHERE published = 0 ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished bike usage: %w", err)
	}
	defer rows.Close()
	return scanDays(rows)
}

// MarkPublished marks a stored day as published
func (db *DB) MarkPublished(date string) error {
	query := `UPDATE bike_usage SET published = 1 WHERE date = ?`
	_, err := db.conn.Exec(query, date)
	if err != nil {
		return fmt.Errorf("marking %s as published: %w", date, err)
	}
	return nil
}

func scanDays(rows *sql.Rows) ([]models.BikeUsage, error) {
	var results []models.BikeUsage
	for rows.Next() {
		var u models.BikeUsage
		var counts, durations string
		if err := rows.Scan(&u.Date, &u.Year, &u.Month, &u.Day, &counts, &durations,
			&u.DailyCount, &u.DailyAvgDuration,
			&u.AvgTemperature, &u.MinTemperature, &u.MaxTemperature,
			&u.Precipitation, &u.WindSpeed, &u.Snow, &u.Pressure); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &u.HourlyCounts); err != nil {
			return nil, fmt.Errorf("decoding hourly counts for %s: %w", u.Date, err)
		}
		if err := json.Unmarshal([]byte(durations), &u.HourlyDurations); err != nil {
			return nil, fmt.Errorf("decoding hourly durations for %s: %w", u.Date, err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}
