// Package sqlite implements the default reading store, a single SQLite
// database file on the Pi's SD card.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/types"
)

// Table layout is carried over from the original database so existing
// data files and chart frontends keep working unchanged.
const createIndoorTableSQL = `
	CREATE TABLE IF NOT EXISTS donnee_int (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT,
		temperature REAL,
		pression REAL,
		humidite REAL
	)`

const createOutdoorTableSQL = `
	CREATE TABLE IF NOT EXISTS donnee_ext (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT,
		temperature REAL,
		humidite REAL
	)`

// Storage holds the connection to the SQLite reading store
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and ensures both stream
// tables exist.
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// WAL lets the collector goroutines append while a query reads a
	// consistent snapshot.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	for _, stmt := range []string{createIndoorTableSQL, createOutdoorTableSQL} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartStorageEngine creates a goroutine loop to receive readings and
// append them to the database
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting SQLite storage engine...")
	readingChan := make(chan types.Reading, 10)

	wg.Add(1)
	go s.processReadings(ctx, wg, readingChan)

	return readingChan
}

func (s *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreReading(ctx, r); err != nil {
				log.Errorf("could not store reading: %v", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received, stopping SQLite readings processor")
			return
		}
	}
}

// StoreReading appends a reading to its stream's table. Readings with no
// measurements at all are rejected.
func (s *Storage) StoreReading(ctx context.Context, r types.Reading) error {
	if r.AllNull() {
		return fmt.Errorf("refusing to store reading with no measurements (stream %s)", r.Stream)
	}

	dateStr := types.FormatTimestamp(r.Timestamp)

	switch r.Stream {
	case types.StreamIndoor:
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO donnee_int (date, temperature, pression, humidite) VALUES (?, ?, ?, ?)",
			dateStr, nullable(r.Temperature), nullable(r.Pressure), nullable(r.Humidity))
		return err
	case types.StreamOutdoor:
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO donnee_ext (date, temperature, humidite) VALUES (?, ?, ?)",
			dateStr, nullable(r.Temperature), nullable(r.Humidity))
		return err
	default:
		return fmt.Errorf("unknown stream %q", r.Stream)
	}
}

// ListReadings returns everything recorded for the stream on the given
// calendar day, ascending by timestamp. A row with a malformed date is
// logged and skipped.
func (s *Storage) ListReadings(ctx context.Context, stream types.Stream, day time.Time) ([]types.Reading, error) {
	var query string
	switch stream {
	case types.StreamIndoor:
		query = "SELECT date, temperature, pression, humidite FROM donnee_int WHERE date >= ? AND date < ? ORDER BY date ASC"
	case types.StreamOutdoor:
		query = "SELECT date, temperature, humidite FROM donnee_ext WHERE date >= ? AND date < ? ORDER BY date ASC"
	default:
		return nil, fmt.Errorf("unknown stream %q", stream)
	}

	// Stored dates are "YYYY-MM-DD HH:MM:SS[.ffffff]" so lexical range
	// comparison on the date prefix selects the whole day.
	dayStart := day.Format("2006-01-02")
	dayEnd := day.AddDate(0, 0, 1).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s readings: %w", stream, err)
	}
	defer rows.Close()

	var readings []types.Reading
	for rows.Next() {
		var dateStr string
		var temperature, pressure, humidity sql.NullFloat64

		if stream == types.StreamIndoor {
			err = rows.Scan(&dateStr, &temperature, &pressure, &humidity)
		} else {
			err = rows.Scan(&dateStr, &temperature, &humidity)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s reading row: %w", stream, err)
		}

		ts, err := types.ParseTimestamp(dateStr)
		if err != nil {
			log.Warnf("skipping %s row with unparseable date: %v", stream, err)
			continue
		}

		readings = append(readings, types.Reading{
			Stream:      stream,
			Timestamp:   ts,
			Temperature: fromNull(temperature),
			Pressure:    fromNull(pressure),
			Humidity:    fromNull(humidity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading %s rows: %w", stream, err)
	}

	return readings, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
