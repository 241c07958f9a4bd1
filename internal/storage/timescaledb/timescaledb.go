// Package timescaledb implements an optional reading store backed by
// TimescaleDB (or plain PostgreSQL), for installations that ship their
// readings off the Pi.
package timescaledb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/types"
)

// IndoorRow mirrors the SQLite indoor table layout so both backends
// stay interchangeable.
type IndoorRow struct {
	ID          uint     `gorm:"primaryKey;autoIncrement;column:id"`
	Date        string   `gorm:"column:date;index"`
	Temperature *float64 `gorm:"column:temperature"`
	Pressure    *float64 `gorm:"column:pression"`
	Humidity    *float64 `gorm:"column:humidite"`
}

// TableName implements the GORM Tabler interface
func (IndoorRow) TableName() string {
	return "donnee_int"
}

// OutdoorRow mirrors the SQLite outdoor table layout.
type OutdoorRow struct {
	ID          uint     `gorm:"primaryKey;autoIncrement;column:id"`
	Date        string   `gorm:"column:date;index"`
	Temperature *float64 `gorm:"column:temperature"`
	Humidity    *float64 `gorm:"column:humidite"`
}

// TableName implements the GORM Tabler interface
func (OutdoorRow) TableName() string {
	return "donnee_ext"
}

// Storage holds the connection to a TimescaleDB reading store
type Storage struct {
	db *gorm.DB
}

// New connects to TimescaleDB and migrates the stream tables.
func New(ctx context.Context, connectionString string) (*Storage, error) {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}
	log.Info("TimescaleDB connection successful")

	if err := db.WithContext(ctx).AutoMigrate(&IndoorRow{}, &OutdoorRow{}); err != nil {
		return nil, fmt.Errorf("could not migrate reading tables: %w", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and send
// them off to TimescaleDB
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting TimescaleDB storage engine...")
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
			log.Info("cancellation request received, stopping TimescaleDB readings processor")
			return
		}
	}
}

// StoreReading stores a reading value in TimescaleDB. Readings with no
// measurements at all are rejected.
func (s *Storage) StoreReading(ctx context.Context, r types.Reading) error {
	if r.AllNull() {
		return fmt.Errorf("refusing to store reading with no measurements (stream %s)", r.Stream)
	}

	dateStr := types.FormatTimestamp(r.Timestamp)

	switch r.Stream {
	case types.StreamIndoor:
		row := IndoorRow{
			Date:        dateStr,
			Temperature: r.Temperature,
			Pressure:    r.Pressure,
			Humidity:    r.Humidity,
		}
		return s.db.WithContext(ctx).Create(&row).Error
	case types.StreamOutdoor:
		row := OutdoorRow{
			Date:        dateStr,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
		}
		return s.db.WithContext(ctx).Create(&row).Error
	default:
		return fmt.Errorf("unknown stream %q", r.Stream)
	}
}

// ListReadings returns everything recorded for the stream on the given
// calendar day, ascending by timestamp.
func (s *Storage) ListReadings(ctx context.Context, stream types.Stream, day time.Time) ([]types.Reading, error) {
	dayStart := day.Format("2006-01-02")
	dayEnd := day.AddDate(0, 0, 1).Format("2006-01-02")

	var readings []types.Reading

	switch stream {
	case types.StreamIndoor:
		var rows []IndoorRow
		err := s.db.WithContext(ctx).
			Where("date >= ? AND date < ?", dayStart, dayEnd).
			Order("date ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("error querying indoor readings: %w", err)
		}
		for _, row := range rows {
			ts, err := types.ParseTimestamp(row.Date)
			if err != nil {
				log.Warnf("skipping indoor row with unparseable date: %v", err)
				continue
			}
			readings = append(readings, types.Reading{
				Stream:      stream,
				Timestamp:   ts,
				Temperature: row.Temperature,
				Pressure:    row.Pressure,
				Humidity:    row.Humidity,
			})
		}
	case types.StreamOutdoor:
		var rows []OutdoorRow
		err := s.db.WithContext(ctx).
			Where("date >= ? AND date < ?", dayStart, dayEnd).
			Order("date ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("error querying outdoor readings: %w", err)
		}
		for _, row := range rows {
			ts, err := types.ParseTimestamp(row.Date)
			if err != nil {
				log.Warnf("skipping outdoor row with unparseable date: %v", err)
				continue
			}
			readings = append(readings, types.Reading{
				Stream:      stream,
				Timestamp:   ts,
				Temperature: row.Temperature,
				Humidity:    row.Humidity,
			})
		}
	default:
		return nil, fmt.Errorf("unknown stream %q", stream)
	}

	return readings, nil
}
