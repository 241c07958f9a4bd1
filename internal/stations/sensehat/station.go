// Package sensehat acquires indoor readings from a Raspberry Pi Sense HAT
// through the kernel's industrial I/O sysfs interface.
package sensehat

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/stations"
	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
)

const (
	defaultSysfsPath    = "/sys/bus/iio/devices/iio:device0"
	defaultPollInterval = 50 * time.Second
)

// Sensor value files exposed by the HTS221/LPS25H drivers.
const (
	tempFile     = "in_temp_input"             // millidegrees C
	pressureFile = "in_pressure_input"         // kPa
	humidityFile = "in_humidityrelative_input" // millipercent
)

// Station polls the Sense HAT sensors on a fixed interval
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.DeviceData
	ReadingDistributor chan<- types.Reading
	logger             *zap.SugaredLogger
	sysfsPath          string
	pollInterval       time.Duration
}

// NewStation creates a new Sense HAT station instance
func NewStation(ctx context.Context, wg *sync.WaitGroup, deviceConfig config.DeviceData, distributor chan<- types.Reading, logger *zap.SugaredLogger) stations.Station {
	sysfsPath := deviceConfig.SysfsPath
	if sysfsPath == "" {
		sysfsPath = defaultSysfsPath
	}

	pollInterval := defaultPollInterval
	if deviceConfig.PollIntervalSecs > 0 {
		pollInterval = time.Duration(deviceConfig.PollIntervalSecs) * time.Second
	}

	return &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             deviceConfig,
		ReadingDistributor: distributor,
		logger:             logger.Named("sensehat").With("station", deviceConfig.Name),
		sysfsPath:          sysfsPath,
		pollInterval:       pollInterval,
	}
}

// StationName returns the name of this station
func (s *Station) StationName() string {
	return s.config.Name
}

// StartStation starts the sensor poll loop
func (s *Station) StartStation() error {
	log.Infof("Starting Sense HAT station [%v]...", s.config.Name)
	s.logger.Infow("polling sensors",
		"path", s.sysfsPath,
		"interval", s.pollInterval)

	s.wg.Add(1)
	go s.pollLoop()

	return nil
}

func (s *Station) pollLoop() {
	defer s.wg.Done()

	s.pollSensors()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("poll loop stopped")
			return
		case <-ticker.C:
			s.pollSensors()
		}
	}
}

// pollSensors takes one sample from each sensor. Individual sensor
// failures are logged and leave that field absent; a sample with no
// values at all is suppressed before it reaches the store.
func (s *Station) pollSensors() {
	reading := types.Reading{
		Stream:      types.StreamIndoor,
		Timestamp:   time.Now(),
		Temperature: s.readScaled(tempFile, 0.001),
		Pressure:    s.readScaled(pressureFile, 10), // kPa to hPa
		Humidity:    s.readScaled(humidityFile, 0.001),
	}

	if reading.AllNull() {
		s.logger.Warn("all sensors failed to read, suppressing sample")
		return
	}

	select {
	case s.ReadingDistributor <- reading:
	case <-s.ctx.Done():
	}
}

func (s *Station) readScaled(name string, scale float64) *float64 {
	raw, err := os.ReadFile(filepath.Join(s.sysfsPath, name))
	if err != nil {
		s.logger.Errorw("failed to read sensor", "sensor", name, "error", err)
		return nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		s.logger.Errorw("failed to parse sensor value", "sensor", name, "error", err)
		return nil
	}

	v *= scale
	return &v
}
