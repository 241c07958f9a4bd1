package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/stations"
	"github.com/rpelletier/meteopi/internal/stations/rtl433"
	"github.com/rpelletier/meteopi/internal/stations/sensehat"
	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
)

// StationManager holds the configured acquisition stations
type StationManager struct {
	stations map[string]stations.Station
	logger   *zap.SugaredLogger
}

// NewStationManager creates a StationManager populated with every enabled
// device from the configuration
func NewStationManager(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, distributor chan types.Reading, logger *zap.SugaredLogger) (*StationManager, error) {
	sm := &StationManager{
		stations: make(map[string]stations.Station),
		logger:   logger,
	}

	for _, deviceConfig := range cfg.Devices {
		if !deviceConfig.Enabled {
			logger.Infof("Skipping disabled device [%s]", deviceConfig.Name)
			continue
		}

		var station stations.Station
		switch deviceConfig.Type {
		case "rtl433":
			station = rtl433.NewStation(ctx, wg, deviceConfig, distributor, logger)
		case "sensehat":
			station = sensehat.NewStation(ctx, wg, deviceConfig, distributor, logger)
		default:
			return nil, fmt.Errorf("device [%s] has unknown type %q", deviceConfig.Name, deviceConfig.Type)
		}
		sm.stations[deviceConfig.Name] = station
	}

	return sm, nil
}

// StartStations starts every configured station
func (sm *StationManager) StartStations() error {
	for name, station := range sm.stations {
		sm.logger.Infof("Starting station [%v]...", name)
		if err := station.StartStation(); err != nil {
			return fmt.Errorf("failed to start station [%s]: %w", name, err)
		}
	}
	return nil
}
