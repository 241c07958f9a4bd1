// Package managers wires configured storage backends and acquisition
// stations together.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/storage"
	"github.com/rpelletier/meteopi/internal/storage/sqlite"
	"github.com/rpelletier/meteopi/internal/storage/timescaledb"
	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines []StorageEngine

	// ReadingDistributor fans incoming readings out to every engine.
	ReadingDistributor chan types.Reading

	// ReadStore is the backend queries read from (the first configured
	// one; SQLite when both are present).
	ReadStore storage.ReadingStore
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager object, populated with all
// configured storage engines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData) (*StorageManager, error) {
	s := StorageManager{
		ReadingDistributor: make(chan types.Reading, 20),
	}

	if cfg.Storage.SQLite != nil {
		engine, err := sqlite.New(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		s.addEngine(ctx, wg, engine)
		s.ReadStore = engine
	}

	if cfg.Storage.TimescaleDB != nil {
		engine, err := timescaledb.New(ctx, cfg.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		s.addEngine(ctx, wg, engine)
		if s.ReadStore == nil {
			s.ReadStore = engine
		}
	}

	if s.ReadStore == nil {
		return nil, fmt.Errorf("no storage backend configured")
	}

	wg.Add(1)
	go s.readingDistributor(ctx, wg)

	return &s, nil
}

type storageBackend interface {
	storage.StorageEngineInterface
	storage.ReadingStore
}

func (s *StorageManager) addEngine(ctx context.Context, wg *sync.WaitGroup, engine storageBackend) {
	s.Engines = append(s.Engines, StorageEngine{
		Engine: engine,
		C:      engine.StartStorageEngine(ctx, wg),
	})
}

// readingDistributor fans readings from the acquisition stations out to
// every configured storage engine
func (s *StorageManager) readingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, engine := range s.Engines {
				select {
				case engine.C <- r:
				default:
					log.Warn("storage engine backlogged, dropping reading")
				}
			}
		case <-ctx.Done():
			log.Info("cancellation request received, stopping reading distributor")
			return
		}
	}
}
