// Package storage defines interfaces and implementations for weather data storage backends.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rpelletier/meteopi/internal/types"
)

// StorageEngineInterface is an interface that provides a few standardized
// methods for various storage backends
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.Reading
}

// ReadingStore is the read side of a storage backend: everything recorded
// for a stream on a given calendar day, ascending by timestamp, with
// null-safe measurement fields. Rows with malformed timestamps are logged
// and skipped, never failing the whole read.
type ReadingStore interface {
	ListReadings(ctx context.Context, stream types.Stream, day time.Time) ([]types.Reading, error)
}
