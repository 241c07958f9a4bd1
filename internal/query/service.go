// Package query orchestrates the reading store and the hourly reducer to
// produce chart-ready data for a stream.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rpelletier/meteopi/internal/hourly"
	"github.com/rpelletier/meteopi/internal/storage"
	"github.com/rpelletier/meteopi/internal/types"
)

// ErrUnknownStream is returned when a caller asks for a stream outside
// the accepted domain. It is rejected before any store access.
var ErrUnknownStream = errors.New("unknown stream")

// StoreError wraps a storage failure so callers can map it to a
// service-level error. No partial data accompanies it.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("reading store: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Service answers chart-data queries. It holds no state beyond the store
// handle and is safe for concurrent use.
type Service struct {
	store storage.ReadingStore
}

// NewService creates a query service on top of a reading store.
func NewService(store storage.ReadingStore) *Service {
	return &Service{store: store}
}

// Today reduces the given day's readings for a stream into hourly buckets.
// Every call re-derives from current store state; there is no cache.
func (s *Service) Today(ctx context.Context, stream types.Stream, today time.Time) ([]hourly.Bucket, error) {
	if !stream.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}

	readings, err := s.store.ListReadings(ctx, stream, today)
	if err != nil {
		return nil, &StoreError{Err: err}
	}

	// The store contract is ascending timestamp order, but the reduction
	// must not depend on it.
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	return hourly.Reduce(readings, today), nil
}
