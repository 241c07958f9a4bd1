package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpelletier/meteopi/internal/types"
)

type fakeStore struct {
	readings []types.Reading
	err      error
}

func (f *fakeStore) ListReadings(ctx context.Context, stream types.Stream, day time.Time) ([]types.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.readings, nil
}

func f64(v float64) *float64 {
	return &v
}

func TestTodayRejectsUnknownStream(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("must not be reached")})

	_, err := svc.Today(context.Background(), types.Stream("greenhouse"), time.Now())
	if !errors.Is(err, ErrUnknownStream) {
		t.Fatalf("got %v, want ErrUnknownStream", err)
	}
}

func TestTodayWrapsStoreFailure(t *testing.T) {
	storeErr := errors.New("database is locked")
	svc := NewService(&fakeStore{err: storeErr})

	buckets, err := svc.Today(context.Background(), types.StreamIndoor, time.Now())
	if err == nil {
		t.Fatal("expected an error")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("got %T, want *StoreError", err)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("store error not wrapped: %v", err)
	}
	if buckets != nil {
		t.Fatal("no partial results should accompany a store failure")
	}
}

func TestTodaySortsBeforeReducing(t *testing.T) {
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)

	// Store returns rows out of order; last-write-wins must still pick
	// the chronologically latest reading.
	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamIndoor, Timestamp: day.Add(14*time.Hour + 45*time.Minute), Temperature: f64(21.0)},
		{Stream: types.StreamIndoor, Timestamp: day.Add(14*time.Hour + 10*time.Minute), Temperature: f64(20.0)},
	}}

	svc := NewService(store)
	buckets, err := svc.Today(context.Background(), types.StreamIndoor, day)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if *buckets[0].Sample.Temperature != 21.0 {
		t.Errorf("got temperature %v, want 21.0", *buckets[0].Sample.Temperature)
	}
}

func TestTodayEndToEndScenario(t *testing.T) {
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)

	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamIndoor, Timestamp: day.Add(8*time.Hour + 10*time.Minute), Temperature: f64(20.0), Pressure: f64(1010), Humidity: f64(40)},
		{Stream: types.StreamIndoor, Timestamp: day.Add(8*time.Hour + 58*time.Minute), Temperature: f64(20.5), Pressure: f64(1011), Humidity: f64(41)},
		{Stream: types.StreamIndoor, Timestamp: day.Add(9*time.Hour + 15*time.Minute), Temperature: f64(21.0), Pressure: f64(1012), Humidity: f64(42)},
	}}

	svc := NewService(store)
	buckets, err := svc.Today(context.Background(), types.StreamIndoor, day)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}

	// 08:10 stays in the 08:00 bucket. 08:58 remaps to 09:00, then the
	// later 09:15 reading lands in 09:00 too and wins.
	want := []struct {
		label string
		temp  float64
	}{
		{"08:00", 20.0},
		{"09:00", 21.0},
	}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(buckets), len(want))
	}
	for i, w := range want {
		if buckets[i].Label != w.label {
			t.Errorf("bucket %d: got label %q, want %q", i, buckets[i].Label, w.label)
		}
		if *buckets[i].Sample.Temperature != w.temp {
			t.Errorf("bucket %d: got temperature %v, want %v", i, *buckets[i].Sample.Temperature, w.temp)
		}
	}
}
