package sensehat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
)

func writeSensor(t *testing.T, dir, name, value string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644); err != nil {
		t.Fatalf("failed to write fake sensor file: %v", err)
	}
}

func newTestStation(t *testing.T, dir string, distributor chan types.Reading) *Station {
	t.Helper()
	st := NewStation(
		context.Background(),
		&sync.WaitGroup{},
		config.DeviceData{Name: "salon", Type: "sensehat", SysfsPath: dir},
		distributor,
		zap.NewNop().Sugar(),
	)
	return st.(*Station)
}

func TestPollSensors(t *testing.T) {
	dir := t.TempDir()
	writeSensor(t, dir, tempFile, "21450\n")
	writeSensor(t, dir, pressureFile, "101.325\n")
	writeSensor(t, dir, humidityFile, "43200\n")

	distributor := make(chan types.Reading, 1)
	s := newTestStation(t, dir, distributor)
	s.pollSensors()

	r := <-distributor
	if r.Stream != types.StreamIndoor {
		t.Errorf("got stream %q, want indoor", r.Stream)
	}
	if r.Temperature == nil || *r.Temperature != 21.45 {
		t.Errorf("got temperature %v, want 21.45", r.Temperature)
	}
	if r.Pressure == nil || *r.Pressure != 1013.25 {
		t.Errorf("got pressure %v, want 1013.25", r.Pressure)
	}
	if r.Humidity == nil || *r.Humidity != 43.2 {
		t.Errorf("got humidity %v, want 43.2", r.Humidity)
	}
}

func TestPollSensorsPartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeSensor(t, dir, tempFile, "19800\n")
	// pressure and humidity files missing: driver not loaded

	distributor := make(chan types.Reading, 1)
	s := newTestStation(t, dir, distributor)
	s.pollSensors()

	r := <-distributor
	if r.Temperature == nil || *r.Temperature != 19.8 {
		t.Errorf("got temperature %v, want 19.8", r.Temperature)
	}
	if r.Pressure != nil {
		t.Errorf("missing pressure sensor should yield nil, got %v", *r.Pressure)
	}
	if r.Humidity != nil {
		t.Errorf("missing humidity sensor should yield nil, got %v", *r.Humidity)
	}
}

func TestPollSensorsSuppressesAllNullSample(t *testing.T) {
	dir := t.TempDir() // no sensor files at all

	distributor := make(chan types.Reading, 1)
	s := newTestStation(t, dir, distributor)
	s.pollSensors()

	select {
	case r := <-distributor:
		t.Fatalf("all-null sample should have been suppressed, got %+v", r)
	default:
	}
}
