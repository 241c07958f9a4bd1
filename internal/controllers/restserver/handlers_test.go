package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
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

func newTestHandlers(t *testing.T, store *fakeStore) *Handlers {
	t.Helper()
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.RESTData{}, store, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return ctrl.handlers
}

// todayAt builds a reading timestamp on the current calendar day, since
// the /data/today endpoints always query "now".
func todayAt(hh, mm int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, time.Local)
}

func TestGetDataToday(t *testing.T) {
	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamIndoor, Timestamp: todayAt(8, 10), Temperature: f64(20.0), Pressure: f64(1010), Humidity: f64(40)},
		{Stream: types.StreamIndoor, Timestamp: todayAt(8, 58), Temperature: f64(20.5), Pressure: f64(1011), Humidity: f64(41)},
		{Stream: types.StreamIndoor, Timestamp: todayAt(9, 15), Temperature: f64(21.0), Pressure: f64(1012), Humidity: f64(42)},
	}}
	h := newTestHandlers(t, store)

	req := httptest.NewRequest(http.MethodGet, "/data/today", nil)
	rec := httptest.NewRecorder()
	h.GetDataToday(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("got Content-Type %q, want application/json", ct)
	}

	var points []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0]["time"] != "08:00" || points[1]["time"] != "09:00" {
		t.Errorf("got times %v, %v; want 08:00, 09:00", points[0]["time"], points[1]["time"])
	}
	if points[1]["temperature"] != 21.0 {
		t.Errorf("got temperature %v, want 21.0", points[1]["temperature"])
	}
	if points[1]["pression"] != 1012.0 {
		t.Errorf("got pression %v, want 1012.0", points[1]["pression"])
	}
}

func TestGetDataTodayNullPressure(t *testing.T) {
	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamIndoor, Timestamp: todayAt(10, 30), Temperature: f64(19.5), Humidity: f64(45)},
	}}
	h := newTestHandlers(t, store)

	req := httptest.NewRequest(http.MethodGet, "/data/today", nil)
	rec := httptest.NewRecorder()
	h.GetDataToday(rec, req)

	var points []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	v, present := points[0]["pression"]
	if !present {
		t.Fatal("indoor point must include a pression field even when null")
	}
	if v != nil {
		t.Errorf("null pressure serialized as %v, want null", v)
	}
}

func TestGetDataTodayExtOmitsPressure(t *testing.T) {
	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamOutdoor, Timestamp: todayAt(11, 20), Temperature: f64(7.5), Humidity: f64(81)},
	}}
	h := newTestHandlers(t, store)

	req := httptest.NewRequest(http.MethodGet, "/data/today_ext", nil)
	rec := httptest.NewRecorder()
	h.GetDataTodayExt(rec, req)

	var points []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if _, present := points[0]["pression"]; present {
		t.Error("outdoor points must not carry a pression field")
	}
}

func TestGetDataTodayEmptyDay(t *testing.T) {
	h := newTestHandlers(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/data/today", nil)
	rec := httptest.NewRecorder()
	h.GetDataToday(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty day should serialize as [], got %q", got)
	}
}

func TestGetDataTodayStoreFailure(t *testing.T) {
	h := newTestHandlers(t, &fakeStore{err: errors.New("database is locked")})

	req := httptest.NewRequest(http.MethodGet, "/data/today", nil)
	rec := httptest.NewRecorder()
	h.GetDataToday(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", rec.Code)
	}
}

func TestGetDayStats(t *testing.T) {
	store := &fakeStore{readings: []types.Reading{
		{Stream: types.StreamIndoor, Timestamp: todayAt(8, 0), Temperature: f64(18.0), Pressure: f64(1010), Humidity: f64(40)},
		{Stream: types.StreamIndoor, Timestamp: todayAt(12, 0), Temperature: f64(22.0), Pressure: f64(1012), Humidity: f64(44)},
	}}
	h := newTestHandlers(t, store)

	req := httptest.NewRequest(http.MethodGet, "/data/stats?stream=indoor", nil)
	rec := httptest.NewRecorder()
	h.GetDayStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	var stats DayStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.Readings != 2 {
		t.Errorf("got %d readings, want 2", stats.Readings)
	}
	if stats.Temperature == nil {
		t.Fatal("missing temperature stats")
	}
	if stats.Temperature.Min != 18.0 || stats.Temperature.Max != 22.0 || stats.Temperature.Mean != 20.0 {
		t.Errorf("got temperature stats %+v, want min 18 max 22 mean 20", stats.Temperature)
	}
}

func TestGetDayStatsRejectsUnknownStream(t *testing.T) {
	h := newTestHandlers(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/data/stats?stream=garage", nil)
	rec := httptest.NewRecorder()
	h.GetDayStats(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}
