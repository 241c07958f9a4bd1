package restserver

import (
	"fmt"
	"net/http"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/types"
)

// AttributeStats summarizes one measured attribute over a day
type AttributeStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// DayStats summarizes a stream's raw readings for one day
type DayStats struct {
	Stream      string          `json:"stream"`
	Date        string          `json:"date"`
	Readings    int             `json:"readings"`
	Temperature *AttributeStats `json:"temperature,omitempty"`
	Pressure    *AttributeStats `json:"pression,omitempty"`
	Humidity    *AttributeStats `json:"humidite,omitempty"`
}

// GetDayStats serves min/mean/max over today's raw readings for a stream.
// Unlike the chart endpoints this works on the raw rows, not the hourly
// reduction.
func (h *Handlers) GetDayStats(w http.ResponseWriter, req *http.Request) {
	stream := types.Stream(req.URL.Query().Get("stream"))
	if stream == "" {
		stream = types.StreamIndoor
	}
	if !stream.Valid() {
		http.Error(w, fmt.Sprintf("unknown stream %q", stream), http.StatusBadRequest)
		return
	}

	today := time.Now()
	readings, err := h.controller.Store.ListReadings(req.Context(), stream, today)
	if err != nil {
		log.Errorf("stats query failed: %v", err)
		http.Error(w, fmt.Sprintf("server error: %v", err), http.StatusInternalServerError)
		return
	}

	stats := DayStats{
		Stream:   string(stream),
		Date:     today.Format("2006-01-02"),
		Readings: len(readings),
	}

	var temps, pressures, humidities []float64
	for _, r := range readings {
		if r.Temperature != nil {
			temps = append(temps, *r.Temperature)
		}
		if r.Pressure != nil {
			pressures = append(pressures, *r.Pressure)
		}
		if r.Humidity != nil {
			humidities = append(humidities, *r.Humidity)
		}
	}

	stats.Temperature = summarize(temps)
	if stream == types.StreamIndoor {
		stats.Pressure = summarize(pressures)
	}
	stats.Humidity = summarize(humidities)

	if err := h.formatter.WriteResponse(w, req, stats); err != nil {
		log.Errorf("error writing stats response: %v", err)
	}
}

func summarize(values []float64) *AttributeStats {
	if len(values) == 0 {
		return nil
	}
	return &AttributeStats{
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Mean:  stat.Mean(values, nil),
		Count: len(values),
	}
}
