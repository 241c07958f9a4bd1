package restserver

import (
	"github.com/rpelletier/meteopi/internal/hourly"
)

// IndoorPoint is one indoor chart sample for JSON output. Measurement
// fields stay pointers so absent values serialize as null, never 0.
type IndoorPoint struct {
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature"`
	Pressure    *float64 `json:"pression"`
	Humidity    *float64 `json:"humidite"`
}

// OutdoorPoint is one outdoor chart sample for JSON output. The outdoor
// sensor has no barometer, so there is no pression field at all.
type OutdoorPoint struct {
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidite"`
}

func indoorPoints(buckets []hourly.Bucket) []IndoorPoint {
	points := make([]IndoorPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, IndoorPoint{
			Time:        b.Label,
			Temperature: b.Sample.Temperature,
			Pressure:    b.Sample.Pressure,
			Humidity:    b.Sample.Humidity,
		})
	}
	return points
}

func outdoorPoints(buckets []hourly.Bucket) []OutdoorPoint {
	points := make([]OutdoorPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, OutdoorPoint{
			Time:        b.Label,
			Temperature: b.Sample.Temperature,
			Humidity:    b.Sample.Humidity,
		})
	}
	return points
}
