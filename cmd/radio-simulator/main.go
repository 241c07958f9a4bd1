// radio-simulator emits rtl_433-style JSON lines on stdout so the outdoor
// acquisition pipeline can be exercised without an SDR attached. Point a
// device at it with:
//
//	devices:
//	  - name: jardin
//	    type: rtl433
//	    enabled: true
//	    command: radio-simulator
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"
)

type transmission struct {
	Time        string  `json:"time"`
	Model       string  `json:"model"`
	ID          int     `json:"id"`
	Temperature float64 `json:"temperature_C"`
	Humidity    float64 `json:"humidity"`
	BatteryOK   int     `json:"battery_ok"`
}

func main() {
	interval := flag.Duration("interval", 10*time.Second, "Time between transmissions")
	temp := flag.Float64("temp", 12.0, "Starting temperature in Celsius")
	hum := flag.Float64("humidity", 65.0, "Starting relative humidity")
	flag.Parse()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	enc := json.NewEncoder(os.Stdout)

	temperature := *temp
	humidity := *hum

	for {
		// Random walk with gentle bounds, like a sensor in weather
		temperature += (rng.Float64() - 0.5) * 0.4
		humidity += (rng.Float64() - 0.5) * 1.5
		if humidity > 100 {
			humidity = 100
		}
		if humidity < 0 {
			humidity = 0
		}

		tx := transmission{
			Time:        time.Now().Format("2006-01-02 15:04:05"),
			Model:       "Bresser-7in1",
			ID:          rng.Intn(256),
			Temperature: round1(temperature),
			Humidity:    round1(humidity),
			BatteryOK:   1,
		}
		if err := enc.Encode(tx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode transmission: %v\n", err)
			os.Exit(1)
		}

		time.Sleep(*interval)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
