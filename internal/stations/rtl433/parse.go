package rtl433

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rpelletier/meteopi/internal/types"
)

// parseLine extracts an outdoor reading from one line of rtl_433 JSON
// output. Lines that are not JSON, or that carry no measurements at all,
// are discarded (ok == false). Depending on the decoder profile, rtl_433
// names its fields temperature_C/temperature and humidity/hum; both
// spellings are accepted. A missing or malformed time falls back to now.
func parseLine(line []byte, now time.Time) (types.Reading, bool) {
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return types.Reading{}, false
	}

	temperature := firstNumber(obj, "temperature_C", "temperature")
	humidity := firstNumber(obj, "humidity", "hum")
	if temperature == nil && humidity == nil {
		return types.Reading{}, false
	}

	ts := now
	if raw, ok := obj["time"].(string); ok {
		if parsed, err := types.ParseTimestamp(raw); err == nil {
			ts = parsed
		}
	}

	return types.Reading{
		Stream:      types.StreamOutdoor,
		Timestamp:   ts,
		Temperature: temperature,
		Humidity:    humidity,
	}, true
}

// firstNumber returns the first of the named fields that holds a usable
// numeric value.
func firstNumber(obj map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			f := n
			return &f
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
