// Package types contains the shared data types used throughout the application.
package types

import (
	"fmt"
	"time"
)

// Stream identifies one of the two independent measurement series.
type Stream string

const (
	// StreamIndoor is the Sense HAT series (temperature, pressure, humidity).
	StreamIndoor Stream = "indoor"
	// StreamOutdoor is the radio-receiver series (temperature, humidity).
	StreamOutdoor Stream = "outdoor"
)

// Valid reports whether s is one of the known streams.
func (s Stream) Valid() bool {
	return s == StreamIndoor || s == StreamOutdoor
}

// Timestamp layouts used in the reading store. Timestamps are naive local
// time; rows may carry sub-second precision or not.
const (
	TimestampLayout      = "2006-01-02 15:04:05.999999"
	TimestampLayoutNoSub = "2006-01-02 15:04:05"
)

// ParseTimestamp parses a stored timestamp, with or without sub-second
// precision.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(TimestampLayoutNoSub, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatTimestamp formats a timestamp for storage.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Reading is a single raw measurement from one of the acquisition sources.
// Measurement fields are pointers: a nil field is legitimately absent data
// and is never coerced to zero.
type Reading struct {
	Stream      Stream
	Timestamp   time.Time
	Temperature *float64
	Pressure    *float64 // indoor stream only
	Humidity    *float64
}

// AllNull reports whether the reading carries no measurements at all.
// Such readings are suppressed before they reach the store.
func (r Reading) AllNull() bool {
	return r.Temperature == nil && r.Pressure == nil && r.Humidity == nil
}
