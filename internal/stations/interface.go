// Package stations defines the interface implemented by the acquisition
// collaborators that feed readings into the store.
package stations

// Station is an acquisition source: it owns its external resource (a
// subprocess, a serial port, a sensor bus) and pushes readings into the
// distributor for as long as its context lives.
type Station interface {
	StartStation() error
	StationName() string
}
