// Package hourly reduces a day's raw readings to at most one representative
// sample per calendar hour, for charting.
package hourly

import (
	"sort"
	"time"

	"github.com/rpelletier/meteopi/internal/types"
)

// Bucket is the reduced, display-ready sample for one calendar hour.
type Bucket struct {
	// Key is the hour this bucket represents on the display axis
	// (date + hour-of-day, minute and below zeroed).
	Key time.Time
	// Label is the display hour formatted as "HH:00".
	Label string
	// Sample is a snapshot of the reading chosen to represent this hour.
	Sample types.Reading
}

// Readings taken during the last minute of an hour are too close to the
// boundary to reliably belong to either side and are dropped; readings
// taken at minute 58 represent the upcoming hour.
const (
	dropMinute  = 59
	remapMinute = 58
)

// Reduce maps a single day's raw readings onto hourly buckets.
//
// Readings dated outside today are discarded, as are readings taken at
// minute 59. A reading at minute 58 is assigned to the following hour
// (rolling into the next day's hour 0 from 23:58). Within an hour, the
// chronologically latest reading wins. Buckets come back in ascending
// key order. Reduce is pure: it never depends on arrival order, only on
// timestamps, and two calls over the same input yield the same output.
func Reduce(readings []types.Reading, today time.Time) []Bucket {
	y, m, d := today.Date()

	latest := make(map[time.Time]types.Reading)
	for _, r := range readings {
		ry, rm, rd := r.Timestamp.Date()
		if ry != y || rm != m || rd != d {
			continue
		}
		if r.Timestamp.Minute() >= dropMinute {
			continue
		}

		key := time.Date(ry, rm, rd, r.Timestamp.Hour(), 0, 0, 0, r.Timestamp.Location())
		if r.Timestamp.Minute() == remapMinute {
			// A 23:58 reading rolls into hour 0 of the next day but is
			// still part of today's result set.
			key = key.Add(time.Hour)
		}

		if prev, ok := latest[key]; !ok || r.Timestamp.After(prev.Timestamp) {
			latest[key] = r
		}
	}

	keys := make([]time.Time, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, Bucket{
			Key:    k,
			Label:  k.Format("15:04"),
			Sample: latest[k],
		})
	}
	return buckets
}
