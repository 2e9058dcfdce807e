package domain

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/guregu/null.v3"
)

// AlignedTimeline is every well projected onto the union of all timestamps.
// An invalid null.Float marks a timestamp at which the well has no reading.
type AlignedTimeline struct {
	Timestamps []time.Time
	Labels     []string
	Wells      []string
	Series     map[string][]null.Float
}

// Align builds the shared x-axis for a dataset. Values are exact timestamp
// lookups; nothing is interpolated.
func Align(ds Dataset) *AlignedTimeline {
	seen := make(map[int64]time.Time)
	for _, series := range ds {
		for _, r := range series {
			seen[r.Timestamp.UnixNano()] = r.Timestamp
		}
	}

	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	tl := &AlignedTimeline{
		Timestamps: make([]time.Time, len(keys)),
		Labels:     make([]string, len(keys)),
		Wells:      ds.WellIDs(),
		Series:     make(map[string][]null.Float, len(ds)),
	}
	for i, k := range keys {
		tl.Timestamps[i] = seen[k]
		tl.Labels[i] = HourLabel(seen[k].Sub(seen[keys[0]]))
	}

	for _, id := range tl.Wells {
		lookup := make(map[int64]float64, len(ds[id]))
		for _, r := range ds[id] {
			lookup[r.Timestamp.UnixNano()] = r.OD600
		}

		values := make([]null.Float, len(keys))
		for i, k := range keys {
			if v, ok := lookup[k]; ok {
				values[i] = null.FloatFrom(v)
			}
		}
		tl.Series[id] = values
	}

	return tl
}

// Len returns the number of shared timestamps.
func (tl *AlignedTimeline) Len() int {
	return len(tl.Timestamps)
}

// SeriesLabel is the display name of a well's series.
func SeriesLabel(wellID string) string {
	return "Well " + wellID
}

// HourLabel renders an offset as whole elapsed hours, e.g. "3h".
func HourLabel(d time.Duration) string {
	return fmt.Sprintf("%dh", int(d.Hours()))
}
