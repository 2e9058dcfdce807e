package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWells is the plate layout loaded when no explicit well list is configured.
var DefaultWells = []string{"A2", "B2", "C2", "D2", "E2", "F2", "A3", "B3", "C3", "D3", "E3", "F3"}

// WellReading is one accepted OD600 measurement for a well.
type WellReading struct {
	Timestamp time.Time
	OD600     float64
	Included  bool
	// Fields holds the remaining CSV columns as raw strings.
	Fields map[string]string
}

// WellSeries is the readings of a single well, ascending by timestamp.
type WellSeries []WellReading

// SortByTime orders the series by timestamp. Equal timestamps keep their input order.
func (s WellSeries) SortByTime() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Timestamp.Before(s[j].Timestamp)
	})
}

// MaxOD returns the highest density in the series, or 0 for an empty series.
func (s WellSeries) MaxOD() float64 {
	var max float64
	for i, r := range s {
		if i == 0 || r.OD600 > max {
			max = r.OD600
		}
	}
	return max
}

// Dataset maps a well identifier to its readings. Wells without readings are absent.
type Dataset map[string]WellSeries

// WellIDs returns the dataset's wells in plate order (row letter, then column number).
func (d Dataset) WellIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	SortWellIDs(ids)
	return ids
}

// PointCount returns the total number of readings across all wells.
func (d Dataset) PointCount() int {
	n := 0
	for _, s := range d {
		n += len(s)
	}
	return n
}

// SortWellIDs sorts identifiers like "B10" after "B2". Unparseable IDs fall back to string order.
func SortWellIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ri, ci, okI := splitWellID(ids[i])
		rj, cj, okJ := splitWellID(ids[j])
		if !okI || !okJ {
			return ids[i] < ids[j]
		}
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
}

func splitWellID(id string) (string, int, bool) {
	idx := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if idx <= 0 {
		return "", 0, false
	}
	col, err := strconv.Atoi(id[idx:])
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(id[:idx]), col, true
}
