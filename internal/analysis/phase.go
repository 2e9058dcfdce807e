// Package analysis builds the correlation model from measured wells and the
// mixing parameters each well was passaged with.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// Growth-phase detection thresholds.
const (
	MinWellPoints   = 10
	MinWindowPoints = 5
	PointsPerHour   = 4
	MinWindowAvgOD  = 0.2
	MaxWindowAvgOD  = 0.8
	MinRSquared     = 0.7
	IdealOD         = 0.4
)

// WindowHours are the candidate exponential-phase window lengths.
var WindowHours = []int{3, 6, 9, 12}

// GrowthPhase is the best exponential window found in a well.
type GrowthPhase struct {
	Slope        float64 `json:"slope"`
	RSquared     float64 `json:"r_squared"`
	DoublingTime float64 `json:"doubling_time"`
	StartHour    float64 `json:"start_hour"`
	EndHour      float64 `json:"end_hour"`
	MinOD        float64 `json:"min_od"`
	MaxOD        float64 `json:"max_od"`
	AvgOD        float64 `json:"avg_od"`
	GrowthScore  float64 `json:"growth_score"`
	ODEfficiency float64 `json:"od_efficiency"`
}

// WellGrowth summarizes one well that has a detectable growth phase.
type WellGrowth struct {
	WellID        string      `json:"well_id"`
	TotalPoints   int         `json:"total_points"`
	TimeSpanHours float64     `json:"time_span_hours"`
	MaxOD         float64     `json:"max_od"`
	MinOD         float64     `json:"min_od"`
	ODRange       float64     `json:"od_range"`
	Phase         GrowthPhase `json:"growth_phase"`
}

// AnalyzeWell returns the well's growth characteristics, or false when the
// series is too short or has no exponential phase.
func AnalyzeWell(wellID string, series domain.WellSeries) (WellGrowth, bool) {
	if len(series) < MinWellPoints {
		return WellGrowth{}, false
	}

	start := series[0].Timestamp
	hours := make([]float64, 0, len(series))
	od := make([]float64, 0, len(series))
	for _, r := range series {
		if r.OD600 > 0 {
			hours = append(hours, r.Timestamp.Sub(start).Hours())
			od = append(od, r.OD600)
		}
	}
	if len(hours) < MinWellPoints {
		return WellGrowth{}, false
	}

	phase, ok := FindGrowthPhase(hours, od)
	if !ok {
		return WellGrowth{}, false
	}

	lo, hi := minMax(od)
	return WellGrowth{
		WellID:        wellID,
		TotalPoints:   len(series),
		TimeSpanHours: hours[len(hours)-1] - hours[0],
		MaxOD:         hi,
		MinOD:         lo,
		ODRange:       hi - lo,
		Phase:         phase,
	}, true
}

// FindGrowthPhase scans sliding windows for the steepest, cleanest log-linear
// rise near IdealOD. hours and od must have equal length and positive od.
func FindGrowthPhase(hours, od []float64) (GrowthPhase, bool) {
	var (
		best  GrowthPhase
		found bool
	)

	n := len(hours)
	for _, size := range WindowHours {
		window := size * PointsPerHour
		if n/2 < window {
			window = n / 2
		}
		if window < MinWindowPoints {
			continue
		}

		for i := 0; i < n-window; i++ {
			wh := hours[i : i+window]
			wo := od[i : i+window]

			avg := stat.Mean(wo, nil)
			if avg < MinWindowAvgOD || avg > MaxWindowAvgOD {
				continue
			}
			if wo[len(wo)-1] <= wo[0] {
				continue
			}

			logOD := make([]float64, len(wo))
			for j, v := range wo {
				logOD[j] = math.Log(v)
			}
			alpha, slope := stat.LinearRegression(wh, logOD, nil, false)
			r2 := stat.RSquared(wh, logOD, nil, alpha, slope)
			if !(slope > 0) || !(r2 > MinRSquared) {
				continue
			}

			efficiency := 1 - math.Abs(avg-IdealOD)/IdealOD
			score := slope * r2 * efficiency
			if score <= best.GrowthScore {
				continue
			}

			lo, hi := minMax(wo)
			best = GrowthPhase{
				Slope:        slope,
				RSquared:     r2,
				DoublingTime: math.Ln2 / slope,
				StartHour:    wh[0],
				EndHour:      wh[len(wh)-1],
				MinOD:        lo,
				MaxOD:        hi,
				AvgOD:        avg,
				GrowthScore:  score,
				ODEfficiency: efficiency,
			}
			found = true
		}
	}

	return best, found
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
