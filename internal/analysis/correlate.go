package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MetricCorrelations are one parameter's Pearson coefficients against each
// growth metric.
type MetricCorrelations struct {
	GrowthScore  float64 `json:"growth_scores"`
	DoublingTime float64 `json:"doubling_times"`
	ODEfficiency float64 `json:"od_efficiency"`
}

// CorrelationMatrix holds the coefficients for every mixing parameter.
type CorrelationMatrix struct {
	MixCycles MetricCorrelations `json:"mix_cycles"`
	MixVolume MetricCorrelations `json:"mix_volume"`
	MixHeight MetricCorrelations `json:"mix_height"`
}

// Pearson returns the correlation of x and y, or 0 when it is undefined
// (mismatched lengths, fewer than two samples, or zero variance).
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func correlate(wells []WellPerformance) CorrelationMatrix {
	n := len(wells)
	cycles := make([]float64, n)
	volume := make([]float64, n)
	height := make([]float64, n)
	score := make([]float64, n)
	doubling := make([]float64, n)
	efficiency := make([]float64, n)
	for i, w := range wells {
		cycles[i] = float64(w.Parameters.MixCycles)
		volume[i] = float64(w.Parameters.MixVolume)
		height[i] = w.Parameters.MixHeight
		score[i] = w.Growth.Phase.GrowthScore
		doubling[i] = w.Growth.Phase.DoublingTime
		efficiency[i] = w.Growth.Phase.ODEfficiency
	}

	against := func(param []float64) MetricCorrelations {
		return MetricCorrelations{
			GrowthScore:  Pearson(param, score),
			DoublingTime: Pearson(param, doubling),
			ODEfficiency: Pearson(param, efficiency),
		}
	}
	return CorrelationMatrix{
		MixCycles: against(cycles),
		MixVolume: against(volume),
		MixHeight: against(height),
	}
}
