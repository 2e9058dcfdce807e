package domain

import "github.com/montanaflynn/stats"

// DatasetSummary describes how the loaded wells performed.
type DatasetSummary struct {
	TotalWells      int                `json:"total_wells"`
	TotalDataPoints int                `json:"total_data_points"`
	AverageMaxOD    float64            `json:"average_max_od"`
	BestWell        string             `json:"best_well,omitempty"`
	BestMaxOD       float64            `json:"best_max_od"`
	WorstWell       string             `json:"worst_well,omitempty"`
	WorstMaxOD      float64            `json:"worst_max_od"`
	Optimal         *OptimalParameters `json:"optimal_parameters,omitempty"`
}

// Summarize ranks wells by their maximum OD. Ties keep the first well in plate order.
func Summarize(ds Dataset, model *CorrelationModel) DatasetSummary {
	var sum DatasetSummary
	if model != nil {
		opt := model.Optimal
		sum.Optimal = &opt
	}

	maxima := make(stats.Float64Data, 0, len(ds))
	for _, id := range ds.WellIDs() {
		series := ds[id]
		if len(series) == 0 {
			continue
		}
		sum.TotalWells++
		sum.TotalDataPoints += len(series)

		max := series.MaxOD()
		maxima = append(maxima, max)
		if sum.BestWell == "" || max > sum.BestMaxOD {
			sum.BestWell, sum.BestMaxOD = id, max
		}
		if sum.WorstWell == "" || max < sum.WorstMaxOD {
			sum.WorstWell, sum.WorstMaxOD = id, max
		}
	}

	if mean, err := stats.Mean(maxima); err == nil {
		sum.AverageMaxOD = mean
	}
	return sum
}
