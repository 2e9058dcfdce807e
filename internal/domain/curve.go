package domain

import "time"

// PredictedCurve is a synthesized growth curve for a parameter set.
type PredictedCurve struct {
	TimeLabels []string  `json:"labels"`
	Densities  []float64 `json:"data"`
	Slope      float64   `json:"slope"`
	MaxDensity float64   `json:"max_od"`
}

// PredictionLabel is the series name of a predicted curve in charts and exports.
const PredictionLabel = "Optimized Growth Curve"

// Recommendation modes.
const (
	ModeModel    = "model"
	ModeFallback = "fallback"
)

// Recommendation is a generated parameter set together with its predicted curve.
type Recommendation struct {
	ID        string         `json:"id"`
	Params    ParameterSet   `json:"parameters"`
	Mode      string         `json:"mode"`
	Curve     PredictedCurve `json:"predicted"`
	CreatedAt time.Time      `json:"created_at"`
}
