// Package growth synthesizes predicted OD600 growth curves for a parameter set.
package growth

import (
	"math"
	"strconv"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/random"
)

// Source is the uniform [0,1) generator adding biological variability.
type Source = random.Source

// Curve shape constants. The prediction covers 3 hours at 30 minute steps and
// the exponential phase is expected to reach TargetOD after 2 hours.
const (
	StartOD  = 0.1
	TargetOD = 0.4
	MaxOD    = 0.45

	horizonHours     = 3.0
	stepHours        = 0.5
	exponentialHours = 2.0
)

// Synthesizer builds predicted curves.
type Synthesizer struct {
	rand Source
}

// New creates a Synthesizer. A nil source uses random.Default.
func New(src Source) *Synthesizer {
	if src == nil {
		src = random.Default()
	}
	return &Synthesizer{rand: src}
}

// FallbackCurve is the fixed curve shown when no model or no data is loaded.
func FallbackCurve() domain.PredictedCurve {
	return domain.PredictedCurve{
		TimeLabels: []string{"0h", "0.5h", "1h", "1.5h", "2h", "2.5h", "3h"},
		Densities:  []float64{0.1, 0.12, 0.18, 0.28, 0.35, 0.34, 0.33},
		Slope:      0.3,
		MaxDensity: 0.35,
	}
}

// SlopeMultiplier scales the base exponential slope for p.
func SlopeMultiplier(p domain.ParameterSet) float64 {
	return 1 +
		(p.MixHeight-2)*0.1 +
		float64(5-p.MixCycles)*0.08 +
		float64(100-p.MixVolume)*0.001
}

// Predict synthesizes the growth curve expected for p. Without a model or
// without loaded data it returns FallbackCurve.
func (s *Synthesizer) Predict(p domain.ParameterSet, model *domain.CorrelationModel, ds domain.Dataset) domain.PredictedCurve {
	if model == nil || len(ds) == 0 {
		return FallbackCurve()
	}

	slope := math.Log(TargetOD/StartOD) / exponentialHours * SlopeMultiplier(p)

	n := int(horizonHours/stepHours) + 1
	curve := domain.PredictedCurve{
		TimeLabels: make([]string, 0, n),
		Densities:  make([]float64, 0, n),
		Slope:      slope,
	}

	for i := 0; i < n; i++ {
		t := float64(i) * stepHours
		curve.TimeLabels = append(curve.TimeLabels, strconv.FormatFloat(t, 'f', -1, 64)+"h")

		var od float64
		if t <= exponentialHours {
			base := StartOD * math.Exp(slope*t)
			variability := 0.05 + s.rand.Float64()*0.05
			factor := 1 + (s.rand.Float64()-0.5)*variability
			noise := (s.rand.Float64() - 0.5) * 0.02
			od = base*factor + noise
			if i > 0 {
				od = math.Max(curve.Densities[i-1]*0.95, od)
			}
		} else {
			peak := maxOf(curve.Densities[:5])
			od = peak + (s.rand.Float64()-0.5)*0.05 - (t-exponentialHours)*0.02
			od = math.Max(peak*0.9, od)
		}

		curve.Densities = append(curve.Densities, math.Min(MaxOD, math.Max(StartOD, od)))
	}

	curve.MaxDensity = maxOf(curve.Densities)
	return curve
}

func maxOf(values []float64) float64 {
	max := math.Inf(-1)
	for _, v := range values {
		max = math.Max(max, v)
	}
	return max
}
