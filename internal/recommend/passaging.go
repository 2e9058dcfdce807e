package recommend

import (
	"math"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// Passaging window used for the exponential growth phase.
const (
	PassageStartOD  = 0.1
	PassageTargetOD = 0.4

	// DefaultPassagingHours is returned when the inputs cannot describe growth.
	DefaultPassagingHours = 18
	// BaselineDoublingHours is used when the model has no reference doubling time.
	BaselineDoublingHours = 3.0
)

// PassagingTime returns the whole hours needed to grow from currentOD to
// targetOD at the given doubling time, clamped to the passaging bounds.
func PassagingTime(currentOD, targetOD, doubling float64) int {
	if currentOD <= 0 || targetOD <= 0 || doubling <= 0 || targetOD <= currentOD {
		return DefaultPassagingHours
	}
	hours := (math.Log(targetOD) - math.Log(currentOD)) * doubling / math.Ln2
	return int(domain.Bounds.PassagingTime.Clamp(math.Round(hours)))
}

// PredictedDoublingTime estimates the doubling time in hours for p from the
// reference well's measured doubling time and the model's doubling correlations.
func PredictedDoublingTime(p domain.ParameterSet, model *domain.CorrelationModel) float64 {
	if model == nil {
		return BaselineDoublingHours
	}

	baseline := BaselineDoublingHours
	if model.Reference.Found && model.Reference.DoublingTime > 0 {
		baseline = model.Reference.DoublingTime
	}

	c := model.Correlations
	factor := 1.0
	if c.CyclesVsDoubling > 0.2 {
		factor += float64(p.MixCycles-5) * 0.1
	}
	if c.VolumeVsDoubling < -0.1 {
		factor += float64(100-p.MixVolume) * 0.002
	}
	if c.HeightVsDoubling < -0.3 {
		factor += (p.MixHeight - 2) * 0.2
	}

	return math.Max(1.0, math.Min(8.0, baseline*factor))
}
