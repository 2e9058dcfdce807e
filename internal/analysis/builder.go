package analysis

import (
	"errors"
	"sort"
	"time"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// TopWells is how many of the best wells define the optimum.
const TopWells = 5

// ModelType identifies models produced by this package.
const ModelType = "correlation_based_optimization"

// ErrNoGrowthPhases is returned when no parameterized well has a usable growth phase.
var ErrNoGrowthPhases = errors.New("no well with both parameters and a growth phase")

// WellPerformance ties a well's parameters to its growth analysis.
type WellPerformance struct {
	WellID      string         `json:"well_id"`
	Parameters  WellParameters `json:"parameters"`
	Growth      WellGrowth     `json:"growth_analysis"`
	IsReference bool           `json:"is_reference"`
}

// ReferenceReport is the reference well's performance and rank, when it qualified.
type ReferenceReport struct {
	WellID      string           `json:"well_id"`
	Found       bool             `json:"found"`
	Performance *WellPerformance `json:"performance,omitempty"`
	Rank        int              `json:"rank,omitempty"`
}

// ParameterRange is the observed span of one parameter across analyzed wells.
type ParameterRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Optimal float64 `json:"optimal"`
}

// Report is the full outcome of an analysis run.
type Report struct {
	CreatedAt      time.Time
	ConsiderPoints int
	// Wells are ordered by growth score, best first.
	Wells        []WellPerformance
	Correlations CorrelationMatrix
	Optimal      domain.OptimalParameters
	Reference    ReferenceReport
	Ranges       map[string]ParameterRange
}

// Model converts the report into the model consumed by the recommender.
func (r *Report) Model() *domain.CorrelationModel {
	m := &domain.CorrelationModel{
		Optimal: r.Optimal,
		Correlations: domain.CorrelationInsights{
			CyclesVsGrowth:   r.Correlations.MixCycles.GrowthScore,
			VolumeVsGrowth:   r.Correlations.MixVolume.GrowthScore,
			HeightVsGrowth:   r.Correlations.MixHeight.GrowthScore,
			CyclesVsDoubling: r.Correlations.MixCycles.DoublingTime,
			VolumeVsDoubling: r.Correlations.MixVolume.DoublingTime,
			HeightVsDoubling: r.Correlations.MixHeight.DoublingTime,
		},
		Reference: domain.ReferenceAnalysis{
			WellID: r.Reference.WellID,
			Found:  r.Reference.Found,
			Rank:   r.Reference.Rank,
		},
	}
	if p := r.Reference.Performance; p != nil {
		m.Reference.DoublingTime = p.Growth.Phase.DoublingTime
		m.Reference.GrowthScore = p.Growth.Phase.GrowthScore
	}
	return m
}

// Builder runs the analysis.
type Builder struct {
	logger        *zap.Logger
	referenceWell string
	now           func() time.Time
}

// NewBuilder creates a Builder. An empty referenceWell uses domain.DefaultReferenceWell.
func NewBuilder(logger *zap.Logger, referenceWell string) *Builder {
	if referenceWell == "" {
		referenceWell = domain.DefaultReferenceWell
	}
	return &Builder{logger: logger, referenceWell: referenceWell, now: time.Now}
}

// Build analyzes every well that has parameters and ranks them by growth score.
func (b *Builder) Build(ds domain.Dataset, params map[string]WellParameters) (*Report, error) {
	var wells []WellPerformance
	for _, id := range ds.WellIDs() {
		p, ok := params[id]
		if !ok {
			b.logger.Debug("well has no parameters", zap.String("well", id))
			continue
		}
		growth, ok := AnalyzeWell(id, ds[id])
		if !ok {
			b.logger.Info("no growth phase detected", zap.String("well", id), zap.Int("points", len(ds[id])))
			continue
		}
		wells = append(wells, WellPerformance{
			WellID:      id,
			Parameters:  p,
			Growth:      growth,
			IsReference: id == b.referenceWell,
		})
	}
	if len(wells) == 0 {
		return nil, pfx.Err(ErrNoGrowthPhases)
	}

	sort.SliceStable(wells, func(i, j int) bool {
		return wells[i].Growth.Phase.GrowthScore > wells[j].Growth.Phase.GrowthScore
	})

	optimal, err := optimum(wells)
	if err != nil {
		return nil, pfx.Err(err)
	}

	report := &Report{
		CreatedAt:      b.now(),
		ConsiderPoints: ds.PointCount(),
		Wells:          wells,
		Correlations:   correlate(wells),
		Optimal:        optimal,
		Reference:      ReferenceReport{WellID: b.referenceWell},
		Ranges:         ranges(wells, optimal),
	}
	for i := range wells {
		if wells[i].IsReference {
			perf := wells[i]
			report.Reference.Found = true
			report.Reference.Performance = &perf
			report.Reference.Rank = i + 1
			break
		}
	}

	b.logger.Info("correlation model built",
		zap.Int("wells", len(wells)),
		zap.Float64("confidence", optimal.Confidence),
		zap.Bool("reference_found", report.Reference.Found))
	return report, nil
}

func optimum(wells []WellPerformance) (domain.OptimalParameters, error) {
	top := wells
	if len(top) > TopWells {
		top = top[:TopWells]
	}

	var cycles, volume, height stats.Float64Data
	for _, w := range top {
		cycles = append(cycles, float64(w.Parameters.MixCycles))
		volume = append(volume, float64(w.Parameters.MixVolume))
		height = append(height, w.Parameters.MixHeight)
	}

	var (
		opt domain.OptimalParameters
		err error
	)
	if opt.MixCycles, err = cycles.Mean(); err != nil {
		return opt, err
	}
	if opt.MixVolume, err = volume.Mean(); err != nil {
		return opt, err
	}
	if opt.MixHeight, err = height.Mean(); err != nil {
		return opt, err
	}
	opt.Confidence = float64(len(top)) / float64(len(wells))
	return opt, nil
}

func ranges(wells []WellPerformance, opt domain.OptimalParameters) map[string]ParameterRange {
	span := func(get func(WellParameters) float64, optimal float64) ParameterRange {
		data := make(stats.Float64Data, len(wells))
		for i, w := range wells {
			data[i] = get(w.Parameters)
		}
		lo, _ := data.Min()
		hi, _ := data.Max()
		return ParameterRange{Min: lo, Max: hi, Optimal: optimal}
	}
	return map[string]ParameterRange{
		"mix_cycles": span(func(p WellParameters) float64 { return float64(p.MixCycles) }, opt.MixCycles),
		"mix_volume": span(func(p WellParameters) float64 { return float64(p.MixVolume) }, opt.MixVolume),
		"mix_height": span(func(p WellParameters) float64 { return p.MixHeight }, opt.MixHeight),
	}
}
