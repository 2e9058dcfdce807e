// Package recommend proposes the next set of mixing parameters.
package recommend

import (
	"math"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/random"
)

// Source is the uniform [0,1) generator driving the nudges and jitter.
type Source = random.Source

// Blend weights applied when accepted history exists in model mode.
const (
	blendCurrent = 0.7
	blendHistory = 0.3
	blendWindow  = 3
)

// Defaults is the starting point in fallback mode when nothing was accepted yet.
var Defaults = domain.ParameterSet{MixCycles: 5, MixHeight: 2.5, MixVolume: 100, PassagingTime: 18}

// Recommender turns the correlation model and judged history into a parameter set.
type Recommender struct {
	rand Source
}

// New creates a Recommender. A nil source uses random.Default.
func New(src Source) *Recommender {
	if src == nil {
		src = random.Default()
	}
	return &Recommender{rand: src}
}

// Mode reports which strategy Recommend uses for the given model.
func Mode(model *domain.CorrelationModel) string {
	if model == nil {
		return domain.ModeFallback
	}
	return domain.ModeModel
}

// Recommend proposes a parameter set. The result always satisfies domain.Bounds.
func (r *Recommender) Recommend(model *domain.CorrelationModel, history *domain.JudgedHistory) domain.ParameterSet {
	if model == nil {
		return r.fallback(history)
	}
	return r.fromModel(model, history)
}

func (r *Recommender) fromModel(model *domain.CorrelationModel, history *domain.JudgedHistory) domain.ParameterSet {
	opt := model.Optimal
	cycles := math.Round(opt.MixCycles)
	volume := math.Round(opt.MixVolume)
	height := opt.MixHeight

	c := model.Correlations
	if c.HeightVsGrowth > 0.2 {
		height = math.Min(4, height+r.rand.Float64())
	}
	if c.CyclesVsGrowth < -0.1 {
		cycles = math.Max(1, math.Round(cycles-2*r.rand.Float64()))
	}
	if c.VolumeVsGrowth < 0 {
		volume = math.Max(50, math.Round(volume-20*r.rand.Float64()))
	}

	p := domain.ParameterSet{MixCycles: int(cycles), MixHeight: height, MixVolume: int(volume)}
	p.PassagingTime = PassagingTime(PassageStartOD, PassageTargetOD, PredictedDoublingTime(p, model))

	if recent := history.RecentAccepted(blendWindow); len(recent) > 0 {
		mean := meanOf(recent)
		p.MixCycles = int(math.Round(blendCurrent*float64(p.MixCycles) + blendHistory*mean.cycles))
		p.MixHeight = blendCurrent*p.MixHeight + blendHistory*mean.height
		p.MixVolume = int(math.Round(blendCurrent*float64(p.MixVolume) + blendHistory*mean.volume))
		p.PassagingTime = PassagingTime(PassageStartOD, PassageTargetOD, PredictedDoublingTime(p, model))
	}

	return p.Clamp()
}

func (r *Recommender) fallback(history *domain.JudgedHistory) domain.ParameterSet {
	p := Defaults
	if accepted := history.Accepted(); len(accepted) > 0 {
		mean := meanOf(accepted)
		p = domain.ParameterSet{
			MixCycles:     int(math.Round(mean.cycles)),
			MixHeight:     mean.height,
			MixVolume:     int(math.Round(mean.volume)),
			PassagingTime: int(math.Round(mean.passaging)),
		}
	}

	p.MixCycles += int(math.Floor(6*r.rand.Float64())) - 3
	p.MixHeight += 2*r.rand.Float64() - 1
	p.MixVolume += int(math.Floor(40*r.rand.Float64())) - 20
	p.PassagingTime += int(math.Floor(12*r.rand.Float64())) - 6

	return p.Clamp()
}

type means struct {
	cycles, height, volume, passaging float64
}

func meanOf(sets []domain.ParameterSet) means {
	var m means
	for _, p := range sets {
		m.cycles += float64(p.MixCycles)
		m.height += p.MixHeight
		m.volume += float64(p.MixVolume)
		m.passaging += float64(p.PassagingTime)
	}
	n := float64(len(sets))
	m.cycles /= n
	m.height /= n
	m.volume /= n
	m.passaging /= n
	return m
}
