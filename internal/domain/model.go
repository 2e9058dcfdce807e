package domain

// DefaultReferenceWell is the well whose measured doubling time anchors predictions.
const DefaultReferenceWell = "B2"

// CorrelationModel is the static optimisation model produced by the analyzer.
type CorrelationModel struct {
	Optimal      OptimalParameters
	Correlations CorrelationInsights
	Reference    ReferenceAnalysis
}

// OptimalParameters are the mean parameters of the best-growing wells.
type OptimalParameters struct {
	MixCycles  float64
	MixHeight  float64
	MixVolume  float64
	Confidence float64
}

// CorrelationInsights are Pearson coefficients of each mix parameter against
// growth score and against doubling time.
type CorrelationInsights struct {
	CyclesVsGrowth   float64
	VolumeVsGrowth   float64
	HeightVsGrowth   float64
	CyclesVsDoubling float64
	VolumeVsDoubling float64
	HeightVsDoubling float64
}

// ReferenceAnalysis describes the reference well's growth phase, if it had one.
type ReferenceAnalysis struct {
	WellID       string
	Found        bool
	DoublingTime float64
	GrowthScore  float64
	Rank         int
}
