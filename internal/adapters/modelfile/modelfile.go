// Package modelfile reads and writes the correlation model JSON document.
package modelfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/emiliopalmerini/growthlab/internal/analysis"
	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// DefaultPath is where the analyzer writes the model.
const DefaultPath = "enhanced_learning_model.json"

// TopWellsListed is how many ranked wells the document lists.
const TopWellsListed = 10

// ErrInvalidModel is returned for documents without optimal parameters.
var ErrInvalidModel = errors.New("model document has no optimal_parameters")

// Document is the on-disk model format.
type Document struct {
	ModelType           string                             `json:"model_type"`
	CreatedAt           string                             `json:"created_at"`
	DataSummary         DataSummary                        `json:"data_summary"`
	CorrelationInsights Insights                           `json:"correlation_insights"`
	OptimalParameters   *Optimal                           `json:"optimal_parameters"`
	Reference           Reference                          `json:"b2_analysis"`
	TopPerformingWells  []TopWell                          `json:"top_performing_wells"`
	ParameterRanges     map[string]analysis.ParameterRange `json:"parameter_ranges"`
}

type DataSummary struct {
	TotalWellsAnalyzed  int  `json:"total_wells_analyzed"`
	ConsiderDataPoints  int  `json:"consider_data_points"`
	ReferencePreference bool `json:"b2_preference"`
}

type Insights struct {
	CyclesVsGrowth   float64 `json:"mix_cycles_vs_growth"`
	VolumeVsGrowth   float64 `json:"mix_volume_vs_growth"`
	HeightVsGrowth   float64 `json:"mix_height_vs_growth"`
	CyclesVsDoubling float64 `json:"mix_cycles_vs_doubling"`
	VolumeVsDoubling float64 `json:"mix_volume_vs_doubling"`
	HeightVsDoubling float64 `json:"mix_height_vs_doubling"`
}

type Optimal struct {
	MixCycles  float64 `json:"mix_cycles"`
	MixVolume  float64 `json:"mix_volume"`
	MixHeight  float64 `json:"mix_height"`
	Confidence float64 `json:"confidence"`
}

type Reference struct {
	WellID      string                    `json:"well_id,omitempty"`
	Found       bool                      `json:"found"`
	Performance *analysis.WellPerformance `json:"performance,omitempty"`
	Rank        int                       `json:"rank,omitempty"`
}

type TopWell struct {
	WellID       string  `json:"well_id"`
	MixCycles    int     `json:"mix_cycles"`
	MixVolume    int     `json:"mix_volume"`
	MixHeight    float64 `json:"mix_height"`
	GrowthScore  float64 `json:"growth_score"`
	DoublingTime float64 `json:"doubling_time"`
	IsReference  bool    `json:"is_b2"`
}

// FromReport converts an analysis report into a document.
func FromReport(r *analysis.Report) Document {
	doc := Document{
		ModelType: analysis.ModelType,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		DataSummary: DataSummary{
			TotalWellsAnalyzed:  len(r.Wells),
			ConsiderDataPoints:  r.ConsiderPoints,
			ReferencePreference: r.Reference.Found,
		},
		CorrelationInsights: Insights{
			CyclesVsGrowth:   r.Correlations.MixCycles.GrowthScore,
			VolumeVsGrowth:   r.Correlations.MixVolume.GrowthScore,
			HeightVsGrowth:   r.Correlations.MixHeight.GrowthScore,
			CyclesVsDoubling: r.Correlations.MixCycles.DoublingTime,
			VolumeVsDoubling: r.Correlations.MixVolume.DoublingTime,
			HeightVsDoubling: r.Correlations.MixHeight.DoublingTime,
		},
		OptimalParameters: &Optimal{
			MixCycles:  round(r.Optimal.MixCycles, 1),
			MixVolume:  round(r.Optimal.MixVolume, 1),
			MixHeight:  round(r.Optimal.MixHeight, 1),
			Confidence: round(r.Optimal.Confidence, 3),
		},
		Reference: Reference{
			WellID:      r.Reference.WellID,
			Found:       r.Reference.Found,
			Performance: r.Reference.Performance,
			Rank:        r.Reference.Rank,
		},
		ParameterRanges: make(map[string]analysis.ParameterRange, len(r.Ranges)),
	}

	for name, pr := range r.Ranges {
		pr.Optimal = round(pr.Optimal, 1)
		doc.ParameterRanges[name] = pr
	}

	for i, w := range r.Wells {
		if i == TopWellsListed {
			break
		}
		doc.TopPerformingWells = append(doc.TopPerformingWells, TopWell{
			WellID:       w.WellID,
			MixCycles:    w.Parameters.MixCycles,
			MixVolume:    w.Parameters.MixVolume,
			MixHeight:    w.Parameters.MixHeight,
			GrowthScore:  round(w.Growth.Phase.GrowthScore, 4),
			DoublingTime: round(w.Growth.Phase.DoublingTime, 2),
			IsReference:  w.IsReference,
		})
	}
	return doc
}

// Model extracts what the recommender needs from a document.
func (d Document) Model() (*domain.CorrelationModel, error) {
	if d.OptimalParameters == nil {
		return nil, ErrInvalidModel
	}

	ins := d.CorrelationInsights
	m := &domain.CorrelationModel{
		Optimal: domain.OptimalParameters{
			MixCycles:  d.OptimalParameters.MixCycles,
			MixHeight:  d.OptimalParameters.MixHeight,
			MixVolume:  d.OptimalParameters.MixVolume,
			Confidence: d.OptimalParameters.Confidence,
		},
		Correlations: domain.CorrelationInsights{
			CyclesVsGrowth:   ins.CyclesVsGrowth,
			VolumeVsGrowth:   ins.VolumeVsGrowth,
			HeightVsGrowth:   ins.HeightVsGrowth,
			CyclesVsDoubling: ins.CyclesVsDoubling,
			VolumeVsDoubling: ins.VolumeVsDoubling,
			HeightVsDoubling: ins.HeightVsDoubling,
		},
		Reference: domain.ReferenceAnalysis{
			WellID: d.Reference.WellID,
			Found:  d.Reference.Found,
			Rank:   d.Reference.Rank,
		},
	}
	if m.Reference.WellID == "" {
		m.Reference.WellID = domain.DefaultReferenceWell
	}
	if p := d.Reference.Performance; p != nil {
		m.Reference.DoublingTime = p.Growth.Phase.DoublingTime
		m.Reference.GrowthScore = p.Growth.Phase.GrowthScore
	}
	return m, nil
}

// Decode reads a document and returns its model.
func Decode(r io.Reader) (*domain.CorrelationModel, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return doc.Model()
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Save writes the document to path.
func Save(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := Encode(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
