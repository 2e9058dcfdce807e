package modelfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/growthlab/internal/analysis"
	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// A document in the layout the analyzer has always produced, including
// fields the recommender ignores.
const legacyDoc = `{
  "model_type": "correlation_based_optimization",
  "created_at": "2025-06-01T12:00:00",
  "data_summary": {"total_wells_analyzed": 9, "consider_data_points": 812, "b2_preference": true},
  "correlation_insights": {
    "mix_cycles_vs_growth": -0.231,
    "mix_volume_vs_growth": -0.082,
    "mix_height_vs_growth": 0.319,
    "mix_cycles_vs_doubling": 0.25,
    "mix_volume_vs_doubling": -0.12,
    "mix_height_vs_doubling": -0.41
  },
  "optimal_parameters": {"mix_cycles": 4.4, "mix_volume": 96.0, "mix_height": 2.4, "confidence": 0.556},
  "b2_analysis": {
    "found": true,
    "performance": {
      "well_id": "B2",
      "parameters": {"mix_cycles": 5, "mix_volume": 100, "mix_height": 2},
      "growth_analysis": {"growth_phase": {"doubling_time": 2.75, "growth_score": 0.21}},
      "is_b2": true
    },
    "rank": 3
  },
  "top_performing_wells": [{"well_id": "A2", "mix_cycles": 3, "mix_volume": 80, "mix_height": 3, "growth_score": 0.3, "doubling_time": 2.1, "is_b2": false}]
}`

func TestDecode_LegacyDocument(t *testing.T) {
	m, err := Decode(strings.NewReader(legacyDoc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if m.Optimal.MixCycles != 4.4 || m.Optimal.MixVolume != 96 || m.Optimal.MixHeight != 2.4 {
		t.Errorf("optimal = %+v", m.Optimal)
	}
	if m.Correlations.HeightVsGrowth != 0.319 || m.Correlations.HeightVsDoubling != -0.41 {
		t.Errorf("correlations = %+v", m.Correlations)
	}
	if !m.Reference.Found || m.Reference.DoublingTime != 2.75 || m.Reference.Rank != 3 || m.Reference.WellID != "B2" {
		t.Errorf("reference = %+v", m.Reference)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"optimal_parameters": `},
		{"no optimum", `{"correlation_insights": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := Decode(strings.NewReader(`{}`))
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestDecode_ReferenceNotFound(t *testing.T) {
	m, err := Decode(strings.NewReader(`{"optimal_parameters": {"mix_cycles": 5}, "b2_analysis": {"found": false}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if m.Reference.Found || m.Reference.DoublingTime != 0 {
		t.Errorf("reference = %+v", m.Reference)
	}
}

func TestFromReport_RoundTrip(t *testing.T) {
	perf := analysis.WellPerformance{
		WellID:      "B2",
		Parameters:  analysis.WellParameters{MixCycles: 5, MixVolume: 100, MixHeight: 2},
		Growth:      analysis.WellGrowth{WellID: "B2", Phase: analysis.GrowthPhase{DoublingTime: 2.7777, GrowthScore: 0.123456}},
		IsReference: true,
	}
	report := &analysis.Report{
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ConsiderPoints: 400,
		Wells:          []analysis.WellPerformance{perf},
		Correlations: analysis.CorrelationMatrix{
			MixCycles: analysis.MetricCorrelations{GrowthScore: -0.5, DoublingTime: 0.4},
			MixHeight: analysis.MetricCorrelations{GrowthScore: 0.3},
		},
		Optimal:   domain.OptimalParameters{MixCycles: 4.44, MixVolume: 95.55, MixHeight: 2.26, Confidence: 1.0 / 3.0},
		Reference: analysis.ReferenceReport{WellID: "B2", Found: true, Performance: &perf, Rank: 1},
		Ranges:    map[string]analysis.ParameterRange{"mix_cycles": {Min: 5, Max: 5, Optimal: 5.04}},
	}
	doc := FromReport(report)
	if doc.OptimalParameters.MixCycles != 4.4 || doc.OptimalParameters.Confidence != 0.333 {
		t.Errorf("rounding: %+v", doc.OptimalParameters)
	}
	if doc.ParameterRanges["mix_cycles"].Optimal != 5 {
		t.Errorf("range optimum not rounded: %+v", doc.ParameterRanges)
	}
	if len(doc.TopPerformingWells) != 1 || doc.TopPerformingWells[0].GrowthScore != 0.1235 || doc.TopPerformingWells[0].DoublingTime != 2.78 {
		t.Errorf("top wells: %+v", doc.TopPerformingWells)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := Save(path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if m.Optimal.MixHeight != 2.3 || m.Correlations.CyclesVsGrowth != -0.5 || m.Correlations.CyclesVsDoubling != 0.4 {
		t.Errorf("model after round trip = %+v", m)
	}
	if m.Reference.DoublingTime != 2.7777 || m.Reference.Rank != 1 {
		t.Errorf("reference after round trip = %+v", m.Reference)
	}
}
