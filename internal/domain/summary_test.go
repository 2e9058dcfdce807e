package domain

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	ds := Dataset{
		"A2": {reading(0, 0.1), reading(time.Hour, 0.5)},
		"B2": {reading(0, 0.1), reading(time.Hour, 0.3), reading(2*time.Hour, 0.7)},
		"C2": {reading(0, 0.2)},
	}
	model := &CorrelationModel{Optimal: OptimalParameters{MixCycles: 4, MixHeight: 2.4, MixVolume: 95}}

	sum := Summarize(ds, model)

	if sum.TotalWells != 3 {
		t.Errorf("TotalWells = %d, want 3", sum.TotalWells)
	}
	if sum.TotalDataPoints != 6 {
		t.Errorf("TotalDataPoints = %d, want 6", sum.TotalDataPoints)
	}
	if sum.BestWell != "B2" || sum.BestMaxOD != 0.7 {
		t.Errorf("best = %s (%v), want B2 (0.7)", sum.BestWell, sum.BestMaxOD)
	}
	if sum.WorstWell != "C2" || sum.WorstMaxOD != 0.2 {
		t.Errorf("worst = %s (%v), want C2 (0.2)", sum.WorstWell, sum.WorstMaxOD)
	}
	if math.Abs(sum.AverageMaxOD-(0.5+0.7+0.2)/3) > 1e-9 {
		t.Errorf("AverageMaxOD = %v", sum.AverageMaxOD)
	}
	if sum.Optimal == nil || sum.Optimal.MixCycles != 4 {
		t.Errorf("expected model optimum to be carried, got %+v", sum.Optimal)
	}
}

func TestSummarize_EmptyDataset(t *testing.T) {
	sum := Summarize(Dataset{}, nil)

	if sum.TotalWells != 0 || sum.AverageMaxOD != 0 || sum.BestWell != "" || sum.Optimal != nil {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

func TestSortWellIDs(t *testing.T) {
	ids := []string{"B10", "A3", "B2", "A12", "A2"}

	SortWellIDs(ids)

	want := []string{"A2", "A3", "A12", "B2", "B10"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("SortWellIDs = %v, want %v", ids, want)
	}
}
