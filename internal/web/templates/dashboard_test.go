package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
)

func render(t *testing.T, data DashboardData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Dashboard(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func TestDashboard_WithRecommendation(t *testing.T) {
	data := DashboardData{
		Summary: domain.DatasetSummary{TotalWells: 2, TotalDataPoints: 96, AverageMaxOD: 0.5, BestWell: "B2", BestMaxOD: 0.7, WorstWell: "A2", WorstMaxOD: 0.3},
		Mode:    "model",
		Last: &domain.Recommendation{
			ID:     "rec-1",
			Params: domain.ParameterSet{MixCycles: 5, MixHeight: 2.5, MixVolume: 100, PassagingTime: 18},
		},
		History: app.HistoryView{
			Accepted: []domain.ParameterSet{{MixCycles: 4, MixHeight: 2, MixVolume: 90, PassagingTime: 12}},
		},
	}

	body := render(t, data)

	for _, want := range []string{
		"Correlation model",
		`data-id="rec-1"`,
		"Mix height: 2.5 mm",
		"Mix volume: 100 µL",
		"B2 (0.700)",
		"Accepted (1)",
		"Rejected (0)",
		"4 cycles, 2.0 mm, 90 µL, 12 h",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboard_WithoutRecommendation(t *testing.T) {
	body := render(t, DashboardData{Mode: "fallback"})

	if !strings.Contains(body, `<div id="recommendation" hidden></div>`) {
		t.Error("expected an empty hidden recommendation panel")
	}
	if !strings.Contains(body, "Exploration (no model loaded)") {
		t.Error("expected the exploration mode label")
	}
	if strings.Contains(body, "Best well") {
		t.Error("best well should be omitted for an empty dataset")
	}
}

func TestDashboard_EscapesValues(t *testing.T) {
	data := DashboardData{
		Summary: domain.DatasetSummary{TotalWells: 1, BestWell: "<b>A2</b>", WorstWell: "A2"},
		Last:    &domain.Recommendation{ID: `"><script>`},
	}

	body := render(t, data)

	if strings.Contains(body, "<b>A2</b>") || strings.Contains(body, `"><script>`) {
		t.Errorf("values were not escaped:\n%s", body)
	}
	if !strings.Contains(body, "&lt;b&gt;A2&lt;/b&gt;") {
		t.Error("expected the escaped well ID")
	}
}
