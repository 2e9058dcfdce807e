package ports

import (
	"io"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// ChartRenderer draws the dashboard charts.
type ChartRenderer interface {
	// RenderTimeline draws one line per well. Missing values are skipped.
	RenderTimeline(w io.Writer, tl *domain.AlignedTimeline) error
	// RenderPrediction draws a single predicted curve.
	RenderPrediction(w io.Writer, c domain.PredictedCurve) error
}
