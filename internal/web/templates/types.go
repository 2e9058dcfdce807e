package templates

import (
	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
)

type DashboardData struct {
	Summary    domain.DatasetSummary
	Mode       string // "model" or "fallback"
	Last       *domain.Recommendation
	History    app.HistoryView
	WellsShown []string
}
