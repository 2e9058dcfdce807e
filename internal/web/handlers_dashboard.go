package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/recommend"
	"github.com/emiliopalmerini/growthlab/internal/web/templates"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := templates.DashboardData{
		Summary:    s.svc.Summary(),
		Mode:       recommend.Mode(s.svc.Model()),
		Last:       s.svc.LastRecommendation(),
		History:    s.svc.History(),
		WellsShown: s.svc.Timeline().Wells,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		s.logger.Error("failed to render dashboard", zap.Error(err))
	}
}
