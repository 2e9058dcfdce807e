package web

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/adapters/chart"
	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/export"
)

// Outputs are buffered so a failed render can still produce an error status.

func (s *Server) handleAPIChartGrowth(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.RenderTimeline(&buf); err != nil {
		s.renderFailed(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIChartPredicted(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.RenderPrediction(&buf); err != nil {
		s.renderFailed(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIExportTimeline(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.ExportTimelineCSV(&buf); err != nil {
		s.renderFailed(w, err)
		return
	}
	attachment(w, "text/csv", export.TimelineCSVName)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIExportPredicted(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.ExportPredictionCSV(&buf); err != nil {
		s.renderFailed(w, err)
		return
	}
	attachment(w, "text/csv", export.PredictionCSVName)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderFailed(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNoRecommendation), errors.Is(err, chart.ErrNoData):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("render failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
