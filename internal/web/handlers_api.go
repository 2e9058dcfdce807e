package web

import (
	"errors"
	"net/http"

	"gopkg.in/guregu/null.v3"

	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
)

type chartDataset struct {
	Label string       `json:"label"`
	Data  []null.Float `json:"data"`
}

type timelineResponse struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type judgementResponse struct {
	Message        string                 `json:"message"`
	Recommendation *domain.Recommendation `json:"recommendation"`
}

func (s *Server) handleAPITimeline(w http.ResponseWriter, r *http.Request) {
	tl := s.svc.Timeline()

	resp := timelineResponse{
		Labels:   tl.Labels,
		Datasets: make([]chartDataset, 0, len(tl.Wells)),
	}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	for _, id := range tl.Wells {
		resp.Datasets = append(resp.Datasets, chartDataset{Label: domain.SeriesLabel(id), Data: tl.Series[id]})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	h := s.svc.History()
	if h.Accepted == nil {
		h.Accepted = []domain.ParameterSet{}
	}
	if h.Rejected == nil {
		h.Rejected = []domain.ParameterSet{}
	}
	s.writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleAPIRecommend(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusCreated, s.svc.Recommend(r.Context()))
}

func (s *Server) handleAPIAccept(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Accept(r.Context(), r.PathValue("id"))
	s.writeJudgement(w, rec, err, app.MessageAccepted)
}

func (s *Server) handleAPIReject(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Reject(r.Context(), r.PathValue("id"))
	s.writeJudgement(w, rec, err, app.MessageRejected)
}

func (s *Server) writeJudgement(w http.ResponseWriter, rec *domain.Recommendation, err error, msg string) {
	if errors.Is(err, app.ErrUnknownRecommendation) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, judgementResponse{Message: msg, Recommendation: rec})
}
