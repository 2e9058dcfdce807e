// Package app owns the dashboard state and exposes every user action.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/export"
	"github.com/emiliopalmerini/growthlab/internal/growth"
	"github.com/emiliopalmerini/growthlab/internal/ingest"
	"github.com/emiliopalmerini/growthlab/internal/ports"
	"github.com/emiliopalmerini/growthlab/internal/recommend"
)

// Acknowledgements shown after a judgement.
const (
	MessageAccepted = "optimization accepted"
	MessageRejected = "optimization denied"
)

var (
	// ErrUnknownRecommendation is returned when judging an ID that is not the
	// current, unjudged recommendation.
	ErrUnknownRecommendation = errors.New("unknown or stale recommendation")
	// ErrNoRecommendation is returned by prediction actions before any recommendation exists.
	ErrNoRecommendation = errors.New("no recommendation generated yet")
)

// State is everything the dashboard shares between actions.
type State struct {
	Dataset  domain.Dataset
	Timeline *domain.AlignedTimeline
	Model    *domain.CorrelationModel
	History  domain.JudgedHistory
	// Last is the most recent recommendation. Judged is set once it was accepted or rejected.
	Last   *domain.Recommendation
	Judged bool
}

// HistoryView is a snapshot of the judged history.
type HistoryView struct {
	Accepted []domain.ParameterSet `json:"accepted"`
	Rejected []domain.ParameterSet `json:"rejected"`
}

// Service serializes access to State. Reads may run concurrently; the last
// recommendation slot follows last-call-wins.
type Service struct {
	mu    sync.RWMutex
	state State

	recommender *recommend.Recommender
	synth       *growth.Synthesizer
	renderer    ports.ChartRenderer
	metrics     ports.MetricsRecorder
	logger      *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a Service with an empty dataset and no model.
func NewService(
	recommender *recommend.Recommender,
	synth *growth.Synthesizer,
	renderer ports.ChartRenderer,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		state:       State{Dataset: domain.Dataset{}, Timeline: domain.Align(domain.Dataset{})},
		recommender: recommender,
		synth:       synth,
		renderer:    renderer,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Load fetches every well through the loader and replaces the dataset.
func (s *Service) Load(ctx context.Context, loader *ingest.Loader, wellIDs []string) domain.Dataset {
	ds := loader.LoadAll(ctx, wellIDs)
	s.SetDataset(ds)
	return ds
}

// LoadFromRepository replaces the dataset with the stored readings.
func (s *Service) LoadFromRepository(ctx context.Context, repo ports.DatasetRepository) (domain.Dataset, error) {
	ds, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored dataset: %w", err)
	}
	s.SetDataset(ds)
	s.logger.Info("dataset loaded from database",
		zap.Strings("wells", ds.WellIDs()),
		zap.Int("points", ds.PointCount()))
	return ds, nil
}

// SetDataset replaces the dataset and recomputes the aligned timeline.
func (s *Service) SetDataset(ds domain.Dataset) {
	if ds == nil {
		ds = domain.Dataset{}
	}
	tl := domain.Align(ds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Dataset = ds
	s.state.Timeline = tl
}

// SetModel installs the correlation model. A nil model selects fallback mode.
func (s *Service) SetModel(m *domain.CorrelationModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Model = m
}

// Model returns the current model, or nil.
func (s *Service) Model() *domain.CorrelationModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Model
}

// Dataset returns the loaded dataset. Callers must not modify it.
func (s *Service) Dataset() domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Dataset
}

// Timeline returns the aligned timeline of the loaded dataset.
func (s *Service) Timeline() *domain.AlignedTimeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Timeline
}

// Summary describes the loaded dataset.
func (s *Service) Summary() domain.DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Summarize(s.state.Dataset, s.state.Model)
}

// Recommend generates a new recommendation and its predicted curve. It
// replaces the previous recommendation whether or not that one was judged.
func (s *Service) Recommend(ctx context.Context) *domain.Recommendation {
	s.mu.Lock()
	model := s.state.Model
	params := s.recommender.Recommend(model, &s.state.History)
	rec := &domain.Recommendation{
		ID:        s.newID(),
		Params:    params,
		Mode:      recommend.Mode(model),
		Curve:     s.synth.Predict(params, model, s.state.Dataset),
		CreatedAt: s.now(),
	}
	s.state.Last = rec
	s.state.Judged = false
	s.mu.Unlock()

	s.metrics.RecordRecommendation(ctx, rec)
	s.logger.Info("recommendation generated",
		zap.String("id", rec.ID),
		zap.String("mode", rec.Mode),
		zap.Int("mix_cycles", params.MixCycles),
		zap.Float64("mix_height", params.MixHeight),
		zap.Int("mix_volume", params.MixVolume),
		zap.Int("passaging_time", params.PassagingTime))
	return rec
}

// Retry discards the current recommendation and generates another.
func (s *Service) Retry(ctx context.Context) *domain.Recommendation {
	return s.Recommend(ctx)
}

// Accept records the recommendation with the given ID as accepted.
func (s *Service) Accept(ctx context.Context, id string) (*domain.Recommendation, error) {
	return s.judge(ctx, id, ports.VerdictAccepted)
}

// Reject records the recommendation with the given ID as rejected.
func (s *Service) Reject(ctx context.Context, id string) (*domain.Recommendation, error) {
	return s.judge(ctx, id, ports.VerdictRejected)
}

func (s *Service) judge(ctx context.Context, id, verdict string) (*domain.Recommendation, error) {
	s.mu.Lock()
	rec := s.state.Last
	if rec == nil || rec.ID != id || s.state.Judged {
		s.mu.Unlock()
		return nil, ErrUnknownRecommendation
	}
	if verdict == ports.VerdictAccepted {
		s.state.History.Accept(rec.Params)
	} else {
		s.state.History.Reject(rec.Params)
	}
	s.state.Judged = true
	s.mu.Unlock()

	s.metrics.RecordJudgement(ctx, verdict, rec.Params)
	s.logger.Info("recommendation judged", zap.String("id", id), zap.String("verdict", verdict))
	return rec, nil
}

// LastRecommendation returns the most recent recommendation, or nil.
func (s *Service) LastRecommendation() *domain.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Last
}

// History returns copies of the accepted and rejected lists.
func (s *Service) History() HistoryView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HistoryView{
		Accepted: s.state.History.Accepted(),
		Rejected: s.state.History.Rejected(),
	}
}

// ExportTimelineCSV writes the aligned timeline as CSV.
func (s *Service) ExportTimelineCSV(w io.Writer) error {
	return export.TimelineCSV(w, s.Timeline())
}

// ExportPredictionCSV writes the last predicted curve as CSV.
func (s *Service) ExportPredictionCSV(w io.Writer) error {
	rec := s.LastRecommendation()
	if rec == nil {
		return ErrNoRecommendation
	}
	return export.PredictionCSV(w, rec.Curve)
}

// RenderTimeline draws the aligned timeline with the configured renderer.
func (s *Service) RenderTimeline(w io.Writer) error {
	return s.renderer.RenderTimeline(w, s.Timeline())
}

// RenderPrediction draws the last predicted curve with the configured renderer.
func (s *Service) RenderPrediction(w io.Writer) error {
	rec := s.LastRecommendation()
	if rec == nil {
		return ErrNoRecommendation
	}
	return s.renderer.RenderPrediction(w, rec.Curve)
}
