package otel

import (
	"context"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// NoOpRecorder is a metrics recorder that does nothing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new no-op recorder for graceful degradation.
func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (r *NoOpRecorder) RecordIngest(ctx context.Context, wellID string, points int, err error) {}

func (r *NoOpRecorder) RecordRecommendation(ctx context.Context, rec *domain.Recommendation) {}

func (r *NoOpRecorder) RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet) {}

func (r *NoOpRecorder) Close(ctx context.Context) error {
	return nil
}
