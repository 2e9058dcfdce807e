package ports

import (
	"context"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// MetricsRecorder exports dashboard activity to an external observability system.
type MetricsRecorder interface {
	// RecordIngest records the outcome of loading one well.
	RecordIngest(ctx context.Context, wellID string, points int, err error)
	// RecordRecommendation records a generated recommendation.
	RecordRecommendation(ctx context.Context, rec *domain.Recommendation)
	// RecordJudgement records an accept or reject action.
	RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet)
	// Close shuts down the recorder and flushes any pending metrics.
	Close(ctx context.Context) error
}

// Judgement verdicts.
const (
	VerdictAccepted = "accepted"
	VerdictRejected = "rejected"
)
