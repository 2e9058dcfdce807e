package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

const (
	serviceName    = "growthlab"
	serviceVersion = "1.0.0"
)

// Ingest outcomes.
const (
	outcomeLoaded = "loaded"
	outcomeEmpty  = "empty"
	outcomeFailed = "failed"
)

// Recorder exports dashboard metrics to an OTEL Collector.
type Recorder struct {
	provider        *sdkmetric.MeterProvider
	wellsTotal      metric.Int64Counter
	readingsTotal   metric.Int64Counter
	recommendations metric.Int64Counter
	passagingHist   metric.Int64Histogram
	mixCyclesHist   metric.Int64Histogram
	judgementsTotal metric.Int64Counter
}

// NewRecorder creates a recorder that pushes to the configured OTLP endpoint.
func NewRecorder(ctx context.Context, cfg Config) (*Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newRecorder(provider)
}

func newRecorder(provider *sdkmetric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(serviceName)
	r := &Recorder{provider: provider}

	var err error
	r.wellsTotal, err = meter.Int64Counter(
		"growthlab_wells_total",
		metric.WithDescription("Wells fetched, by outcome"),
		metric.WithUnit("{well}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wells counter: %w", err)
	}

	r.readingsTotal, err = meter.Int64Counter(
		"growthlab_readings_total",
		metric.WithDescription("Included OD600 readings loaded"),
		metric.WithUnit("{reading}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating readings counter: %w", err)
	}

	r.recommendations, err = meter.Int64Counter(
		"growthlab_recommendations_total",
		metric.WithDescription("Recommendations generated, by mode"),
		metric.WithUnit("{recommendation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recommendations counter: %w", err)
	}

	r.passagingHist, err = meter.Int64Histogram(
		"growthlab_passaging_hours",
		metric.WithDescription("Recommended passaging time"),
		metric.WithUnit("h"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating passaging histogram: %w", err)
	}

	r.mixCyclesHist, err = meter.Int64Histogram(
		"growthlab_mix_cycles",
		metric.WithDescription("Recommended mix cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mix cycles histogram: %w", err)
	}

	r.judgementsTotal, err = meter.Int64Counter(
		"growthlab_judgements_total",
		metric.WithDescription("Recommendations accepted or rejected"),
		metric.WithUnit("{judgement}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating judgements counter: %w", err)
	}

	return r, nil
}

// RecordIngest counts one well fetch and the readings it produced.
func (r *Recorder) RecordIngest(ctx context.Context, wellID string, points int, err error) {
	outcome := outcomeLoaded
	switch {
	case err != nil:
		outcome = outcomeFailed
	case points == 0:
		outcome = outcomeEmpty
	}

	opt := metric.WithAttributes(
		attribute.String("well", wellID),
		attribute.String("outcome", outcome),
	)
	r.wellsTotal.Add(ctx, 1, opt)
	if points > 0 {
		r.readingsTotal.Add(ctx, int64(points), metric.WithAttributes(attribute.String("well", wellID)))
	}
}

// RecordRecommendation counts a generated recommendation and its parameters.
func (r *Recorder) RecordRecommendation(ctx context.Context, rec *domain.Recommendation) {
	opt := metric.WithAttributes(attribute.String("mode", rec.Mode))
	r.recommendations.Add(ctx, 1, opt)
	r.passagingHist.Record(ctx, int64(rec.Params.PassagingTime), opt)
	r.mixCyclesHist.Record(ctx, int64(rec.Params.MixCycles), opt)
}

// RecordJudgement counts an accept or reject.
func (r *Recorder) RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet) {
	r.judgementsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", verdict),
		attribute.Int("mix_cycles", p.MixCycles),
	))
}

// Close shuts down the recorder and flushes any pending metrics.
func (r *Recorder) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
