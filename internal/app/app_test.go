package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/growth"
	"github.com/emiliopalmerini/growthlab/internal/ingest"
	"github.com/emiliopalmerini/growthlab/internal/logging"
	"github.com/emiliopalmerini/growthlab/internal/ports"
	"github.com/emiliopalmerini/growthlab/internal/random"
	"github.com/emiliopalmerini/growthlab/internal/recommend"
)

type fakeRenderer struct {
	timelines   int
	predictions int
}

func (r *fakeRenderer) RenderTimeline(w io.Writer, tl *domain.AlignedTimeline) error {
	r.timelines++
	_, err := fmt.Fprintf(w, "timeline:%d", tl.Len())
	return err
}

func (r *fakeRenderer) RenderPrediction(w io.Writer, c domain.PredictedCurve) error {
	r.predictions++
	_, err := fmt.Fprintf(w, "prediction:%d", len(c.Densities))
	return err
}

type fakeMetrics struct {
	mu              sync.Mutex
	recommendations int
	verdicts        []string
}

func (m *fakeMetrics) RecordIngest(ctx context.Context, wellID string, points int, err error) {}

func (m *fakeMetrics) RecordRecommendation(ctx context.Context, rec *domain.Recommendation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations++
}

func (m *fakeMetrics) RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, verdict)
}

func (m *fakeMetrics) Close(ctx context.Context) error { return nil }

type fakeRepository struct {
	ds  domain.Dataset
	err error
}

func (r *fakeRepository) ReplaceWell(ctx context.Context, wellID string, series domain.WellSeries) error {
	return nil
}

func (r *fakeRepository) Load(ctx context.Context) (domain.Dataset, error) { return r.ds, r.err }

func (r *fakeRepository) ListWells(ctx context.Context) ([]string, error) { return r.ds.WellIDs(), nil }

func (r *fakeRepository) RecordImport(ctx context.Context, rec *domain.ImportRecord) error {
	return nil
}

func (r *fakeRepository) LastImport(ctx context.Context) (*domain.ImportRecord, error) {
	return nil, nil
}

type memorySource map[string]string

func (m memorySource) Open(ctx context.Context, wellID string) (io.ReadCloser, error) {
	doc, ok := m[wellID]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func testService(t *testing.T, src random.Source) (*Service, *fakeRenderer, *fakeMetrics) {
	t.Helper()
	renderer := &fakeRenderer{}
	metrics := &fakeMetrics{}
	svc := NewService(recommend.New(src), growth.New(src), renderer, metrics, logging.NewNop())

	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("rec-%d", ids)
	}
	svc.now = func() time.Time { return t0 }
	return svc, renderer, metrics
}

func testDataset() domain.Dataset {
	return domain.Dataset{
		"A2": {
			{Timestamp: t0, OD600: 0.1, Included: true},
			{Timestamp: t0.Add(time.Hour), OD600: 0.3, Included: true},
		},
		"B2": {
			{Timestamp: t0.Add(30 * time.Minute), OD600: 0.15, Included: true},
		},
	}
}

func TestService_Load(t *testing.T) {
	svc, _, _ := testService(t, random.NewSequence(0.5))
	src := memorySource{
		"A2": "timestamp,absorbance_od600,consider_data\n2025-06-01T08:00:00Z,0.1,true\n2025-06-01T09:00:00Z,0.2,true\n",
	}
	loader := ingest.NewLoader(src, &fakeMetrics{}, logging.NewNop())

	ds := svc.Load(context.Background(), loader, []string{"A2", "B2"})

	if len(ds) != 1 {
		t.Fatalf("expected one well, got %v", ds.WellIDs())
	}
	if svc.Timeline().Len() != 2 {
		t.Errorf("timeline has %d points, want 2", svc.Timeline().Len())
	}
	if svc.Summary().TotalDataPoints != 2 {
		t.Errorf("summary = %+v", svc.Summary())
	}
}

func TestService_LoadFromRepository(t *testing.T) {
	svc, _, _ := testService(t, random.NewSequence(0.5))

	if _, err := svc.LoadFromRepository(context.Background(), &fakeRepository{ds: testDataset()}); err != nil {
		t.Fatalf("LoadFromRepository failed: %v", err)
	}
	if got := svc.Timeline().Wells; len(got) != 2 {
		t.Errorf("timeline wells = %v", got)
	}

	_, err := svc.LoadFromRepository(context.Background(), &fakeRepository{err: errors.New("stream closed")})
	if err == nil {
		t.Fatal("expected repository error")
	}
	if len(svc.Dataset()) != 2 {
		t.Error("a failed load must keep the previous dataset")
	}
}

func TestService_RecommendFallback(t *testing.T) {
	svc, _, metrics := testService(t, random.NewSequence(0.5))
	svc.SetDataset(testDataset())

	rec := svc.Recommend(context.Background())

	want := domain.ParameterSet{MixCycles: 5, MixHeight: 2.5, MixVolume: 100, PassagingTime: 18}
	if rec.Params != want {
		t.Errorf("Params = %+v, want %+v", rec.Params, want)
	}
	if rec.Mode != domain.ModeFallback {
		t.Errorf("Mode = %q, want fallback", rec.Mode)
	}
	if len(rec.Curve.Densities) != len(growth.FallbackCurve().Densities) {
		t.Errorf("expected the fallback curve, got %+v", rec.Curve)
	}
	if rec.ID != "rec-1" || !rec.CreatedAt.Equal(t0) {
		t.Errorf("unexpected identity: %s at %v", rec.ID, rec.CreatedAt)
	}
	if metrics.recommendations != 1 {
		t.Errorf("recommendations recorded = %d, want 1", metrics.recommendations)
	}
}

func TestService_RecommendWithModel(t *testing.T) {
	svc, _, _ := testService(t, random.Seeded(7))
	svc.SetDataset(testDataset())
	svc.SetModel(&domain.CorrelationModel{
		Optimal: domain.OptimalParameters{MixCycles: 4, MixHeight: 2.4, MixVolume: 95},
	})

	rec := svc.Recommend(context.Background())

	if rec.Mode != domain.ModeModel {
		t.Errorf("Mode = %q, want model", rec.Mode)
	}
	if !rec.Params.Valid() {
		t.Errorf("params out of bounds: %+v", rec.Params)
	}
	if len(rec.Curve.Densities) != 7 {
		t.Errorf("expected 7 predicted points, got %d", len(rec.Curve.Densities))
	}
}

func TestService_AcceptReject(t *testing.T) {
	ctx := context.Background()
	svc, _, metrics := testService(t, random.NewSequence(0.5))

	first := svc.Recommend(ctx)
	if _, err := svc.Accept(ctx, first.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if _, err := svc.Accept(ctx, first.ID); !errors.Is(err, ErrUnknownRecommendation) {
		t.Errorf("judging twice should fail, got %v", err)
	}

	second := svc.Retry(ctx)
	if _, err := svc.Reject(ctx, first.ID); !errors.Is(err, ErrUnknownRecommendation) {
		t.Errorf("a stale ID should be rejected, got %v", err)
	}
	if _, err := svc.Reject(ctx, second.ID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, err := svc.Accept(ctx, "nope"); !errors.Is(err, ErrUnknownRecommendation) {
		t.Errorf("unknown ID should fail, got %v", err)
	}

	h := svc.History()
	if len(h.Accepted) != 1 || len(h.Rejected) != 1 {
		t.Errorf("history = %+v, want one accepted and one rejected", h)
	}
	if len(metrics.verdicts) != 2 || metrics.verdicts[0] != ports.VerdictAccepted || metrics.verdicts[1] != ports.VerdictRejected {
		t.Errorf("verdicts = %v", metrics.verdicts)
	}
}

func TestService_AcceptedHistoryFeedsFallback(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := testService(t, random.NewSequence(0.5))

	rec := svc.Recommend(ctx)
	if _, err := svc.Accept(ctx, rec.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	next := svc.Recommend(ctx)
	if next.Params != rec.Params {
		t.Errorf("with neutral jitter the mean of one accepted entry should repeat it: got %+v, want %+v", next.Params, rec.Params)
	}
}

func TestService_Exports(t *testing.T) {
	svc, renderer, _ := testService(t, random.NewSequence(0.5))
	svc.SetDataset(testDataset())

	var buf bytes.Buffer
	if err := svc.ExportPredictionCSV(&buf); !errors.Is(err, ErrNoRecommendation) {
		t.Errorf("expected ErrNoRecommendation, got %v", err)
	}
	if err := svc.RenderPrediction(&buf); !errors.Is(err, ErrNoRecommendation) {
		t.Errorf("expected ErrNoRecommendation, got %v", err)
	}

	buf.Reset()
	if err := svc.ExportTimelineCSV(&buf); err != nil {
		t.Fatalf("ExportTimelineCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Time,Well A2,Well B2" || len(lines) != 4 {
		t.Errorf("timeline CSV = %q", buf.String())
	}

	svc.Recommend(context.Background())
	buf.Reset()
	if err := svc.ExportPredictionCSV(&buf); err != nil {
		t.Fatalf("ExportPredictionCSV failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Time,"+domain.PredictionLabel) {
		t.Errorf("prediction CSV = %q", buf.String())
	}

	buf.Reset()
	if err := svc.RenderTimeline(&buf); err != nil || buf.String() != "timeline:3" {
		t.Errorf("RenderTimeline = %q, %v", buf.String(), err)
	}
	buf.Reset()
	if err := svc.RenderPrediction(&buf); err != nil || buf.String() != "prediction:7" {
		t.Errorf("RenderPrediction = %q, %v", buf.String(), err)
	}
	if renderer.timelines != 1 || renderer.predictions != 1 {
		t.Errorf("renderer calls = %d/%d", renderer.timelines, renderer.predictions)
	}
}

func TestService_ConcurrentActions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := testService(t, random.Seeded(1))
	svc.SetDataset(testDataset())
	svc.newID = func() string { return "shared" }

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := svc.Recommend(ctx)
			_, _ = svc.Accept(ctx, rec.ID)
		}()
		go func() {
			defer wg.Done()
			_ = svc.Summary()
			_ = svc.History()
			_ = svc.ExportTimelineCSV(io.Discard)
		}()
	}
	wg.Wait()

	if n := len(svc.History().Accepted); n == 0 || n > 20 {
		t.Errorf("accepted %d entries, want between 1 and 20", n)
	}
}
