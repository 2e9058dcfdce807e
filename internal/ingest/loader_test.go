package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/logging"
)

type memorySource map[string]string

func (m memorySource) Open(ctx context.Context, wellID string) (io.ReadCloser, error) {
	doc, ok := m[wellID]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

type countingRecorder struct {
	mu     sync.Mutex
	ingest map[string]error
}

func (r *countingRecorder) RecordIngest(ctx context.Context, wellID string, points int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ingest == nil {
		r.ingest = make(map[string]error)
	}
	r.ingest[wellID] = err
}

func (r *countingRecorder) RecordRecommendation(ctx context.Context, rec *domain.Recommendation) {}

func (r *countingRecorder) RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet) {
}

func (r *countingRecorder) Close(ctx context.Context) error { return nil }

const wellDoc = `timestamp,absorbance_od600,consider_data,well_id
2025-06-01T10:00:00Z,0.30,true,A2
2025-06-01T08:00:00Z,0.10,TRUE,A2
2025-06-01T09:00:00Z,0.20,false,A2

2025-06-01T11:00:00Z,not-a-number,true,A2
2025-06-01T12:00:00Z,0.50,true
yesterday-ish,0.60,true,A2
2025-06-01T13:00:00Z,0.70,True,A2
`

func TestParse(t *testing.T) {
	series, stats, err := Parse(strings.NewReader(wellDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("expected 3 kept readings, got %d", len(series))
	}
	wantOD := []float64{0.10, 0.30, 0.70}
	for i, r := range series {
		if r.OD600 != wantOD[i] {
			t.Errorf("series[%d].OD600 = %v, want %v", i, r.OD600, wantOD[i])
		}
		if !r.Included {
			t.Errorf("series[%d] should be included", i)
		}
		if r.Fields["well_id"] != "A2" {
			t.Errorf("series[%d] passthrough field = %q, want A2", i, r.Fields["well_id"])
		}
	}
	if !series[0].Timestamp.Equal(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("first timestamp = %v", series[0].Timestamp)
	}

	if stats.Rows != 7 {
		t.Errorf("Rows = %d, want 7", stats.Rows)
	}
	if stats.Kept != 3 || stats.Excluded != 1 || stats.Skipped != 3 {
		t.Errorf("stats = %+v, want kept=3 excluded=1 skipped=3", stats)
	}
}

func TestParse_NonFiniteAbsorbance(t *testing.T) {
	doc := "timestamp,absorbance_od600,consider_data\n" +
		"2025-06-01T08:00:00Z,0.1,true\n" +
		"2025-06-01T09:00:00Z,NaN,true\n" +
		"2025-06-01T10:00:00Z,Inf,true\n" +
		"2025-06-01T11:00:00Z,-infinity,true\n" +
		"2025-06-01T12:00:00Z,0.4,true\n"

	series, stats, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(series) != 2 || series[0].OD600 != 0.1 || series[1].OD600 != 0.4 {
		t.Fatalf("expected only the finite readings, got %+v", series)
	}
	if stats.Kept != 2 || stats.Skipped != 3 {
		t.Errorf("stats = %+v, want kept=2 skipped=3", stats)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, _, err := Parse(strings.NewReader("timestamp,absorbance_od600\n2025-06-01T10:00:00Z,0.3\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	if _, _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for an empty document")
	}
}

func TestParse_HeaderWhitespaceAndOrder(t *testing.T) {
	doc := " consider_data , timestamp ,absorbance_od600\nfalse,2025-06-01 08:00:00,0.1\ntrue,2025-06-01 09:00:00,0.2\n"

	series, _, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(series) != 1 || series[0].OD600 != 0.2 {
		t.Fatalf("expected one reading of 0.2, got %+v", series)
	}
	if series[0].Timestamp.Location() != time.UTC {
		t.Errorf("zone-less timestamps should be UTC, got %v", series[0].Timestamp.Location())
	}
}

func TestLoader_LoadAll_ToleratesFailures(t *testing.T) {
	src := memorySource{
		"A2": wellDoc,
		"B2": "timestamp,absorbance_od600,consider_data\n2025-06-01T08:00:00Z,0.1,false\n",
		"C2": "garbage\n",
	}
	rec := &countingRecorder{}
	loader := NewLoader(src, rec, logging.NewNop())

	ds := loader.LoadAll(context.Background(), []string{"A2", "B2", "C2", "D2"})

	if len(ds) != 1 {
		t.Fatalf("expected only A2 to survive, got wells %v", ds.WellIDs())
	}
	if len(ds["A2"]) != 3 {
		t.Errorf("A2 has %d readings, want 3", len(ds["A2"]))
	}
	if len(rec.ingest) != 4 {
		t.Errorf("expected an ingest record per well, got %d", len(rec.ingest))
	}
	if rec.ingest["D2"] == nil || rec.ingest["C2"] == nil {
		t.Error("expected failures to be recorded for C2 and D2")
	}
	if rec.ingest["B2"] != nil {
		t.Errorf("an empty well is not a failure, got %v", rec.ingest["B2"])
	}
}
