package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/ports"
)

// Required column names.
const (
	ColumnTimestamp    = "timestamp"
	ColumnAbsorbance   = "absorbance_od600"
	ColumnConsiderData = "consider_data"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ParseStats counts what happened to the data rows of one document.
type ParseStats struct {
	Rows     int
	Kept     int
	Excluded int
	Skipped  int
}

// Loader reads well documents from a WellSource.
type Loader struct {
	source  ports.WellSource
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(source ports.WellSource, metrics ports.MetricsRecorder, logger *zap.Logger) *Loader {
	return &Loader{source: source, metrics: metrics, logger: logger}
}

// LoadWell fetches and parses one well. An empty series is not an error.
func (l *Loader) LoadWell(ctx context.Context, wellID string) (domain.WellSeries, error) {
	rc, err := l.source.Open(ctx, wellID)
	if err != nil {
		return nil, fmt.Errorf("failed to open well %s: %w", wellID, err)
	}
	defer func() { _ = rc.Close() }()

	series, stats, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse well %s: %w", wellID, err)
	}
	if stats.Skipped > 0 {
		l.logger.Debug("skipped malformed rows",
			zap.String("well", wellID),
			zap.Int("skipped", stats.Skipped),
			zap.Int("rows", stats.Rows))
	}
	return series, nil
}

// LoadAll loads every well concurrently and returns once all of them have
// finished. Failed or empty wells are logged and left out of the dataset.
func (l *Loader) LoadAll(ctx context.Context, wellIDs []string) domain.Dataset {
	ds := make(domain.Dataset, len(wellIDs))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range wellIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			series, err := l.LoadWell(ctx, id)
			l.metrics.RecordIngest(ctx, id, len(series), err)
			if err != nil {
				l.logger.Warn("no data for well", zap.String("well", id), zap.Error(err))
				return
			}
			if len(series) == 0 {
				l.logger.Info("well has no included readings", zap.String("well", id))
				return
			}

			mu.Lock()
			ds[id] = series
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	l.logger.Info("experimental data loaded",
		zap.Strings("wells", ds.WellIDs()),
		zap.Int("points", ds.PointCount()))
	return ds
}

// Parse reads a well CSV document. Rows with the wrong number of fields or
// unparseable values are skipped, and so are NaN or infinite absorbances.
// Only rows with consider_data=true are kept.
func Parse(r io.Reader) (domain.WellSeries, ParseStats, error) {
	var stats ParseStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, fmt.Errorf("empty document: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[header[i]] = i
	}
	for _, col := range []string{ColumnTimestamp, ColumnAbsorbance, ColumnConsiderData} {
		if _, ok := index[col]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var series domain.WellSeries
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.Rows++
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		stats.Rows++

		reading, ok := parseRow(header, index, record)
		if !ok {
			stats.Skipped++
			continue
		}
		if !reading.Included {
			stats.Excluded++
			continue
		}
		series = append(series, reading)
		stats.Kept++
	}

	series.SortByTime()
	return series, stats, nil
}

func parseRow(header []string, index map[string]int, record []string) (domain.WellReading, bool) {
	if len(record) != len(header) {
		return domain.WellReading{}, false
	}

	ts, err := parseTimestamp(strings.TrimSpace(record[index[ColumnTimestamp]]))
	if err != nil {
		return domain.WellReading{}, false
	}
	od, err := strconv.ParseFloat(strings.TrimSpace(record[index[ColumnAbsorbance]]), 64)
	if err != nil || math.IsNaN(od) || math.IsInf(od, 0) {
		return domain.WellReading{}, false
	}

	reading := domain.WellReading{
		Timestamp: ts,
		OD600:     od,
		Included:  strings.EqualFold(strings.TrimSpace(record[index[ColumnConsiderData]]), "true"),
	}
	for i, name := range header {
		if name == ColumnTimestamp || name == ColumnAbsorbance || name == ColumnConsiderData {
			continue
		}
		if reading.Fields == nil {
			reading.Fields = make(map[string]string)
		}
		reading.Fields[name] = strings.TrimSpace(record[i])
	}
	return reading, true
}

// parseTimestamp accepts any layout dateparse understands. Zone-less values are UTC.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return dateparse.ParseIn(s, time.UTC)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
