// Package chart renders dashboard charts as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// PNGRenderer implements ports.ChartRenderer with go-chart.
type PNGRenderer struct {
	width  int
	height int
}

// NewPNGRenderer creates a renderer. Non-positive sizes fall back to the defaults.
func NewPNGRenderer(width, height int) *PNGRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PNGRenderer{width: width, height: height}
}

// RenderTimeline draws one line per well against hours since the first reading.
func (r *PNGRenderer) RenderTimeline(w io.Writer, tl *domain.AlignedTimeline) error {
	if tl == nil || tl.Len() == 0 {
		return ErrNoData
	}

	hours := make([]float64, tl.Len())
	for i, ts := range tl.Timestamps {
		hours[i] = ts.Sub(tl.Timestamps[0]).Hours()
	}

	var (
		series []chart.Series
		maxOD  float64
	)
	for i, id := range tl.Wells {
		var xs, ys []float64
		for j, v := range tl.Series[id] {
			if !v.Valid {
				continue
			}
			xs = append(xs, hours[j])
			ys = append(ys, v.Float64)
			maxOD = math.Max(maxOD, v.Float64)
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Well " + id,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(i),
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ch := r.newChart("Bacterial Growth Curves", series)
	ch.XAxis = chart.XAxis{
		Name:           "Time (hours)",
		Range:          &chart.ContinuousRange{Min: 0, Max: math.Max(hours[len(hours)-1], 1)},
		ValueFormatter: hourFormatter,
	}
	ch.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: yMax(maxOD)}
	return render(w, ch)
}

// RenderPrediction draws the predicted curve with its time labels as ticks.
func (r *PNGRenderer) RenderPrediction(w io.Writer, c domain.PredictedCurve) error {
	if len(c.Densities) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(c.Densities))
	ticks := make([]chart.Tick, 0, len(c.Densities))
	for i := range c.Densities {
		xs[i] = float64(i)
		if i < len(c.TimeLabels) {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: c.TimeLabels[i]})
		}
	}

	series := []chart.Series{chart.ContinuousSeries{
		Name:    domain.PredictionLabel,
		XValues: xs,
		YValues: append([]float64(nil), c.Densities...),
		Style:   lineStyle(0),
	}}

	ch := r.newChart("Predicted Growth Curve", series)
	ch.XAxis = chart.XAxis{
		Name:  "Time (hours)",
		Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(len(xs)-1), 1)},
		Ticks: ticks,
	}
	ch.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: yMax(c.MaxDensity)}
	return render(w, ch)
}

func (r *PNGRenderer) newChart(title string, series []chart.Series) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      chart.YAxis{Name: "OD600"},
		Series:     series,
	}
}

func render(w io.Writer, ch chart.Chart) error {
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func lineStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: chart.GetDefaultColor(i),
		StrokeWidth: 2,
		DotColor:    chart.GetDefaultColor(i),
		DotWidth:    2,
	}
}

func hourFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0fh", f)
	}
	return ""
}

// yMax leaves headroom above the highest reading so lines don't hug the border.
func yMax(max float64) float64 {
	if max <= 0 {
		return 1
	}
	return math.Ceil(max*11) / 10
}
