// Package export writes chart data as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/guregu/null.v3"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// Default download names.
const (
	TimelineCSVName   = "bacterial_growth_data.csv"
	TimelinePNGName   = "bacterial_growth_chart.png"
	PredictionCSVName = "predicted_growth_data.csv"
	PredictionPNGName = "predicted_growth_chart.png"
)

// TimelineCSV writes one column per well. Missing readings are empty cells.
func TimelineCSV(w io.Writer, tl *domain.AlignedTimeline) error {
	header := make([]string, 0, len(tl.Wells)+1)
	header = append(header, "Time")
	for _, id := range tl.Wells {
		header = append(header, domain.SeriesLabel(id))
	}

	rows := make([][]string, 0, tl.Len())
	for i, label := range tl.Labels {
		row := make([]string, 0, len(header))
		row = append(row, label)
		for _, id := range tl.Wells {
			row = append(row, formatNullable(tl.Series[id][i]))
		}
		rows = append(rows, row)
	}

	return write(w, header, rows)
}

// PredictionCSV writes the predicted curve as a single series.
func PredictionCSV(w io.Writer, c domain.PredictedCurve) error {
	rows := make([][]string, 0, len(c.TimeLabels))
	for i, label := range c.TimeLabels {
		value := ""
		if i < len(c.Densities) {
			value = formatFloat(c.Densities[i])
		}
		rows = append(rows, []string{label, value})
	}
	return write(w, []string{"Time", domain.PredictionLabel}, rows)
}

func write(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatNullable(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
