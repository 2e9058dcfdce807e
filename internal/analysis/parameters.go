package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// ParameterRow is one line of a passaging parameter file.
type ParameterRow struct {
	DestinationWell string  `csv:"destination_well"`
	MixReps         int     `csv:"mix_reps"`
	MixVolume       int     `csv:"mix_volume_uL"`
	MixHeight       float64 `csv:"mix_height_mm"`
	CellVolume      int     `csv:"cell_volume_uL"`
	MediaVolume     int     `csv:"media_volume_uL"`
	TotalVolume     int     `csv:"total_volume_uL"`
}

// WellParameters are the mixing parameters a well was passaged with.
type WellParameters struct {
	Experiment  int     `json:"experiment"`
	MixCycles   int     `json:"mix_cycles"`
	MixVolume   int     `json:"mix_volume"`
	MixHeight   float64 `json:"mix_height"`
	CellVolume  int     `json:"cell_volume"`
	MediaVolume int     `json:"media_volume"`
	TotalVolume int     `json:"total_volume"`
}

// ReadParameters parses a parameter CSV file.
func ReadParameters(r io.Reader) ([]ParameterRow, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows := []ParameterRow{}
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, pfx.Err(fmt.Errorf("failed to parse parameter file: %w", err))
	}
	return rows, nil
}

// MapWells indexes parameter files by destination well. Experiments are
// numbered from 1 in argument order; a later file overrides an earlier one.
func MapWells(experiments ...[]ParameterRow) map[string]WellParameters {
	out := make(map[string]WellParameters)
	for i, rows := range experiments {
		for _, row := range rows {
			well := strings.TrimSpace(row.DestinationWell)
			if well == "" {
				continue
			}
			out[well] = WellParameters{
				Experiment:  i + 1,
				MixCycles:   row.MixReps,
				MixVolume:   row.MixVolume,
				MixHeight:   row.MixHeight,
				CellVolume:  row.CellVolume,
				MediaVolume: row.MediaVolume,
				TotalVolume: row.TotalVolume,
			}
		}
	}
	return out
}
