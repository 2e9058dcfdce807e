package components

import (
	"strings"

	"github.com/emiliopalmerini/growthlab/internal/pkg/tui/theme"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a series of values as a single row of block characters
// scaled between Min and Max.
type Sparkline struct {
	Values []float64
	Min    float64
	Max    float64
	styles *theme.Styles
}

// NewSparkline creates a sparkline over the fixed range [min, max]
func NewSparkline(values []float64, min, max float64) Sparkline {
	return Sparkline{
		Values: values,
		Min:    min,
		Max:    max,
		styles: theme.Default(),
	}
}

// Level returns the block index for v, from 0 to len(sparkBlocks)-1
func (s Sparkline) Level(v float64) int {
	if s.Max <= s.Min {
		return 0
	}
	frac := (v - s.Min) / (s.Max - s.Min)
	switch {
	case frac <= 0:
		return 0
	case frac >= 1:
		return len(sparkBlocks) - 1
	}
	return int(frac * float64(len(sparkBlocks)-1))
}

// View renders the sparkline
func (s Sparkline) View() string {
	var b strings.Builder
	half := len(sparkBlocks) / 2
	for _, v := range s.Values {
		lvl := s.Level(v)
		block := string(sparkBlocks[lvl])
		if lvl < half {
			b.WriteString(s.styles.CurveLow.Render(block))
		} else {
			b.WriteString(s.styles.CurveHigh.Render(block))
		}
	}
	return b.String()
}
