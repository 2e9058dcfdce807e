package templates

import (
	"fmt"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

func formatOD(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func formatHeight(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

func modeLabel(mode string) string {
	if mode == "model" {
		return "Correlation model"
	}
	return "Exploration (no model loaded)"
}

func historyItem(p domain.ParameterSet) string {
	return fmt.Sprintf("%d cycles, %s, %d µL, %d h", p.MixCycles, formatHeight(p.MixHeight), p.MixVolume, p.PassagingTime)
}
