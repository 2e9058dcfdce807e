package ports

import (
	"context"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// DatasetRepository stores imported well readings.
type DatasetRepository interface {
	// ReplaceWell overwrites every stored reading of the well with series.
	ReplaceWell(ctx context.Context, wellID string, series domain.WellSeries) error
	// Load returns all stored wells. Wells without readings are omitted.
	Load(ctx context.Context) (domain.Dataset, error)
	// ListWells returns the stored well IDs in plate order.
	ListWells(ctx context.Context) ([]string, error)
	// RecordImport logs a completed import.
	RecordImport(ctx context.Context, rec *domain.ImportRecord) error
	// LastImport returns the most recent import, or nil if nothing was imported.
	LastImport(ctx context.Context) (*domain.ImportRecord, error)
}
