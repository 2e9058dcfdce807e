package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v3"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

const maxRetries = 2

type readingRow struct {
	WellID     string      `db:"well_id"`
	Seq        int         `db:"seq"`
	RecordedAt string      `db:"recorded_at"`
	OD600      float64     `db:"od600"`
	Fields     null.String `db:"fields"`
}

type importRow struct {
	ID         int64  `db:"id"`
	Source     string `db:"source"`
	Wells      int    `db:"wells"`
	Points     int    `db:"points"`
	ImportedAt string `db:"imported_at"`
}

// DatasetRepository persists well readings in libsql.
type DatasetRepository struct {
	db *sqlx.DB
}

func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: sqlx.NewDb(db, DriverName)}
}

func (r *DatasetRepository) ReplaceWell(ctx context.Context, wellID string, series domain.WellSeries) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM well_readings WHERE well_id = ?`, wellID); err != nil {
		return fmt.Errorf("failed to clear well %s: %w", wellID, err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO well_readings (well_id, seq, recorded_at, od600, fields)
		VALUES (:well_id, :seq, :recorded_at, :od600, :fields)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, reading := range series {
		row, err := toRow(wellID, i, reading)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("failed to insert reading %d of well %s: %w", i, wellID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit well %s: %w", wellID, err)
	}
	return nil
}

func (r *DatasetRepository) Load(ctx context.Context) (domain.Dataset, error) {
	rows, err := WithRetry(ctx, maxRetries, func() ([]readingRow, error) {
		var rows []readingRow
		err := r.db.SelectContext(ctx, &rows, `
			SELECT well_id, seq, recorded_at, od600, fields
			FROM well_readings
			ORDER BY well_id, seq
		`)
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	ds := make(domain.Dataset)
	for _, row := range rows {
		reading, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		ds[row.WellID] = append(ds[row.WellID], reading)
	}
	return ds, nil
}

func (r *DatasetRepository) ListWells(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT well_id FROM well_readings`); err != nil {
		return nil, fmt.Errorf("failed to list wells: %w", err)
	}
	domain.SortWellIDs(ids)
	return ids, nil
}

func (r *DatasetRepository) RecordImport(ctx context.Context, rec *domain.ImportRecord) error {
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO dataset_imports (source, wells, points, imported_at)
		VALUES (:source, :wells, :points, :imported_at)
	`, importRow{
		Source:     rec.Source,
		Wells:      rec.Wells,
		Points:     rec.Points,
		ImportedAt: rec.ImportedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (r *DatasetRepository) LastImport(ctx context.Context) (*domain.ImportRecord, error) {
	var row importRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, source, wells, points, imported_at
		FROM dataset_imports
		ORDER BY id DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import: %w", err)
	}

	importedAt, err := time.Parse(time.RFC3339Nano, row.ImportedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid import timestamp %q: %w", row.ImportedAt, err)
	}
	return &domain.ImportRecord{
		ID:         row.ID,
		Source:     row.Source,
		Wells:      row.Wells,
		Points:     row.Points,
		ImportedAt: importedAt,
	}, nil
}

func toRow(wellID string, seq int, reading domain.WellReading) (readingRow, error) {
	row := readingRow{
		WellID:     wellID,
		Seq:        seq,
		RecordedAt: reading.Timestamp.UTC().Format(time.RFC3339Nano),
		OD600:      reading.OD600,
	}
	if len(reading.Fields) > 0 {
		data, err := json.Marshal(reading.Fields)
		if err != nil {
			return row, fmt.Errorf("failed to encode fields: %w", err)
		}
		row.Fields = null.StringFrom(string(data))
	}
	return row, nil
}

func fromRow(row readingRow) (domain.WellReading, error) {
	ts, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
	if err != nil {
		return domain.WellReading{}, fmt.Errorf("invalid timestamp %q for well %s: %w", row.RecordedAt, row.WellID, err)
	}
	reading := domain.WellReading{Timestamp: ts, OD600: row.OD600, Included: true}
	if row.Fields.Valid {
		if err := json.Unmarshal([]byte(row.Fields.String), &reading.Fields); err != nil {
			return domain.WellReading{}, fmt.Errorf("invalid fields for well %s: %w", row.WellID, err)
		}
	}
	return reading, nil
}
