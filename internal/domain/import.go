package domain

import "time"

// ImportRecord describes one dataset import into the database.
type ImportRecord struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	Wells      int       `json:"wells"`
	Points     int       `json:"points"`
	ImportedAt time.Time `json:"imported_at"`
}
