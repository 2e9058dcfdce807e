package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/emiliopalmerini/growthlab/internal/adapters/turso"
	"github.com/emiliopalmerini/growthlab/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := turso.NewDB("file:"+filepath.Join(t.TempDir(), "growthlab.db"), "", turso.Options{Ping: true})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
