package migrate_test

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/growthlab/internal/migrate"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query sqlite_master: %v", err)
	}
	return count == 1
}

func TestRunAll_Embedded(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("second RunAll should be a no-op, got: %v", err)
	}

	for _, table := range []string{"well_readings", "dataset_imports"} {
		if !tableExists(t, db, table) {
			t.Errorf("expected table %s", table)
		}
	}

	version, dirty, err := migrate.New(db, nil).Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("version = %d dirty = %v, want 2 clean", version, dirty)
	}
}

var testFS = fstest.MapFS{
	"001_alpha.up.sql":   {Data: []byte("CREATE TABLE alpha (id INTEGER);")},
	"001_alpha.down.sql": {Data: []byte("DROP TABLE alpha;")},
	"002_beta.up.sql":    {Data: []byte("CREATE TABLE beta (id INTEGER); CREATE TABLE gamma (id INTEGER);")},
	"002_beta.down.sql":  {Data: []byte("DROP TABLE gamma; DROP TABLE beta;")},
	"003_delta.up.sql":   {Data: []byte("CREATE TABLE delta (id INTEGER);")},
	"README.md":          {Data: []byte("not a migration")},
}

func TestMigrator_Load(t *testing.T) {
	all, err := migrate.NewWithFS(nil, testFS, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var names []string
	for _, m := range all {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "beta", "delta"}) {
		t.Errorf("names = %v", names)
	}
	if all[2].DownSQL != "" {
		t.Errorf("delta has no down migration, got %q", all[2].DownSQL)
	}
}

func TestMigrator_UpAndTo(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	var out bytes.Buffer
	m := migrate.NewWithFS(db, testFS, &out)

	if err := m.To(ctx, 2); err != nil {
		t.Fatalf("To(2) failed: %v", err)
	}
	if !tableExists(t, db, "gamma") || tableExists(t, db, "delta") {
		t.Fatal("expected migrations 1 and 2 only")
	}

	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if applied != 1 || !tableExists(t, db, "delta") {
		t.Errorf("expected delta to be applied, applied=%d", applied)
	}

	if err := m.To(ctx, 1); err == nil {
		t.Error("expected an error rolling back a migration without down SQL")
	}
	if !strings.Contains(out.String(), "up 3_delta") {
		t.Errorf("progress output missing, got %q", out.String())
	}
}

func TestMigrator_DownToZero(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"001_alpha.up.sql":   testFS["001_alpha.up.sql"],
		"001_alpha.down.sql": testFS["001_alpha.down.sql"],
		"002_beta.up.sql":    testFS["002_beta.up.sql"],
		"002_beta.down.sql":  testFS["002_beta.down.sql"],
	}
	m := migrate.NewWithFS(db, fsys, nil)

	if _, err := m.Up(ctx); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if err := m.To(ctx, 0); err != nil {
		t.Fatalf("To(0) failed: %v", err)
	}

	for _, table := range []string{"alpha", "beta", "gamma"} {
		if tableExists(t, db, table) {
			t.Errorf("table %s should have been dropped", table)
		}
	}
	version, _, err := m.Version(ctx)
	if err != nil || version != 0 {
		t.Errorf("version = %d (%v), want 0", version, err)
	}
}

func TestMigrator_RefusesDirtyState(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := migrate.NewWithFS(db, fstest.MapFS{
		"001_broken.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); THIS IS NOT SQL;")},
	}, nil)

	if _, err := m.Up(ctx); err == nil {
		t.Fatal("expected broken migration to fail")
	}
	if _, err := m.Up(ctx); err == nil || !strings.Contains(err.Error(), "dirty") {
		t.Errorf("expected dirty state error, got %v", err)
	}
}

func TestSplitSQL(t *testing.T) {
	got := migrate.SplitSQL("CREATE TABLE a (id INTEGER);\n\n  ;DROP TABLE b;  ")
	want := []string{"CREATE TABLE a (id INTEGER)", "DROP TABLE b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSQL = %q, want %q", got, want)
	}
}
