package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/parsa-dv/messenger/internal/repo"
)

// OpenTestDB opens a fresh sqlite database in a per-test temp dir and applies
// the embedded migrations.
func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "messenger_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.ApplyMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db, func() {
		_ = db.Close()
	}
}
