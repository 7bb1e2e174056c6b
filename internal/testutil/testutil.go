package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pattonwebz/mvtees/internal/store"
)

// SetupStore creates a test database and returns the SQLite backend.
// Uses t.TempDir() for automatic cleanup on test completion.
func SetupStore(t *testing.T) *store.SQLiteBackend {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
