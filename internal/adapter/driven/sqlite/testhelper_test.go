package sqlite

import (
	"context"
	"testing"
)

// setupTestDB opens a migrated in-memory ledger private to the test.
// The pools share one database through cache=shared under the test's name.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := open(context.Background(), memoryDSN(t.Name()), t.Name())
	if err != nil {
		t.Fatalf("open test ledger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("migrate test ledger: %v", err)
	}

	return db
}
