package datastore

import "testing"

// NewTestStore creates a fresh in-memory store with the schema applied.
func NewTestStore(t *testing.T) *SQLite {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}

	if err := store.EnsureSchema(); err != nil {
		store.Close()
		t.Fatalf("creating test store schema: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}
