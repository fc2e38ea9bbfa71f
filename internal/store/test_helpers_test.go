package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedStats saves the given rows, failing the test on error.
func seedStats(t *testing.T, s *Store, rows ...Stats) {
	t.Helper()
	for _, st := range rows {
		if err := s.SaveStats(context.Background(), st); err != nil {
			t.Fatalf("SaveStats(%s) failed: %v", st.ID, err)
		}
	}
}
