package store

import (
	"path/filepath"
	"testing"
)

func tempDB(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_EmptySnapshot(t *testing.T) {
	s := tempDB(t)
	data, err := s.ReadSnapshot()
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil snapshot, got %s", data)
	}
}

func TestSQLite_WriteAndReadSnapshot(t *testing.T) {
	s := tempDB(t)
	if err := s.WriteSnapshot([]byte(`{"LION":1.1}`)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if err := s.WriteSnapshot([]byte(`{"LION":1.2}`)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	data, err := s.ReadSnapshot()
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if string(data) != `{"LION":1.2}` {
		t.Fatalf("expected latest snapshot, got %s", data)
	}

	versions, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].ParentID != versions[1].VersionID {
		t.Fatalf("expected newest parented on oldest, got parent %q", versions[0].ParentID)
	}
	if !versions[0].Active || versions[1].Active {
		t.Fatal("expected only the newest version active")
	}
	if versions[1].ParentID != "" {
		t.Fatalf("expected root version without parent, got %q", versions[1].ParentID)
	}
}

func TestSQLite_Rollback(t *testing.T) {
	s := tempDB(t)
	s.WriteSnapshot([]byte(`{"VOID":1}`))
	s.WriteSnapshot([]byte(`{"VOID":2}`))
	versions, _ := s.ListVersions(10)

	if err := s.Rollback(versions[1].VersionID); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	data, _ := s.ReadSnapshot()
	if string(data) != `{"VOID":1}` {
		t.Fatalf("expected rolled back snapshot, got %s", data)
	}
}

func TestSQLite_RollbackNonExistent(t *testing.T) {
	s := tempDB(t)
	s.WriteSnapshot([]byte(`{}`))
	if err := s.Rollback("nonexistent-id"); err == nil {
		t.Fatal("expected error for non-existent version")
	}
}

func TestSQLite_JournalStreamsAreSeparate(t *testing.T) {
	s := tempDB(t)
	for _, l := range []string{"a", "b", "c"} {
		if err := s.AppendLine(Ledger, l); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}
	s.AppendLine(Dreams, "dream-1")

	got, err := s.Tail(Ledger, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("expected [b c], got %v", got)
	}
	all, _ := s.Tail(Ledger, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 ledger lines, got %v", all)
	}
	dreams, _ := s.Tail(Dreams, 5)
	if len(dreams) != 1 || dreams[0] != "dream-1" {
		t.Fatalf("expected [dream-1], got %v", dreams)
	}
}
