package storage

import (
	"strings"
	"testing"
)

func TestSaveAndReadSnapshot(t *testing.T) {
	s, err := New(Config{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	relPath, err := s.SaveSnapshot("<html>test</html>", "test-page")
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if !strings.HasPrefix(relPath, "snapshots/") {
		t.Errorf("relPath = %q, want snapshots/ prefix", relPath)
	}
	if !strings.HasSuffix(relPath, "test-page.html") {
		t.Errorf("relPath = %q, want slug filename", relPath)
	}

	content, err := s.ReadSnapshot(relPath)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if content != "<html>test</html>" {
		t.Errorf("content = %q", content)
	}
}

func TestSaveSnapshotUniqueNames(t *testing.T) {
	s, err := New(Config{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := s.SaveSnapshot("one", "same-slug")
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	second, err := s.SaveSnapshot("two", "same-slug")
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if first == second {
		t.Errorf("expected distinct paths, both %q", first)
	}

	content, err := s.ReadSnapshot(second)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if content != "two" {
		t.Errorf("content = %q", content)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	s, err := New(Config{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	relPath, err := s.SaveSnapshot("content", "to-delete")
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if err := s.DeleteSnapshot(relPath); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, err := s.ReadSnapshot(relPath); err == nil {
		t.Error("expected read error after delete")
	}

	// Deleting a missing snapshot is not an error
	if err := s.DeleteSnapshot("snapshots/does/not/exist.html"); err != nil {
		t.Errorf("DeleteSnapshot missing: %v", err)
	}
}
