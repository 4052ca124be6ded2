package db

import (
	"strings"
	"testing"
)

func TestMigrationDefinitions(t *testing.T) {
	if len(postgresMigrations) == 0 {
		t.Fatal("no migrations defined")
	}

	seen := map[int]bool{}
	for _, m := range postgresMigrations {
		if m.Version <= 0 {
			t.Errorf("migration %q has version %d", m.Name, m.Version)
		}
		if seen[m.Version] {
			t.Errorf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = true

		if m.Name == "" {
			t.Errorf("migration %d has no name", m.Version)
		}
		if strings.TrimSpace(m.Up) == "" {
			t.Errorf("migration %d has empty up SQL", m.Version)
		}
		if strings.TrimSpace(m.Down) == "" {
			t.Errorf("migration %d has empty down SQL", m.Version)
		}
	}

	// Every version from 1..N must exist so Migrate can apply them in
	// order without gaps.
	for v := 1; v <= len(postgresMigrations); v++ {
		if !seen[v] {
			t.Errorf("missing migration version %d", v)
		}
	}
}
