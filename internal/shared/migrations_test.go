package shared

import "testing"

func TestMigrations(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one embedded migration")
		}
		for i, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %d missing up or down SQL", m.Version)
			}
			if i > 0 && migrations[i-1].Version >= m.Version {
				t.Error("expected migrations sorted by version")
			}
		}
	})

	t.Run("RunMigrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM stream_cache").Scan(&count); err != nil {
			t.Fatalf("expected stream_cache table to exist: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty table, got %d rows", count)
		}

		t.Run("idempotent", func(t *testing.T) {
			if err := RunMigrations(db); err != nil {
				t.Errorf("expected re-run to succeed, got %v", err)
			}
		})
	})

	t.Run("removeComments", func(t *testing.T) {
		in := "-- a comment\nSELECT 1 -- trailing\n"
		got := removeComments(in)
		if got != "SELECT 1" {
			t.Errorf("expected 'SELECT 1', got %q", got)
		}
	})
}
