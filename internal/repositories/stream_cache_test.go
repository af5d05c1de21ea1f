package repositories

import (
	"testing"

	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
)

func newTestRepository(t *testing.T) *StreamCacheRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewStreamCacheRepository(db)
}

func TestStreamCacheRepository(t *testing.T) {
	key := shared.NormalizeTrackKey("Daft Punk", "One More Time")
	video := &services.Video{
		ID:       "v1",
		URL:      "https://www.youtube.com/watch?v=v1",
		Title:    "Daft Punk - One More Time",
		Duration: 320,
	}

	t.Run("miss returns nil without error", func(t *testing.T) {
		repo := newTestRepository(t)
		got, err := repo.Get(key)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("expected miss, got %+v", got)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		repo := newTestRepository(t)
		if err := repo.Put(key, video); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.Get(key)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got == nil {
			t.Fatal("expected hit")
		}
		if got.ID != "v1" || got.DurationSeconds() != 320 {
			t.Errorf("unexpected entry %+v", got)
		}
	})

	t.Run("put replaces existing entry", func(t *testing.T) {
		repo := newTestRepository(t)
		if err := repo.Put(key, video); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		updated := &services.Video{ID: "v2", Title: "Better upload"}
		if err := repo.Put(key, updated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.Get(key)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != "v2" {
			t.Errorf("expected replacement, got %+v", got)
		}

		count, _, err := repo.Count()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 entry, got %d", count)
		}
	})

	t.Run("count and purge", func(t *testing.T) {
		repo := newTestRepository(t)
		for _, id := range []string{"a", "b", "c"} {
			if err := repo.Put("key-"+id, &services.Video{ID: id}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		count, oldest, err := repo.Count()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 entries, got %d", count)
		}
		if oldest.IsZero() {
			t.Error("expected a non-zero oldest timestamp")
		}

		removed, err := repo.Purge()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if removed != 3 {
			t.Errorf("expected 3 removed, got %d", removed)
		}

		count, _, err = repo.Count()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty cache, got %d", count)
		}
	})
}
