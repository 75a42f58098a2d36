package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func album(title string, added time.Time) models.Item {
	item := models.NewAlbum(models.AlbumResult{Title: title, Artist: "Stereolab", Year: "1997"})
	item.AddedAt = added
	return item
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Create and Get", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))
		item := album("Dots and Loops", base)

		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		got, err := repo.Get(ctx, item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}

		if got.Title != "Dots and Loops" || got.Artist != "Stereolab" || got.Kind != models.KindAlbum {
			t.Errorf("unexpected item: %+v", got)
		}
		if !got.AddedAt.Equal(base) {
			t.Errorf("expected added_at %v, got %v", base, got.AddedAt)
		}
		if got.HasOrder() || got.HasCover() || got.Listened {
			t.Errorf("new row should have no order, cover or listened flag: %+v", got)
		}
	})

	t.Run("Create rejects invalid item", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))

		err := repo.Create(ctx, models.Item{ID: "x", Kind: "single", AddedAt: base})
		if !errors.Is(err, shared.ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
	})

	t.Run("Get missing item", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, "nope"); !errors.Is(err, shared.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("List orders nulls last", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))

		a := album("A", base)
		b := album("B", base.Add(time.Hour))
		c := album("C", base.Add(2*time.Hour))
		for _, item := range []models.Item{a, b, c} {
			if err := repo.Create(ctx, item); err != nil {
				t.Fatalf("failed to create item: %v", err)
			}
		}

		if err := repo.SaveOrder(ctx, []models.OrderUpdate{{ID: c.ID, Order: 0}, {ID: a.ID, Order: 1}}); err != nil {
			t.Fatalf("failed to save order: %v", err)
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}

		want := []string{c.ID, a.ID, b.ID}
		if len(items) != len(want) {
			t.Fatalf("expected %d items, got %d", len(want), len(items))
		}
		for i, id := range want {
			if items[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, items[i].ID)
			}
		}
		if items[2].HasOrder() {
			t.Error("unordered row should come back without an order")
		}
		if *items[1].Order != 1 {
			t.Errorf("expected order 1, got %d", *items[1].Order)
		}
	})

	t.Run("flags", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))
		item := album("Emperor Tomato Ketchup", base)
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		if err := repo.SetListened(ctx, item.ID, true); err != nil {
			t.Fatalf("failed to set listened: %v", err)
		}
		if err := repo.SetListenAgain(ctx, item.ID, true); err != nil {
			t.Fatalf("failed to set listen again: %v", err)
		}

		got, _ := repo.Get(ctx, item.ID)
		if !got.Listened || !got.ListenAgain {
			t.Errorf("expected both flags set, got %+v", got)
		}

		if err := repo.SetListened(ctx, "missing", true); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("artwork", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))
		item := models.NewArtist(models.ArtistResult{Name: "Broadcast"})
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		if err := repo.SetExternalID(ctx, item.ID, "mbid-1"); err != nil {
			t.Fatalf("failed to set external id: %v", err)
		}
		got, _ := repo.Get(ctx, item.ID)
		if got.ExternalID != "mbid-1" || got.HasCover() {
			t.Errorf("expected identifier without cover, got %+v", got)
		}

		if err := repo.SetArtwork(ctx, item.ID, "https://img/broadcast.jpg", ""); err != nil {
			t.Fatalf("failed to set artwork: %v", err)
		}
		got, _ = repo.Get(ctx, item.ID)
		if got.CoverURL != "https://img/broadcast.jpg" {
			t.Errorf("expected cover to be stored, got %q", got.CoverURL)
		}
		if got.ExternalID != "mbid-1" {
			t.Errorf("empty identifier should keep the stored one, got %q", got.ExternalID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))
		item := album("Mars Audiac Quintet", base)
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		if err := repo.Delete(ctx, item.ID); err != nil {
			t.Fatalf("failed to delete item: %v", err)
		}
		if _, err := repo.Get(ctx, item.ID); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected deleted item to be gone, got %v", err)
		}
		if err := repo.Delete(ctx, item.ID); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected second delete to report not found, got %v", err)
		}
	})

	t.Run("SaveOrder empty batch", func(t *testing.T) {
		repo := NewItemRepository(setupTestDB(t))
		if err := repo.SaveOrder(ctx, nil); err != nil {
			t.Errorf("empty batch should be a no-op, got %v", err)
		}
	})
}
