package db

import (
	"context"
	"testing"
	"time"

	"github.com/yi-nology/asset_bridge/biz/dal/model"
)

func TestPublicationDAO_Upsert(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewPublicationDAO()
	ctx := context.Background()

	t.Run("Insert", func(t *testing.T) {
		p := &model.Publication{
			LocalPath: "cache/images/a/b/ab12.png",
			RemoteURL: "https://cdn.example.com/cache/images/a/b/ab12.png",
			Provider:  "s3",
			CacheKey:  "ab12",
			Size:      128,
		}
		if err := dao.Upsert(ctx, db, p); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if p.PublishedAt.IsZero() {
			t.Error("Expected PublishedAt to be stamped")
		}

		found, err := dao.GetByLocalPath(ctx, db, "cache/images/a/b/ab12.png")
		if err != nil {
			t.Fatalf("GetByLocalPath failed: %v", err)
		}
		if found.RemoteURL != p.RemoteURL || found.Size != 128 {
			t.Errorf("Unexpected row: %+v", found)
		}
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		p := &model.Publication{
			LocalPath: "cache/images/a/b/ab12.png",
			RemoteURL: "https://cdn.example.com/v2/ab12.png",
			Provider:  "s3",
			Size:      256,
		}
		if err := dao.Upsert(ctx, db, p); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		rows, err := dao.List(ctx, db, "", 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected 1 row after upsert, got %d", len(rows))
		}
		if rows[0].RemoteURL != "https://cdn.example.com/v2/ab12.png" || rows[0].Size != 256 {
			t.Errorf("Expected row to be refreshed, got %+v", rows[0])
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		err := dao.Upsert(ctx, db, nil)
		if err == nil || err.Error() != "publication must not be nil" {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		err := dao.Upsert(ctx, db, &model.Publication{RemoteURL: "x"})
		if err == nil {
			t.Error("Expected error for empty local path")
		}
	})
}

func TestPublicationDAO_List(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewPublicationDAO()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	CreateTestPublication(t, db, "img/old.png", "https://cdn/old.png", base)
	CreateTestPublication(t, db, "img/new.png", "https://cdn/new.png", base.Add(time.Hour))
	other := &model.Publication{LocalPath: "img/gcs.png", RemoteURL: "https://gcs/gcs.png", Provider: "google_storage", PublishedAt: base.Add(-time.Hour)}
	if err := dao.Upsert(ctx, db, other); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	t.Run("NewestFirst", func(t *testing.T) {
		rows, err := dao.List(ctx, db, "", 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 3 || rows[0].LocalPath != "img/new.png" || rows[2].LocalPath != "img/gcs.png" {
			t.Errorf("Unexpected order: %+v", rows)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		rows, err := dao.List(ctx, db, "", 1)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("Expected 1 row, got %d", len(rows))
		}
	})

	t.Run("ByProvider", func(t *testing.T) {
		rows, err := dao.List(ctx, db, "google_storage", 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 1 || rows[0].LocalPath != "img/gcs.png" {
			t.Errorf("Unexpected rows: %+v", rows)
		}
	})

	t.Run("DeleteByRemoteURL", func(t *testing.T) {
		if err := dao.DeleteByRemoteURL(ctx, db, "https://cdn/old.png"); err != nil {
			t.Fatalf("DeleteByRemoteURL failed: %v", err)
		}
		if _, err := dao.GetByLocalPath(ctx, db, "img/old.png"); err == nil {
			t.Error("Expected row to be gone")
		}
	})
}
