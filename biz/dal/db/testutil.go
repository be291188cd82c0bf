package db

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/yi-nology/asset_bridge/biz/dal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise in tests
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestPublication records a publication with default values
func CreateTestPublication(t *testing.T, db *gorm.DB, localPath, remoteURL string, at time.Time) *model.Publication {
	t.Helper()
	p := &model.Publication{
		LocalPath:   localPath,
		RemoteURL:   remoteURL,
		Provider:    "local",
		Size:        42,
		PublishedAt: at,
	}
	if err := NewPublicationDAO().Upsert(context.Background(), db, p); err != nil {
		t.Fatalf("Failed to create test publication: %v", err)
	}
	return p
}
