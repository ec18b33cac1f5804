package testutil

import (
	"testing"

	"github.com/djstage/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens an in-memory sqlite database and migrates all tables.
// Each call returns an isolated database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Mix{},
		&models.TrendingEntry{},
		&models.TrendingLike{},
		&models.TrendingComment{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
