// Package repotest provides throwaway stores for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/internal/repository/gormrepo"
)

// OpenSqlite opens a migrated sqlite database in a temp dir, closed on cleanup
func OpenSqlite(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewStores returns migrated gorm stores on a temp sqlite database
func NewStores(t testing.TB) *repository.Stores {
	t.Helper()
	stores := gormrepo.New(OpenSqlite(t))
	if err := stores.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return stores
}
