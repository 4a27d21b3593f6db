// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every table
// migrated. All statements share one connection, so code under test must run
// queries inside a transaction on that transaction's handle.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser inserts a user with a unique username derived from name.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}
