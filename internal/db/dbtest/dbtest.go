// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deskhub/deskhub/internal/db/models"
)

// Open creates an in-memory SQLite database with the full schema.
// The pool is limited to one connection because every new connection to
// ":memory:" would see an empty database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// Tenant inserts a tenant and returns its id.
func Tenant(t *testing.T, db *gorm.DB, id, name string) string {
	t.Helper()

	require.NoError(t, db.Create(&models.Tenant{ID: id, Name: name}).Error, "failed to seed tenant")

	return id
}

// Member inserts a member.
func Member(t *testing.T, db *gorm.DB, m models.Member) models.Member {
	t.Helper()

	require.NoError(t, db.Create(&m).Error, "failed to seed member")

	return m
}
