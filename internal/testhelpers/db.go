// Package testhelpers provides shared fixtures for unit tests. Tests run
// against an in-memory SQLite database migrated with the same models the
// PostgreSQL schema is derived from.
package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/models"
)

// NewTestDB opens a fresh in-memory database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps the database alive across the pooled
	// connections gorm opens.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db, ""))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// CreateUser inserts a user. An empty name leaves the profile incomplete.
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag directly, bypassing the service.
func CreateTag(t *testing.T, db *gorm.DB, name, tagType string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Type: tagType}
	require.NoError(t, db.Create(tag).Error)
	return tag
}
