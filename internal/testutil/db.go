// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	password.Cost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// CreateUser inserts an active user with password "password123".
func CreateUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	hash, err := password.Hash("password123")
	require.NoError(t, err)

	u := &models.User{
		Email:     email,
		Password:  hash,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
