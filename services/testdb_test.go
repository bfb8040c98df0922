package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cedarboard/cedar/models"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Section{},
		&models.Subsection{},
		&models.Topic{},
		&models.Post{},
		&models.Warn{},
		&models.Ban{},
		&models.Conversation{},
		&models.Message{},
	))
	return db
}

// newUser inserts a user and its profile directly, skipping the bcrypt cost
// of a full registration.
func newUser(t *testing.T, db *gorm.DB, username string, role models.Role, staff bool) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		Staff:        staff,
	}
	require.NoError(t, db.Create(&user).Error)
	profile := models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	user.Profile = profile
	return &user
}
