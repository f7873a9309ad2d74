package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"runcrew-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Crew{},
		&models.CrewMembership{},
		&models.Notice{},
		&models.Notification{},
		&models.DomainEvent{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()

	user := &models.User{
		ID:                   uuid.New().String(),
		Nickname:             nickname,
		Handle:               fmt.Sprintf("%s_%s", models.GenerateHandleFromNickname(nickname), uuid.New().String()[:8]),
		Email:                fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Password:             "hashed",
		NotificationsEnabled: true,
		NotifyPersonalBest:   true,
		NotifyCrew:           true,
		NotifyRelations:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestNotificationService(db *gorm.DB) *NotificationService {
	return NewNotificationService(db, nil, nil, nil)
}

func countOutboxEvents(t *testing.T, db *gorm.DB, eventType string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.DomainEvent{}).
		Where("event_type = ?", eventType).
		Count(&count).Error)
	return count
}
