package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcrew-api/models"
)

func TestCreate_SelfNotificationSkipped(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)

	alice := createTestUser(t, db, "Alice")

	err := svc.CreateFollowNotification(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreate_UnknownRecipientRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)

	alice := createTestUser(t, db, "Alice")

	err := svc.CreateFollowNotification(context.Background(), alice.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_GlobalSwitchSuppresses(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	require.NoError(t, db.Model(bob).Update("notifications_enabled", false).Error)

	// Suppression is a success, not an error
	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	var count int64
	db.Model(&models.Notification{}).Where("target_user_id = ?", bob.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCreate_CategoryFlagsGateUniformly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	require.NoError(t, db.Model(bob).Updates(map[string]interface{}{
		"notify_crew":          false,
		"notify_personal_best": false,
	}).Error)

	crewID := "crew-1"
	require.NoError(t, svc.CreateCrewNotification(ctx, models.NotificationTypeCrewApproved, alice.ID, bob.ID, crewID))
	require.NoError(t, svc.CreatePersonalBestNotification(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	// Only the relations category is still enabled
	var notifications []models.Notification
	require.NoError(t, db.Where("target_user_id = ?", bob.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeFollow, notifications[0].Type)
}

func TestCreate_DuplicateWithinWindowSuppressed(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	var count int64
	db.Model(&models.Notification{}).
		Where("type = ? AND target_user_id = ?", models.NotificationTypeFollow, bob.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMarkAsRead_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	var notification models.Notification
	require.NoError(t, db.Where("target_user_id = ?", bob.ID).First(&notification).Error)

	require.NoError(t, svc.MarkAsRead(ctx, bob.ID, notification.ID))
	require.NoError(t, svc.MarkAsRead(ctx, bob.ID, notification.ID))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsRead_WrongOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	carol := createTestUser(t, db, "Carol")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	var notification models.Notification
	require.NoError(t, db.Where("target_user_id = ?", bob.ID).First(&notification).Error)

	err := svc.MarkAsRead(ctx, carol.ID, notification.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkAllAsRead(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	carol := createTestUser(t, db, "Carol")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, carol.ID))
	require.NoError(t, svc.CreateFollowNotification(ctx, bob.ID, carol.ID))

	count, err := svc.UnreadCount(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkAllAsRead(ctx, carol.ID))

	count, err = svc.UnreadCount(ctx, carol.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetNotifications_PaginatedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	bob := createTestUser(t, db, "Bob")
	for i := 0; i < 3; i++ {
		actor := createTestUser(t, db, "Actor")
		require.NoError(t, svc.CreateFollowNotification(ctx, actor.ID, bob.ID))
	}

	result, err := svc.GetNotifications(bob.ID, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Notifications, 2)
	assert.True(t, result.HasMore)
	assert.Equal(t, 2, result.TotalPages)

	result, err = svc.GetNotifications(bob.ID, 2, 2, "")
	require.NoError(t, err)
	assert.Len(t, result.Notifications, 1)
	assert.False(t, result.HasMore)
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	carol := createTestUser(t, db, "Carol")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, carol.ID))
	require.NoError(t, svc.CreateFollowNotification(ctx, bob.ID, carol.ID))

	var notification models.Notification
	require.NoError(t, db.Where("target_user_id = ? AND actor_user_id = ?", carol.ID, alice.ID).
		First(&notification).Error)
	require.NoError(t, svc.MarkAsRead(ctx, carol.ID, notification.ID))

	stats, err := svc.GetStats(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UnreadCount)
	assert.Equal(t, 2, stats.TotalCount)
}

func TestDelete_OwnNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	var notification models.Notification
	require.NoError(t, db.Where("target_user_id = ?", bob.ID).First(&notification).Error)

	require.NoError(t, svc.Delete(ctx, bob.ID, notification.ID))

	var count int64
	db.Model(&models.Notification{}).Where("target_user_id = ?", bob.ID).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, notification.ID), ErrNotFound)
}
