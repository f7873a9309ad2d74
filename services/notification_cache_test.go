package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

func newCachedNotificationService(t *testing.T, db *gorm.DB) (*NotificationService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewNotificationService(db, nil, cache, nil), mr
}

func TestUnreadCount_ServedFromCache(t *testing.T) {
	db := newTestDB(t)
	svc, mr := newCachedNotificationService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := mr.Get(unreadKey(bob.ID))
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestMarkAsRead_DecrementsCachedCounter(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newCachedNotificationService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	notifications, err := svc.GetNotifications(bob.ID, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, notifications.Notifications, 1)

	require.NoError(t, svc.MarkAsRead(ctx, bob.ID, notifications.Notifications[0].ID))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsRead_ExpiredCounterDoesNotGoNegative(t *testing.T) {
	db := newTestDB(t)
	svc, mr := newCachedNotificationService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")

	require.NoError(t, svc.CreateFollowNotification(ctx, alice.ID, bob.ID))

	notifications, err := svc.GetNotifications(bob.ID, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, notifications.Notifications, 1)

	// Simulate redis evicting the counter between the fetch and the read.
	mr.FlushAll()

	require.NoError(t, svc.MarkAsRead(ctx, bob.ID, notifications.Notifications[0].ID))

	assert.False(t, mr.Exists(unreadKey(bob.ID)))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnreadCount_NegativeCachedValueRecomputed(t *testing.T) {
	db := newTestDB(t)
	svc, mr := newCachedNotificationService(t, db)
	ctx := context.Background()

	bob := createTestUser(t, db, "Bob")

	require.NoError(t, mr.Set(unreadKey(bob.ID), "-3"))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := mr.Get(unreadKey(bob.ID))
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}
