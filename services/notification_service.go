// File: /services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"runcrew-api/models"
)

// Pusher delivers an event to a user's live connections. Implemented by
// the websocket hub; nil when real-time delivery is not wired.
type Pusher interface {
	SendToUser(userID string, event string, data interface{})
}

// NotificationService is the single entry point for notification
// creation. Every qualifying state transition in the engine - and every
// external producer (likes, comments, personal bests) - goes through
// Create, which enforces the recipient's preferences uniformly.
type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
	cache  *redis.Client
	email  *EmailService
}

func NewNotificationService(db *gorm.DB, pusher Pusher, cache *redis.Client, email *EmailService) *NotificationService {
	return &NotificationService{
		db:     db,
		pusher: pusher,
		cache:  cache,
		email:  email,
	}
}

func unreadKey(userID string) string {
	return "notifications:unread:" + userID
}

// Decrementing a key redis has already expired would seed it at -1 and
// serve a bogus count until the TTL, so the counter only moves when the
// key still exists.
var decrUnreadScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("DECR", KEYS[1])
end
return 0`)

func (ns *NotificationService) decrementUnread(ctx context.Context, userID string) {
	if ns.cache == nil {
		return
	}
	if err := decrUnreadScript.Run(ctx, ns.cache, []string{unreadKey(userID)}).Err(); err != nil {
		fmt.Printf("Warning: failed to decrement unread counter: %v\n", err)
	}
}

// allowedByPreferences checks the recipient's global switch and the
// category flag matching the notification type.
func allowedByPreferences(user *models.User, t models.NotificationType) bool {
	if !user.NotificationsEnabled {
		return false
	}

	switch t.Category() {
	case models.CategoryCrew:
		return user.NotifyCrew
	case models.CategoryPersonalBest:
		return user.NotifyPersonalBest
	default:
		return user.NotifyRelations
	}
}

// Create persists a notification for the recipient unless their
// preferences suppress it. A suppressed notification is a success with
// no record, not an error.
func (ns *NotificationService) Create(ctx context.Context, params models.CreateNotificationParams) error {
	// Don't create notification if actor and target are the same
	if params.ActorUserID == params.TargetUserID {
		return nil
	}

	var target models.User
	if err := ns.db.First(&target, "id = ?", params.TargetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipient %s", ErrNotFound, params.TargetUserID)
		}
		return err
	}

	if !allowedByPreferences(&target, params.Type) {
		return nil
	}

	// Suppress duplicates of the same action within the last hour
	query := ns.db.Where("type = ? AND actor_user_id = ? AND target_user_id = ? AND created_at > ?",
		params.Type, params.ActorUserID, params.TargetUserID, time.Now().Add(-1*time.Hour))
	if params.CrewID != nil {
		query = query.Where("crew_id = ?", *params.CrewID)
	}
	if params.NoticeID != nil {
		query = query.Where("notice_id = ?", *params.NoticeID)
	}

	var existing models.Notification
	if err := query.First(&existing).Error; err == nil {
		return nil
	}

	notification := models.Notification{
		ID:           uuid.New().String(),
		Type:         params.Type,
		ActorUserID:  params.ActorUserID,
		TargetUserID: params.TargetUserID,
		CrewID:       params.CrewID,
		NoticeID:     params.NoticeID,
		IsRead:       false,
	}

	if err := ns.db.Create(&notification).Error; err != nil {
		return err
	}

	if ns.cache != nil {
		if err := ns.cache.Incr(ctx, unreadKey(params.TargetUserID)).Err(); err != nil {
			fmt.Printf("Warning: failed to bump unread counter: %v\n", err)
		}
	}

	ns.push(&notification)
	ns.sendEmail(&target, &notification)

	return nil
}

// push delivers the notification to the recipient's live connections
func (ns *NotificationService) push(n *models.Notification) {
	if ns.pusher == nil {
		return
	}

	var actor models.User
	if err := ns.db.First(&actor, "id = ?", n.ActorUserID).Error; err == nil {
		n.ActorUser = actor
	}

	ns.pusher.SendToUser(n.TargetUserID, "notification", n.ToResponse())
}

// sendEmail mirrors crew approvals to email, best effort
func (ns *NotificationService) sendEmail(target *models.User, n *models.Notification) {
	if ns.email == nil || n.Type != models.NotificationTypeCrewApproved || !target.EmailVerified {
		return
	}

	crewName := ""
	if target.CrewName != nil {
		crewName = *target.CrewName
	}

	if err := ns.email.SendCrewApprovedEmail(target.Email, target.Nickname, crewName); err != nil {
		fmt.Printf("Warning: failed to send crew approval email: %v\n", err)
	}
}

// GetNotifications returns paginated notifications for the user, newest first
func (ns *NotificationService) GetNotifications(userID string, page, limit int, notificationType string) (*models.PaginatedNotifications, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := ns.db.Where("target_user_id = ?", userID)
	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	var total int64
	query.Model(&models.Notification{}).Count(&total)

	var notifications []models.Notification
	if err := query.Preload("ActorUser").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, notification.ToResponse())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &models.PaginatedNotifications{
		Notifications: responses,
		Page:          page,
		Limit:         limit,
		Total:         total,
		HasMore:       page < totalPages,
		TotalPages:    totalPages,
	}, nil
}

// GetStats returns unread and total counts for the user
func (ns *NotificationService) GetStats(ctx context.Context, userID string) (*models.NotificationStats, error) {
	unread, err := ns.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := ns.db.Model(&models.Notification{}).
		Where("target_user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	return &models.NotificationStats{
		UnreadCount: int(unread),
		TotalCount:  int(total),
	}, nil
}

// UnreadCount serves the live unread counter from redis when available,
// falling back to the database, which stays the source of truth.
func (ns *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if ns.cache != nil {
		val, err := ns.cache.Get(ctx, unreadKey(userID)).Result()
		if err == nil {
			if count, convErr := strconv.ParseInt(val, 10, 64); convErr == nil && count >= 0 {
				return count, nil
			}
		}
	}

	var count int64
	if err := ns.db.Model(&models.Notification{}).
		Where("target_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}

	if ns.cache != nil {
		if err := ns.cache.Set(ctx, unreadKey(userID), count, 24*time.Hour).Err(); err != nil {
			fmt.Printf("Warning: failed to refresh unread counter: %v\n", err)
		}
	}

	return count, nil
}

// MarkAsRead flips a single notification to read. Idempotent: marking an
// already-read notification succeeds without touching the counter.
func (ns *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	var notification models.Notification
	if err := ns.db.Where("id = ? AND target_user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
		}
		return err
	}

	if notification.IsRead {
		return nil
	}

	if err := ns.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return err
	}

	ns.decrementUnread(ctx, userID)

	return nil
}

// MarkAllAsRead flips every unread notification for the user
func (ns *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := ns.db.Model(&models.Notification{}).
		Where("target_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return err
	}

	if ns.cache != nil {
		if err := ns.cache.Del(ctx, unreadKey(userID)).Err(); err != nil {
			fmt.Printf("Warning: failed to reset unread counter: %v\n", err)
		}
	}

	return nil
}

// Delete removes a notification owned by the user
func (ns *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	var notification models.Notification
	if err := ns.db.Where("id = ? AND target_user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
		}
		return err
	}

	if err := ns.db.Delete(&notification).Error; err != nil {
		return err
	}

	if !notification.IsRead {
		ns.decrementUnread(ctx, userID)
	}

	return nil
}

// Helper methods for creating specific notification types

// CreateFollowNotification notifies a user of a new follower
func (ns *NotificationService) CreateFollowNotification(ctx context.Context, actorUserID, targetUserID string) error {
	return ns.Create(ctx, models.CreateNotificationParams{
		Type:         models.NotificationTypeFollow,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
	})
}

// CreateMutualFollowNotification notifies both parties they became
// running buddies
func (ns *NotificationService) CreateMutualFollowNotification(ctx context.Context, userA, userB string) error {
	if err := ns.Create(ctx, models.CreateNotificationParams{
		Type:         models.NotificationTypeMutualFollow,
		ActorUserID:  userA,
		TargetUserID: userB,
	}); err != nil {
		return err
	}
	return ns.Create(ctx, models.CreateNotificationParams{
		Type:         models.NotificationTypeMutualFollow,
		ActorUserID:  userB,
		TargetUserID: userA,
	})
}

// CreateCrewNotification notifies a crew member of a membership transition
func (ns *NotificationService) CreateCrewNotification(ctx context.Context, t models.NotificationType, actorUserID, targetUserID, crewID string) error {
	return ns.Create(ctx, models.CreateNotificationParams{
		Type:         t,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		CrewID:       &crewID,
	})
}

// CreateNoticeNotification notifies a crew member of a new notice
func (ns *NotificationService) CreateNoticeNotification(ctx context.Context, actorUserID, targetUserID, crewID, noticeID string) error {
	return ns.Create(ctx, models.CreateNotificationParams{
		Type:         models.NotificationTypeCrewNotice,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		CrewID:       &crewID,
		NoticeID:     &noticeID,
	})
}

// CreatePersonalBestNotification is called by external activity producers
func (ns *NotificationService) CreatePersonalBestNotification(ctx context.Context, actorUserID, targetUserID string) error {
	return ns.Create(ctx, models.CreateNotificationParams{
		Type:         models.NotificationTypePersonalBest,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
	})
}
