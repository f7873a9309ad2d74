// File: /models/notification.go
package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTypeFollow        NotificationType = "follow"
	NotificationTypeMutualFollow  NotificationType = "mutual_follow"
	NotificationTypeFriendRequest NotificationType = "friend_request"
	NotificationTypeFriendAccept  NotificationType = "friend_accept"
	NotificationTypeCrewApproved  NotificationType = "crew_approved"
	NotificationTypeCrewAdmin     NotificationType = "crew_admin"
	NotificationTypeCrewOwner     NotificationType = "crew_owner"
	NotificationTypeCrewKicked    NotificationType = "crew_kicked"
	NotificationTypeCrewNotice    NotificationType = "crew_notice"
	NotificationTypePersonalBest  NotificationType = "personal_best"
	NotificationTypeLike          NotificationType = "like"
	NotificationTypeComment       NotificationType = "comment"
)

// NotificationCategory groups types under the per-user preference flags.
type NotificationCategory string

const (
	CategoryRelations    NotificationCategory = "relations"
	CategoryCrew         NotificationCategory = "crew"
	CategoryPersonalBest NotificationCategory = "personal_best"
)

// Category maps a notification type to its preference category
func (t NotificationType) Category() NotificationCategory {
	switch t {
	case NotificationTypeCrewApproved, NotificationTypeCrewAdmin,
		NotificationTypeCrewOwner, NotificationTypeCrewKicked,
		NotificationTypeCrewNotice:
		return CategoryCrew
	case NotificationTypePersonalBest:
		return CategoryPersonalBest
	default:
		return CategoryRelations
	}
}

type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;size:191"`
	Type         NotificationType `json:"type" gorm:"not null;size:50"`
	ActorUserID  string           `json:"actor_user_id" gorm:"not null;size:191"`  // Who performed the action
	TargetUserID string           `json:"target_user_id" gorm:"not null;size:191"` // Who receives the notification
	CrewID       *string          `json:"crew_id" gorm:"size:191"`                 // Optional: related crew
	NoticeID     *string          `json:"notice_id" gorm:"size:191"`               // Optional: related notice
	IsRead       bool             `json:"is_read" gorm:"default:false"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	ActorUser  User `json:"actor_user" gorm:"foreignKey:ActorUserID"`
	TargetUser User `json:"target_user" gorm:"foreignKey:TargetUserID"`
}

// NotificationResponse represents the API response for notifications
type NotificationResponse struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	ActorUser NotificationUser `json:"actor_user"`
	CrewID    *string          `json:"crew_id,omitempty"`
	NoticeID  *string          `json:"notice_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	Message   string           `json:"message"`
	TimeAgo   string           `json:"time_ago"`
}

type NotificationUser struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	Handle   string  `json:"handle"`
	Avatar   *string `json:"avatar"`
}

// NotificationStats represents notification statistics
type NotificationStats struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

// PaginatedNotifications represents paginated notification response
type PaginatedNotifications struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Total         int64                  `json:"total"`
	HasMore       bool                   `json:"has_more"`
	TotalPages    int                    `json:"total_pages"`
}

// CreateNotificationParams for creating new notifications
type CreateNotificationParams struct {
	Type         NotificationType `json:"type"`
	ActorUserID  string           `json:"actor_user_id"`
	TargetUserID string           `json:"target_user_id"`
	CrewID       *string          `json:"crew_id,omitempty"`
	NoticeID     *string          `json:"notice_id,omitempty"`
}

// GetNotificationMessage returns a human-readable message for the notification
func (n *Notification) GetNotificationMessage() string {
	switch n.Type {
	case NotificationTypeFollow:
		return "started following you"
	case NotificationTypeMutualFollow:
		return "is now your running buddy"
	case NotificationTypeFriendRequest:
		return "sent you a friend request"
	case NotificationTypeFriendAccept:
		return "accepted your friend request"
	case NotificationTypeCrewApproved:
		return "approved your crew application"
	case NotificationTypeCrewAdmin:
		return "made you a crew admin"
	case NotificationTypeCrewOwner:
		return "transferred crew ownership to you"
	case NotificationTypeCrewKicked:
		return "removed you from the crew"
	case NotificationTypeCrewNotice:
		return "posted a crew notice"
	case NotificationTypePersonalBest:
		return "set a new personal best"
	case NotificationTypeLike:
		return "liked your activity"
	case NotificationTypeComment:
		return "commented on your activity"
	default:
		return "interacted with you"
	}
}

// GetTimeAgo returns a human-readable time difference
func (n *Notification) GetTimeAgo() string {
	now := time.Now()
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / (24 * 7))
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / (24 * 30))
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		CrewID:    n.CrewID,
		NoticeID:  n.NoticeID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		Message:   n.GetNotificationMessage(),
		TimeAgo:   n.GetTimeAgo(),
		ActorUser: NotificationUser{
			ID:       n.ActorUser.ID,
			Nickname: n.ActorUser.Nickname,
			Handle:   n.ActorUser.Handle,
			Avatar:   n.ActorUser.Avatar,
		},
	}
}
