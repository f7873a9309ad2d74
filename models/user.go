// File: /models/user.go
package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string  `json:"id" gorm:"primaryKey;size:191"`
	Nickname      string  `json:"nickname" gorm:"not null;size:255"`
	Handle        string  `json:"handle" gorm:"uniqueIndex;not null;size:50"` // Added for @username functionality
	Email         string  `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string  `json:"-" gorm:"not null;size:255"`
	EmailVerified bool    `json:"email_verified" gorm:"default:false"`
	Avatar        *string `json:"avatar" gorm:"size:500"`

	// Cached projection of the user's single approved crew membership.
	// Cleared on kick/leave/disband, refreshed on approve and crew rename.
	CrewID   *string `json:"crew_id" gorm:"size:191;index"`
	CrewName *string `json:"crew_name" gorm:"size:255"`

	FollowersCount int `json:"followers_count" gorm:"default:0"`
	FollowingCount int `json:"following_count" gorm:"default:0"`

	// Notification preferences. The global switch wins; category flags
	// gate individual notification types inside the dispatcher.
	NotificationsEnabled bool `json:"notifications_enabled" gorm:"default:true"`
	NotifyPersonalBest   bool `json:"notify_personal_best" gorm:"default:true"`
	NotifyCrew           bool `json:"notify_crew" gorm:"default:true"`
	NotifyRelations      bool `json:"notify_relations" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Follow is a directed, timestamped edge from one user to another.
// The (follower_id, following_id) pair is unique, so re-following is a
// clean no-op at the storage layer.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower_id" gorm:"not null;size:191;uniqueIndex:uk_follows_pair;index"`
	FollowingID string    `json:"following_id" gorm:"not null;size:191;uniqueIndex:uk_follows_pair;index"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `json:"follower" gorm:"foreignKey:FollowerID"`
	Following User `json:"following" gorm:"foreignKey:FollowingID"`
}

// RelationStatus is the derived follow state between two users. It is
// always computed from the two possible edges, never cached.
type RelationStatus string

const (
	RelationNone       RelationStatus = "none"
	RelationFollowing  RelationStatus = "following"
	RelationFollowedBy RelationStatus = "followed_by"
	RelationMutual     RelationStatus = "mutual" // "running buddies"
)

// GenerateHandleFromNickname creates a handle from the user's nickname
func GenerateHandleFromNickname(nickname string) string {
	handle := strings.ToLower(strings.ReplaceAll(nickname, " ", "_"))
	handle = strings.ReplaceAll(handle, ".", "")
	handle = strings.ReplaceAll(handle, "-", "_")
	return handle
}
