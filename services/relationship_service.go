// File: /services/relationship_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"runcrew-api/models"
	"runcrew-api/repositories"
)

// RelationshipService owns the directed follow graph and its derived
// mutual ("running buddy") status.
type RelationshipService struct {
	db            *gorm.DB
	follows       *repositories.FollowRepository
	outbox        *repositories.OutboxRepository
	notifications *NotificationService
}

func NewRelationshipService(db *gorm.DB, notifications *NotificationService) *RelationshipService {
	return &RelationshipService{
		db:            db,
		follows:       repositories.NewFollowRepository(db),
		outbox:        repositories.NewOutboxRepository(db),
		notifications: notifications,
	}
}

// Follow idempotently ensures the follow edge exists. Re-following is a
// no-op, not an error. Fires a follow notification to the followee and,
// when the reverse edge already exists, a mutual-follow notification to
// both parties.
func (s *RelationshipService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", followingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, followingID)
		}
		return err
	}

	var changed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = s.follows.Ensure(tx, followerID, followingID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		// Update counters
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1)).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventFollowed, followerID, followingID, nil)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.notifications.CreateFollowNotification(ctx, followerID, followingID); err != nil {
		fmt.Printf("Warning: failed to create follow notification: %v\n", err)
	}

	// Snapshot read: two users following each other in the same instant
	// may both miss the mutual alert, but Status() stays authoritative.
	reverse, err := s.follows.Exists(followingID, followerID)
	if err == nil && reverse {
		if err := s.notifications.CreateMutualFollowNotification(ctx, followerID, followingID); err != nil {
			fmt.Printf("Warning: failed to create mutual follow notification: %v\n", err)
		}
	}

	return nil
}

// Unfollow idempotently removes the follow edge; an absent edge is a no-op
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return fmt.Errorf("%w: cannot unfollow yourself", ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		removed, err := s.follows.Remove(tx, followerID, followingID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - ?", 1)).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventUnfollowed, followerID, followingID, nil)
	})
}

// Status derives the relation between two users from the two possible edges
func (s *RelationshipService) Status(a, b string) (models.RelationStatus, error) {
	return s.follows.Status(a, b)
}

// Followers returns the users following userID
func (s *RelationshipService) Followers(userID string) ([]models.User, error) {
	return s.follows.ListFollowers(userID)
}

// Following returns the users userID follows
func (s *RelationshipService) Following(userID string) ([]models.User, error) {
	return s.follows.ListFollowing(userID)
}
