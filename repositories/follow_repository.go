package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"runcrew-api/models"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Ensure creates the follow edge if it does not exist. Returns true when
// a new edge was written, false when the edge was already there; either
// way the call succeeds, so retries converge.
func (r *FollowRepository) Ensure(tx *gorm.DB, followerID, followingID string) (bool, error) {
	follow := models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&follow)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Remove deletes the follow edge if present. Returns true when an edge
// was actually removed; an absent edge is not an error.
func (r *FollowRepository) Remove(tx *gorm.DB, followerID, followingID string) (bool, error) {
	result := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Exists reports whether followerID follows followingID
func (r *FollowRepository) Exists(followerID, followingID string) (bool, error) {
	var follow models.Follow
	err := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Status derives the relation between two users from the two possible
// edges. This read is the single source of truth for display; it
// self-corrects even when a race caused a missed notification.
func (r *FollowRepository) Status(a, b string) (models.RelationStatus, error) {
	aFollowsB, err := r.Exists(a, b)
	if err != nil {
		return models.RelationNone, err
	}
	bFollowsA, err := r.Exists(b, a)
	if err != nil {
		return models.RelationNone, err
	}

	switch {
	case aFollowsB && bFollowsA:
		return models.RelationMutual, nil
	case aFollowsB:
		return models.RelationFollowing, nil
	case bFollowsA:
		return models.RelationFollowedBy, nil
	default:
		return models.RelationNone, nil
	}
}

// ListFollowers returns users following userID
func (r *FollowRepository) ListFollowers(userID string) ([]models.User, error) {
	var follows []models.Follow
	if err := r.db.Preload("Follower").Where("following_id = ?", userID).Find(&follows).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(follows))
	for _, follow := range follows {
		follow.Follower.Password = ""
		users = append(users, follow.Follower)
	}
	return users, nil
}

// ListFollowing returns users that userID follows
func (r *FollowRepository) ListFollowing(userID string) ([]models.User, error) {
	var follows []models.Follow
	if err := r.db.Preload("Following").Where("follower_id = ?", userID).Find(&follows).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(follows))
	for _, follow := range follows {
		follow.Following.Password = ""
		users = append(users, follow.Following)
	}
	return users, nil
}
