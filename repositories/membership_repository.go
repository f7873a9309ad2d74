package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"runcrew-api/models"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// EnsureOwner idempotently writes the approved owner membership for a
// freshly created crew. Keyed on (crew_id, user_id), so re-running the
// create-crew workflow after a partial failure converges.
func (r *MembershipRepository) EnsureOwner(tx *gorm.DB, crewID, ownerID string) error {
	now := time.Now()
	membership := models.CrewMembership{
		ID:          uuid.New().String(),
		CrewID:      crewID,
		UserID:      ownerID,
		Role:        models.CrewRoleOwner,
		Status:      models.MembershipStatusApproved,
		CrewOwnerID: ownerID,
		JoinedAt:    &now,
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "crew_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&membership).Error
}

// Find loads a membership by id
func (r *MembershipRepository) Find(membershipID string) (*models.CrewMembership, error) {
	var membership models.CrewMembership
	err := r.db.First(&membership, "id = ?", membershipID).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindByCrewAndUser loads the membership record for a user in a crew
func (r *MembershipRepository) FindByCrewAndUser(crewID, userID string) (*models.CrewMembership, error) {
	var membership models.CrewMembership
	err := r.db.Where("crew_id = ? AND user_id = ?", crewID, userID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ApprovedRole returns the role the user holds in the crew, or an error
// when the user has no approved membership there.
func (r *MembershipRepository) ApprovedRole(crewID, userID string) (models.CrewRole, error) {
	var membership models.CrewMembership
	err := r.db.Where("crew_id = ? AND user_id = ? AND status = ?",
		crewID, userID, models.MembershipStatusApproved).First(&membership).Error
	if err != nil {
		return "", err
	}
	return membership.Role, nil
}

// HasApprovedMembership reports whether the user belongs to any crew
func (r *MembershipRepository) HasApprovedMembership(userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CrewMembership{}).
		Where("user_id = ? AND status = ?", userID, models.MembershipStatusApproved).
		Count(&count).Error
	return count > 0, err
}

// HasPendingRequest reports whether the user already applied to the crew
func (r *MembershipRepository) HasPendingRequest(crewID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CrewMembership{}).
		Where("crew_id = ? AND user_id = ? AND status = ?",
			crewID, userID, models.MembershipStatusPending).
		Count(&count).Error
	return count > 0, err
}

// ApprovedMembers returns all approved memberships of a crew with users
func (r *MembershipRepository) ApprovedMembers(crewID string) ([]models.CrewMembership, error) {
	var memberships []models.CrewMembership
	err := r.db.Preload("User").
		Where("crew_id = ? AND status = ?", crewID, models.MembershipStatusApproved).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// ApprovedMemberIDs returns the user ids of all approved members
func (r *MembershipRepository) ApprovedMemberIDs(crewID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.CrewMembership{}).
		Where("crew_id = ? AND status = ?", crewID, models.MembershipStatusApproved).
		Pluck("user_id", &ids).Error
	return ids, err
}

// PendingRequests returns all pending memberships of a crew with users
func (r *MembershipRepository) PendingRequests(crewID string) ([]models.CrewMembership, error) {
	var memberships []models.CrewMembership
	err := r.db.Preload("User").
		Where("crew_id = ? AND status = ?", crewID, models.MembershipStatusPending).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// IsApprovedMember reports whether the user is an approved member of the crew
func (r *MembershipRepository) IsApprovedMember(crewID, userID string) (bool, error) {
	_, err := r.ApprovedRole(crewID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
