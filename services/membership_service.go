// File: /services/membership_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"runcrew-api/models"
	"runcrew-api/repositories"
)

// MembershipService is the state machine governing who belongs to a
// crew, with what role and status. Every mutating transition checks the
// role matrix first; a failed check returns ErrForbidden with no state
// change.
type MembershipService struct {
	db            *gorm.DB
	members       *repositories.MembershipRepository
	outbox        *repositories.OutboxRepository
	notifications *NotificationService
}

func NewMembershipService(db *gorm.DB, notifications *NotificationService) *MembershipService {
	return &MembershipService{
		db:            db,
		members:       repositories.NewMembershipRepository(db),
		outbox:        repositories.NewOutboxRepository(db),
		notifications: notifications,
	}
}

// RequestJoin creates a pending membership. A user who already belongs
// to a crew, or who already has a pending request for this crew, gets
// ErrConflict.
func (s *MembershipService) RequestJoin(ctx context.Context, userID, crewID string) (*models.CrewMembership, error) {
	var crew models.Crew
	if err := s.db.First(&crew, "id = ?", crewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: crew %s", ErrNotFound, crewID)
		}
		return nil, err
	}

	hasCrew, err := s.members.HasApprovedMembership(userID)
	if err != nil {
		return nil, err
	}
	if hasCrew {
		return nil, fmt.Errorf("%w: user already belongs to a crew", ErrConflict)
	}

	pending, err := s.members.HasPendingRequest(crewID, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: join request already pending", ErrConflict)
	}

	membership := &models.CrewMembership{
		ID:          uuid.New().String(),
		CrewID:      crewID,
		UserID:      userID,
		Role:        models.CrewRoleMember,
		Status:      models.MembershipStatusPending,
		CrewOwnerID: crew.OwnerID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The (crew_id, user_id) unique key makes a racing duplicate a
		// silent no-op rather than a corrupted second record.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "crew_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(membership).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventMembershipRequested, userID, userID, &crewID)
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// Approve flips a pending membership to approved, fills the user's
// cached crew fields and notifies the new member. Approving an
// already-approved membership is a no-op so retries converge.
func (s *MembershipService) Approve(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.findMembership(membershipID)
	if err != nil {
		return err
	}

	actorRole, err := s.members.ApprovedRole(membership.CrewID, actorID)
	if err != nil || !models.CanPerform(actorRole, models.CrewActionApprove, membership.Role) {
		return fmt.Errorf("%w: approving requires owner or admin role", ErrForbidden)
	}

	if membership.Status == models.MembershipStatusApproved {
		return nil
	}

	// The requester may have been approved into another crew while this
	// request sat pending.
	hasCrew, err := s.members.HasApprovedMembership(membership.UserID)
	if err != nil {
		return err
	}
	if hasCrew {
		return fmt.Errorf("%w: user already belongs to a crew", ErrConflict)
	}

	var crew models.Crew
	if err := s.db.First(&crew, "id = ?", membership.CrewID).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.CrewMembership{}).Where("id = ?", membership.ID).
			Updates(map[string]interface{}{
				"status":    models.MembershipStatusApproved,
				"joined_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", membership.UserID).
			Updates(map[string]interface{}{
				"crew_id":   crew.ID,
				"crew_name": crew.Name,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Crew{}).Where("id = ?", crew.ID).
			UpdateColumn("members_count", gorm.Expr("members_count + ?", 1)).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventMembershipApproved, actorID, membership.UserID, &crew.ID)
	})
	if err != nil {
		return err
	}

	if err := s.notifications.CreateCrewNotification(ctx,
		models.NotificationTypeCrewApproved, actorID, membership.UserID, crew.ID); err != nil {
		fmt.Printf("Warning: failed to create approval notification: %v\n", err)
	}

	return nil
}

// Reject removes a pending join request. The requester may cancel their
// own request; otherwise owner or admin role is required.
func (s *MembershipService) Reject(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.findMembership(membershipID)
	if err != nil {
		return err
	}

	if membership.Status != models.MembershipStatusPending {
		return fmt.Errorf("%w: membership is not pending", ErrValidation)
	}

	if actorID != membership.UserID {
		actorRole, err := s.members.ApprovedRole(membership.CrewID, actorID)
		if err != nil || !models.CanPerform(actorRole, models.CrewActionReject, membership.Role) {
			return fmt.Errorf("%w: rejecting requires owner or admin role", ErrForbidden)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CrewMembership{}, "id = ?", membership.ID).Error; err != nil {
			return err
		}
		return s.outbox.Append(tx, models.EventMembershipRejected, actorID, membership.UserID, &membership.CrewID)
	})
}

// PromoteToAdmin raises an approved member to admin; owner only
func (s *MembershipService) PromoteToAdmin(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.findMembership(membershipID)
	if err != nil {
		return err
	}

	if membership.Status != models.MembershipStatusApproved {
		return fmt.Errorf("%w: membership is not approved", ErrValidation)
	}

	actorRole, err := s.members.ApprovedRole(membership.CrewID, actorID)
	if err != nil || !models.CanPerform(actorRole, models.CrewActionPromote, membership.Role) {
		return fmt.Errorf("%w: promoting requires owner role", ErrForbidden)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CrewMembership{}).Where("id = ?", membership.ID).
			Update("role", models.CrewRoleAdmin).Error; err != nil {
			return err
		}
		return s.outbox.Append(tx, models.EventMemberPromoted, actorID, membership.UserID, &membership.CrewID)
	})
	if err != nil {
		return err
	}

	if err := s.notifications.CreateCrewNotification(ctx,
		models.NotificationTypeCrewAdmin, actorID, membership.UserID, membership.CrewID); err != nil {
		fmt.Printf("Warning: failed to create promotion notification: %v\n", err)
	}

	return nil
}

// TransferOwnership demotes the current owner to member, raises the
// target to owner, and refreshes Crew.OwnerID plus the cached
// crew_owner_id on every membership of the crew.
func (s *MembershipService) TransferOwnership(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.findMembership(membershipID)
	if err != nil {
		return err
	}

	if membership.Status != models.MembershipStatusApproved {
		return fmt.Errorf("%w: membership is not approved", ErrValidation)
	}
	if membership.UserID == actorID {
		return fmt.Errorf("%w: cannot transfer ownership to yourself", ErrValidation)
	}

	actorRole, err := s.members.ApprovedRole(membership.CrewID, actorID)
	if err != nil || !models.CanPerform(actorRole, models.CrewActionTransfer, membership.Role) {
		return fmt.Errorf("%w: transferring requires owner role", ErrForbidden)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CrewMembership{}).
			Where("crew_id = ? AND user_id = ?", membership.CrewID, actorID).
			Update("role", models.CrewRoleMember).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.CrewMembership{}).Where("id = ?", membership.ID).
			Update("role", models.CrewRoleOwner).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Crew{}).Where("id = ?", membership.CrewID).
			Update("owner_id", membership.UserID).Error; err != nil {
			return err
		}

		// Refresh the cached projection on every membership of the crew
		if err := tx.Model(&models.CrewMembership{}).
			Where("crew_id = ?", membership.CrewID).
			Update("crew_owner_id", membership.UserID).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventOwnershipTransferred, actorID, membership.UserID, &membership.CrewID)
	})
	if err != nil {
		return err
	}

	if err := s.notifications.CreateCrewNotification(ctx,
		models.NotificationTypeCrewOwner, actorID, membership.UserID, membership.CrewID); err != nil {
		fmt.Printf("Warning: failed to create ownership notification: %v\n", err)
	}

	return nil
}

// Kick removes an approved member. Owner may kick admins and members,
// admin may kick members only. Nobody kicks themselves or the owner.
func (s *MembershipService) Kick(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.findMembership(membershipID)
	if err != nil {
		return err
	}

	if membership.Status != models.MembershipStatusApproved {
		return fmt.Errorf("%w: membership is not approved", ErrValidation)
	}
	if membership.UserID == actorID {
		return fmt.Errorf("%w: cannot kick yourself", ErrValidation)
	}

	actorRole, err := s.members.ApprovedRole(membership.CrewID, actorID)
	if err != nil || !models.CanPerform(actorRole, models.CrewActionKick, membership.Role) {
		return fmt.Errorf("%w: insufficient role to kick this member", ErrForbidden)
	}

	err = s.removeMember(membership, actorID, models.EventMemberKicked)
	if err != nil {
		return err
	}

	if err := s.notifications.CreateCrewNotification(ctx,
		models.NotificationTypeCrewKicked, actorID, membership.UserID, membership.CrewID); err != nil {
		fmt.Printf("Warning: failed to create kick notification: %v\n", err)
	}

	return nil
}

// Leave removes the caller's own approved membership. The owner cannot
// leave; they must transfer ownership or disband first.
func (s *MembershipService) Leave(ctx context.Context, userID, crewID string) error {
	membership, err := s.members.FindByCrewAndUser(crewID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: not a member of this crew", ErrNotFound)
		}
		return err
	}

	if membership.Status != models.MembershipStatusApproved {
		return fmt.Errorf("%w: membership is not approved", ErrValidation)
	}
	if membership.Role == models.CrewRoleOwner {
		return fmt.Errorf("%w: owner must transfer ownership or disband first", ErrValidation)
	}

	return s.removeMember(membership, userID, models.EventMemberLeft)
}

// removeMember deletes the membership, clears the user's cached crew
// fields and decrements the member counter in one transaction.
func (s *MembershipService) removeMember(membership *models.CrewMembership, actorID, eventType string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.CrewMembership{}, "id = ?", membership.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already removed by a concurrent call; nothing left to do.
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", membership.UserID).
			Updates(map[string]interface{}{
				"crew_id":   nil,
				"crew_name": nil,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Crew{}).Where("id = ?", membership.CrewID).
			UpdateColumn("members_count", gorm.Expr("members_count - ?", 1)).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, eventType, actorID, membership.UserID, &membership.CrewID)
	})
}

// PendingRequests lists pending join requests of a crew; owner/admin only
func (s *MembershipService) PendingRequests(actorID, crewID string) ([]models.CrewMembership, error) {
	actorRole, err := s.members.ApprovedRole(crewID, actorID)
	if err != nil || !models.CanPerform(actorRole, models.CrewActionApprove, models.CrewRoleMember) {
		return nil, fmt.Errorf("%w: listing requests requires owner or admin role", ErrForbidden)
	}

	requests, err := s.members.PendingRequests(crewID)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].User.Password = ""
	}
	return requests, nil
}

func (s *MembershipService) findMembership(membershipID string) (*models.CrewMembership, error) {
	membership, err := s.members.Find(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: membership %s", ErrNotFound, membershipID)
		}
		return nil, err
	}
	return membership, nil
}
