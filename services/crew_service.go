// File: /services/crew_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"runcrew-api/models"
	"runcrew-api/repositories"
	"runcrew-api/utils"
)

// CrewService owns the crew entity itself: creation, profile updates and
// disbandment. Membership transitions live in MembershipService.
type CrewService struct {
	db      *gorm.DB
	members *repositories.MembershipRepository
	outbox  *repositories.OutboxRepository
}

func NewCrewService(db *gorm.DB) *CrewService {
	return &CrewService{
		db:      db,
		members: repositories.NewMembershipRepository(db),
		outbox:  repositories.NewOutboxRepository(db),
	}
}

type CrewParams struct {
	Name        string   `json:"name"`
	Region      string   `json:"region"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	EmblemURL   *string  `json:"emblem_url"`
}

// CreateCrew creates the crew, its approved owner membership and the
// owner's cached crew fields. The sub-writes are individually keyed on
// crew id and (crew_id, user_id), so retrying the whole sequence after a
// partial failure converges instead of duplicating records.
func (s *CrewService) CreateCrew(ctx context.Context, ownerID string, params CrewParams) (*models.Crew, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: crew name required", ErrValidation)
	}

	hasCrew, err := s.members.HasApprovedMembership(ownerID)
	if err != nil {
		return nil, err
	}
	if hasCrew {
		return nil, fmt.Errorf("%w: user already belongs to a crew", ErrConflict)
	}

	crew := &models.Crew{
		ID:           uuid.New().String(),
		Name:         name,
		Region:       strings.TrimSpace(params.Region),
		Description:  params.Description,
		Tags:         utils.NormalizeTags(params.Tags, models.MaxCrewTags),
		EmblemURL:    params.EmblemURL,
		OwnerID:      ownerID,
		MembersCount: 1,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(crew).Error; err != nil {
			return err
		}

		if err := s.members.EnsureOwner(tx, crew.ID, ownerID); err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", ownerID).
			Updates(map[string]interface{}{
				"crew_id":   crew.ID,
				"crew_name": crew.Name,
			}).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventCrewCreated, ownerID, ownerID, &crew.ID)
	})
	if err != nil {
		return nil, err
	}

	return crew, nil
}

// UpdateCrew updates crew attributes; owner only. A rename fans out to
// every member's cached crew_name in the same workflow, so the cached
// projection never goes stale.
func (s *CrewService) UpdateCrew(ctx context.Context, actorID, crewID string, params CrewParams) (*models.Crew, error) {
	crew, err := s.getCrew(crewID)
	if err != nil {
		return nil, err
	}

	role, err := s.members.ApprovedRole(crewID, actorID)
	if err != nil || !models.CanPerform(role, models.CrewActionUpdate, "") {
		return nil, fmt.Errorf("%w: only the owner may update the crew", ErrForbidden)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: crew name required", ErrValidation)
	}

	renamed := name != crew.Name

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":        name,
			"region":      strings.TrimSpace(params.Region),
			"description": params.Description,
			"tags":        models.StringSlice(utils.NormalizeTags(params.Tags, models.MaxCrewTags)),
		}
		if params.EmblemURL != nil {
			updates["emblem_url"] = *params.EmblemURL
		}

		if err := tx.Model(&models.Crew{}).Where("id = ?", crewID).Updates(updates).Error; err != nil {
			return err
		}

		if renamed {
			if err := tx.Model(&models.User{}).Where("crew_id = ?", crewID).
				Update("crew_name", name).Error; err != nil {
				return err
			}
		}

		return s.outbox.Append(tx, models.EventCrewUpdated, actorID, crewID, &crewID)
	})
	if err != nil {
		return nil, err
	}

	return s.getCrew(crewID)
}

// Disband deletes the crew and cascades: every membership goes, every
// member's cached crew fields are cleared, and the crew's notices are
// removed so no orphaned records remain. The confirmation text must
// match the crew name byte for byte; on mismatch nothing changes.
func (s *CrewService) Disband(ctx context.Context, actorID, crewID, confirmText string) error {
	crew, err := s.getCrew(crewID)
	if err != nil {
		return err
	}

	role, err := s.members.ApprovedRole(crewID, actorID)
	if err != nil || !models.CanPerform(role, models.CrewActionDisband, "") {
		return fmt.Errorf("%w: only the owner may disband the crew", ErrForbidden)
	}

	if confirmText != crew.Name {
		return fmt.Errorf("%w: confirmation text does not match crew name", ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("crew_id = ?", crewID).Delete(&models.CrewMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("crew_id = ?", crewID).
			Updates(map[string]interface{}{
				"crew_id":   nil,
				"crew_name": nil,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("crew_id = ?", crewID).Delete(&models.Notice{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Crew{}, "id = ?", crewID).Error; err != nil {
			return err
		}

		return s.outbox.Append(tx, models.EventCrewDisbanded, actorID, crewID, &crewID)
	})
}

// GetCrew returns the crew with its approved member roster
func (s *CrewService) GetCrew(crewID string) (*models.Crew, []models.CrewMembership, error) {
	crew, err := s.getCrew(crewID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.members.ApprovedMembers(crewID)
	if err != nil {
		return nil, nil, err
	}
	for i := range members {
		members[i].User.Password = ""
	}

	return crew, members, nil
}

// ListCrews returns crews filtered by region and/or tag, newest first
func (s *CrewService) ListCrews(region, tag string, page, limit int) ([]models.Crew, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	query := s.db.Model(&models.Crew{})
	if region != "" {
		query = query.Where("region = ?", region)
	}
	if tag != "" {
		// Tags are stored as a JSON array
		query = query.Where("tags LIKE ?", "%\""+strings.ToLower(tag)+"\"%")
	}

	var total int64
	query.Count(&total)

	var crews []models.Crew
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&crews).Error

	return crews, total, err
}

func (s *CrewService) getCrew(crewID string) (*models.Crew, error) {
	var crew models.Crew
	if err := s.db.First(&crew, "id = ?", crewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: crew %s", ErrNotFound, crewID)
		}
		return nil, err
	}
	return &crew, nil
}
