// File: /services/notice_service.go
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
)

// NoticeService manages a crew's notice board. Posting fans a
// notification out to every approved member except the author.
type NoticeService struct {
	db            *gorm.DB
	members       *repositories.MembershipRepository
	outbox        *repositories.OutboxRepository
	notifications *NotificationService
}

func NewNoticeService(db *gorm.DB, notifications *NotificationService) *NoticeService {
	return &NoticeService{
		db:            db,
		members:       repositories.NewMembershipRepository(db),
		outbox:        repositories.NewOutboxRepository(db),
		notifications: notifications,
	}
}

type NoticeParams struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// PostNotice publishes a notice to the crew board; approved members only
func (s *NoticeService) PostNotice(ctx context.Context, authorID, crewID string, params NoticeParams) (*models.Notice, error) {
	title := strings.TrimSpace(params.Title)
	content := strings.TrimSpace(params.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	isMember, err := s.members.IsApprovedMember(crewID, authorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: only crew members can post notices", ErrForbidden)
	}

	var author models.User
	if err := s.db.First(&author, "id = ?", authorID).Error; err != nil {
		return nil, err
	}

	notice := &models.Notice{
		ID:             uuid.New().String(),
		CrewID:         crewID,
		Title:          title,
		Content:        content,
		AuthorID:       authorID,
		AuthorNickname: author.Nickname,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notice).Error; err != nil {
			return err
		}
		return s.outbox.Append(tx, models.EventNoticePosted, authorID, notice.ID, &crewID)
	})
	if err != nil {
		return nil, err
	}

	s.fanOut(ctx, notice)

	return notice, nil
}

// fanOut notifies every approved member of the crew except the author.
// Best effort; a failed delivery never rolls the notice back.
func (s *NoticeService) fanOut(ctx context.Context, notice *models.Notice) {
	memberIDs, err := s.members.ApprovedMemberIDs(notice.CrewID)
	if err != nil {
		fmt.Printf("Warning: failed to load crew members for notice fanout: %v\n", err)
		return
	}

	for _, memberID := range memberIDs {
		if memberID == notice.AuthorID {
			continue
		}
		if err := s.notifications.CreateNoticeNotification(ctx, notice.AuthorID, memberID, notice.CrewID, notice.ID); err != nil {
			fmt.Printf("Warning: failed to create notice notification for %s: %v\n", memberID, err)
		}
	}
}

// EditNotice updates title and content; only the author may edit
func (s *NoticeService) EditNotice(ctx context.Context, actorID, noticeID string, params NoticeParams) (*models.Notice, error) {
	notice, err := s.findNotice(noticeID)
	if err != nil {
		return nil, err
	}
	if notice.AuthorID != actorID {
		return nil, fmt.Errorf("%w: only the author can edit a notice", ErrForbidden)
	}

	title := strings.TrimSpace(params.Title)
	content := strings.TrimSpace(params.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	notice.Title = title
	notice.Content = content
	if err := s.db.Save(notice).Error; err != nil {
		return nil, err
	}

	return notice, nil
}

// DeleteNotice removes a notice; only the author may delete
func (s *NoticeService) DeleteNotice(ctx context.Context, actorID, noticeID string) error {
	notice, err := s.findNotice(noticeID)
	if err != nil {
		return err
	}
	if notice.AuthorID != actorID {
		return fmt.Errorf("%w: only the author can delete a notice", ErrForbidden)
	}

	return s.db.Delete(&models.Notice{}, "id = ?", noticeID).Error
}

// ListNotices returns the crew's notices, newest first; members only
func (s *NoticeService) ListNotices(ctx context.Context, userID, crewID string) ([]models.Notice, error) {
	isMember, err := s.members.IsApprovedMember(crewID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: only crew members can view notices", ErrForbidden)
	}

	var notices []models.Notice
	err = s.db.Where("crew_id = ?", crewID).
		Order("created_at DESC").
		Find(&notices).Error
	return notices, err
}

func (s *NoticeService) findNotice(noticeID string) (*models.Notice, error) {
	var notice models.Notice
	if err := s.db.First(&notice, "id = ?", noticeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: notice %s", ErrNotFound, noticeID)
		}
		return nil, err
	}
	return &notice, nil
}
