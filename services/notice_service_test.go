package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"runcrew-api/models"
)

// setupNoticeCrew builds a crew with an owner and one approved member.
func setupNoticeCrew(t *testing.T, db *gorm.DB) (*models.User, *models.User, *models.Crew) {
	t.Helper()
	ctx := context.Background()

	crews := NewCrewService(db)
	memberships := NewMembershipService(db, newTestNotificationService(db))

	owner := createTestUser(t, db, "Owner")
	member := createTestUser(t, db, "Member")

	crew, err := crews.CreateCrew(ctx, owner.ID, CrewParams{Name: "Notice Crew"})
	require.NoError(t, err)

	request, err := memberships.RequestJoin(ctx, member.ID, crew.ID)
	require.NoError(t, err)
	require.NoError(t, memberships.Approve(ctx, owner.ID, request.ID))

	return owner, member, crew
}

func TestPostNotice_FansOutExceptAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner, member, crew := setupNoticeCrew(t, db)

	notice, err := svc.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{
		Title:   "Weekly run",
		Content: "Saturday 7am at the park",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.Nickname, notice.AuthorNickname)

	// The member is notified, the author is not
	var count int64
	db.Model(&models.Notification{}).
		Where("type = ? AND target_user_id = ?", models.NotificationTypeCrewNotice, member.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.Notification{}).
		Where("type = ? AND target_user_id = ?", models.NotificationTypeCrewNotice, owner.ID).
		Count(&count)
	assert.Zero(t, count)

	assert.Equal(t, int64(1), countOutboxEvents(t, db, models.EventNoticePosted))
}

func TestPostNotice_NonMemberForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))

	_, _, crew := setupNoticeCrew(t, db)
	stranger := createTestUser(t, db, "Stranger")

	_, err := svc.PostNotice(context.Background(), stranger.ID, crew.ID, NoticeParams{
		Title:   "Spam",
		Content: "Spam",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPostNotice_EmptyFieldsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))

	owner, _, crew := setupNoticeCrew(t, db)

	_, err := svc.PostNotice(context.Background(), owner.ID, crew.ID, NoticeParams{
		Title:   "  ",
		Content: "body",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditNotice_AuthorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner, member, crew := setupNoticeCrew(t, db)

	notice, err := svc.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{
		Title:   "Original",
		Content: "Original body",
	})
	require.NoError(t, err)

	_, err = svc.EditNotice(ctx, member.ID, notice.ID, NoticeParams{
		Title:   "Hijacked",
		Content: "Hijacked body",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.EditNotice(ctx, owner.ID, notice.ID, NoticeParams{
		Title:   "Updated",
		Content: "Updated body",
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
}

func TestDeleteNotice_AuthorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner, member, crew := setupNoticeCrew(t, db)

	notice, err := svc.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{
		Title:   "To delete",
		Content: "body",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteNotice(ctx, member.ID, notice.ID), ErrForbidden)
	require.NoError(t, svc.DeleteNotice(ctx, owner.ID, notice.ID))

	var count int64
	db.Model(&models.Notice{}).Where("id = ?", notice.ID).Count(&count)
	assert.Zero(t, count)
}

func TestListNotices_MembersOnlyNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner, member, crew := setupNoticeCrew(t, db)
	stranger := createTestUser(t, db, "Stranger")

	_, err := svc.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{Title: "First", Content: "a"})
	require.NoError(t, err)
	_, err = svc.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{Title: "Second", Content: "b"})
	require.NoError(t, err)

	notices, err := svc.ListNotices(ctx, member.ID, crew.ID)
	require.NoError(t, err)
	assert.Len(t, notices, 2)

	_, err = svc.ListNotices(ctx, stranger.ID, crew.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
