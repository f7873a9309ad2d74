package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcrew-api/models"
)

func TestCreateCrew_SetsUpOwnerMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewCrewService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")

	crew, err := svc.CreateCrew(ctx, owner.ID, CrewParams{
		Name:   "Han River Runners",
		Region: "Seoul",
		Tags:   []string{"Morning", "5K", "morning"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, crew.MembersCount)
	assert.Equal(t, owner.ID, crew.OwnerID)
	assert.Equal(t, models.StringSlice{"morning", "5k"}, crew.Tags)

	var membership models.CrewMembership
	require.NoError(t, db.Where("crew_id = ? AND user_id = ?", crew.ID, owner.ID).
		First(&membership).Error)
	assert.Equal(t, models.CrewRoleOwner, membership.Role)
	assert.Equal(t, models.MembershipStatusApproved, membership.Status)
	require.NotNil(t, membership.JoinedAt)

	var ownerReloaded models.User
	require.NoError(t, db.First(&ownerReloaded, "id = ?", owner.ID).Error)
	require.NotNil(t, ownerReloaded.CrewID)
	assert.Equal(t, crew.ID, *ownerReloaded.CrewID)
	require.NotNil(t, ownerReloaded.CrewName)
	assert.Equal(t, "Han River Runners", *ownerReloaded.CrewName)

	assert.Equal(t, int64(1), countOutboxEvents(t, db, models.EventCrewCreated))
}

func TestCreateCrew_EmptyNameRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewCrewService(db)

	owner := createTestUser(t, db, "Owner")

	_, err := svc.CreateCrew(context.Background(), owner.ID, CrewParams{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateCrew_SecondCrewRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewCrewService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")

	_, err := svc.CreateCrew(ctx, owner.ID, CrewParams{Name: "First Crew"})
	require.NoError(t, err)

	_, err = svc.CreateCrew(ctx, owner.ID, CrewParams{Name: "Second Crew"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateCrew_RenameFansOutToMemberCaches(t *testing.T) {
	db := newTestDB(t)
	crews := NewCrewService(db)
	memberships := NewMembershipService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")
	member := createTestUser(t, db, "Member")

	crew, err := crews.CreateCrew(ctx, owner.ID, CrewParams{Name: "Old Name"})
	require.NoError(t, err)

	request, err := memberships.RequestJoin(ctx, member.ID, crew.ID)
	require.NoError(t, err)
	require.NoError(t, memberships.Approve(ctx, owner.ID, request.ID))

	_, err = crews.UpdateCrew(ctx, owner.ID, crew.ID, CrewParams{Name: "New Name"})
	require.NoError(t, err)

	var memberReloaded models.User
	require.NoError(t, db.First(&memberReloaded, "id = ?", member.ID).Error)
	require.NotNil(t, memberReloaded.CrewName)
	assert.Equal(t, "New Name", *memberReloaded.CrewName)
}

func TestUpdateCrew_NonOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	crews := NewCrewService(db)
	memberships := NewMembershipService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")
	member := createTestUser(t, db, "Member")

	crew, err := crews.CreateCrew(ctx, owner.ID, CrewParams{Name: "Crew"})
	require.NoError(t, err)

	request, err := memberships.RequestJoin(ctx, member.ID, crew.ID)
	require.NoError(t, err)
	require.NoError(t, memberships.Approve(ctx, owner.ID, request.ID))

	_, err = crews.UpdateCrew(ctx, member.ID, crew.ID, CrewParams{Name: "Hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDisband_ConfirmationMismatchAborts(t *testing.T) {
	db := newTestDB(t)
	svc := NewCrewService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")

	crew, err := svc.CreateCrew(ctx, owner.ID, CrewParams{Name: "Keep Me"})
	require.NoError(t, err)

	err = svc.Disband(ctx, owner.ID, crew.ID, "keep me")
	assert.ErrorIs(t, err, ErrValidation)

	var stillThere models.Crew
	assert.NoError(t, db.First(&stillThere, "id = ?", crew.ID).Error)
}

func TestDisband_CascadesEverything(t *testing.T) {
	db := newTestDB(t)
	crews := NewCrewService(db)
	memberships := NewMembershipService(db, newTestNotificationService(db))
	notices := NewNoticeService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")
	member := createTestUser(t, db, "Member")

	crew, err := crews.CreateCrew(ctx, owner.ID, CrewParams{Name: "Doomed Crew"})
	require.NoError(t, err)

	request, err := memberships.RequestJoin(ctx, member.ID, crew.ID)
	require.NoError(t, err)
	require.NoError(t, memberships.Approve(ctx, owner.ID, request.ID))

	_, err = notices.PostNotice(ctx, owner.ID, crew.ID, NoticeParams{
		Title:   "Weekly run",
		Content: "Saturday 7am at the park",
	})
	require.NoError(t, err)

	require.NoError(t, crews.Disband(ctx, owner.ID, crew.ID, "Doomed Crew"))

	var crewCount, membershipCount, noticeCount int64
	db.Model(&models.Crew{}).Where("id = ?", crew.ID).Count(&crewCount)
	db.Model(&models.CrewMembership{}).Where("crew_id = ?", crew.ID).Count(&membershipCount)
	db.Model(&models.Notice{}).Where("crew_id = ?", crew.ID).Count(&noticeCount)
	assert.Zero(t, crewCount)
	assert.Zero(t, membershipCount)
	assert.Zero(t, noticeCount)

	for _, userID := range []string{owner.ID, member.ID} {
		var user models.User
		require.NoError(t, db.First(&user, "id = ?", userID).Error)
		assert.Nil(t, user.CrewID)
		assert.Nil(t, user.CrewName)
	}

	assert.Equal(t, int64(1), countOutboxEvents(t, db, models.EventCrewDisbanded))
}

func TestDisband_NonOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	crews := NewCrewService(db)
	memberships := NewMembershipService(db, newTestNotificationService(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner")
	admin := createTestUser(t, db, "Admin")

	crew, err := crews.CreateCrew(ctx, owner.ID, CrewParams{Name: "Crew"})
	require.NoError(t, err)

	request, err := memberships.RequestJoin(ctx, admin.ID, crew.ID)
	require.NoError(t, err)
	require.NoError(t, memberships.Approve(ctx, owner.ID, request.ID))
	require.NoError(t, memberships.PromoteToAdmin(ctx, owner.ID, request.ID))

	err = crews.Disband(ctx, admin.ID, crew.ID, "Crew")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListCrews_FiltersByRegionAndTag(t *testing.T) {
	db := newTestDB(t)
	svc := NewCrewService(db)
	ctx := context.Background()

	ownerA := createTestUser(t, db, "OwnerA")
	ownerB := createTestUser(t, db, "OwnerB")

	_, err := svc.CreateCrew(ctx, ownerA.ID, CrewParams{
		Name:   "Seoul Striders",
		Region: "Seoul",
		Tags:   []string{"trail"},
	})
	require.NoError(t, err)
	_, err = svc.CreateCrew(ctx, ownerB.ID, CrewParams{
		Name:   "Busan Pacers",
		Region: "Busan",
		Tags:   []string{"track"},
	})
	require.NoError(t, err)

	crews, total, err := svc.ListCrews("Seoul", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, crews, 1)
	assert.Equal(t, "Seoul Striders", crews[0].Name)

	crews, total, err = svc.ListCrews("", "track", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, crews, 1)
	assert.Equal(t, "Busan Pacers", crews[0].Name)
}
