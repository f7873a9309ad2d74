package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanPerform_ApproveReject(t *testing.T) {
	for _, action := range []CrewAction{CrewActionApprove, CrewActionReject} {
		assert.True(t, CanPerform(CrewRoleOwner, action, CrewRoleMember))
		assert.True(t, CanPerform(CrewRoleAdmin, action, CrewRoleMember))
		assert.False(t, CanPerform(CrewRoleMember, action, CrewRoleMember))
	}
}

func TestCanPerform_Promote(t *testing.T) {
	assert.True(t, CanPerform(CrewRoleOwner, CrewActionPromote, CrewRoleMember))
	assert.False(t, CanPerform(CrewRoleOwner, CrewActionPromote, CrewRoleAdmin))
	assert.False(t, CanPerform(CrewRoleAdmin, CrewActionPromote, CrewRoleMember))
	assert.False(t, CanPerform(CrewRoleMember, CrewActionPromote, CrewRoleMember))
}

func TestCanPerform_Transfer(t *testing.T) {
	assert.True(t, CanPerform(CrewRoleOwner, CrewActionTransfer, CrewRoleMember))
	assert.True(t, CanPerform(CrewRoleOwner, CrewActionTransfer, CrewRoleAdmin))
	assert.False(t, CanPerform(CrewRoleOwner, CrewActionTransfer, CrewRoleOwner))
	assert.False(t, CanPerform(CrewRoleAdmin, CrewActionTransfer, CrewRoleMember))
}

func TestCanPerform_Kick(t *testing.T) {
	// Nobody kicks the owner
	assert.False(t, CanPerform(CrewRoleOwner, CrewActionKick, CrewRoleOwner))
	assert.False(t, CanPerform(CrewRoleAdmin, CrewActionKick, CrewRoleOwner))

	// Owner kicks anyone below
	assert.True(t, CanPerform(CrewRoleOwner, CrewActionKick, CrewRoleAdmin))
	assert.True(t, CanPerform(CrewRoleOwner, CrewActionKick, CrewRoleMember))

	// Admin kicks members only
	assert.True(t, CanPerform(CrewRoleAdmin, CrewActionKick, CrewRoleMember))
	assert.False(t, CanPerform(CrewRoleAdmin, CrewActionKick, CrewRoleAdmin))

	// Members kick nobody
	assert.False(t, CanPerform(CrewRoleMember, CrewActionKick, CrewRoleMember))
}

func TestCanPerform_UpdateDisband(t *testing.T) {
	for _, action := range []CrewAction{CrewActionUpdate, CrewActionDisband} {
		assert.True(t, CanPerform(CrewRoleOwner, action, ""))
		assert.False(t, CanPerform(CrewRoleAdmin, action, ""))
		assert.False(t, CanPerform(CrewRoleMember, action, ""))
	}
}

func TestCanPerform_UnknownAction(t *testing.T) {
	assert.False(t, CanPerform(CrewRoleOwner, CrewAction("rename"), CrewRoleMember))
}

func TestOrderFriendPair(t *testing.T) {
	a, b := OrderFriendPair("user-b", "user-a")
	assert.Equal(t, "user-a", a)
	assert.Equal(t, "user-b", b)

	a, b = OrderFriendPair("user-a", "user-b")
	assert.Equal(t, "user-a", a)
	assert.Equal(t, "user-b", b)
}
