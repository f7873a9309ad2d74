// File: /models/crew.go
package models

import "time"

const MaxCrewTags = 5

type CrewRole string

const (
	CrewRoleOwner  CrewRole = "owner"
	CrewRoleAdmin  CrewRole = "admin"
	CrewRoleMember CrewRole = "member"
)

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusApproved MembershipStatus = "approved"
)

type Crew struct {
	ID           string      `json:"id" gorm:"primaryKey;size:191"`
	Name         string      `json:"name" gorm:"uniqueIndex;not null;size:255"`
	Region       string      `json:"region" gorm:"size:255;index"`
	Description  string      `json:"description" gorm:"type:text"`
	Tags         StringSlice `json:"tags" gorm:"type:json"`
	EmblemURL    *string     `json:"emblem_url" gorm:"size:500"`
	OwnerID      string      `json:"owner_id" gorm:"not null;size:191"`
	MembersCount int         `json:"members_count" gorm:"default:0"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Owner       User             `json:"owner" gorm:"foreignKey:OwnerID"`
	Memberships []CrewMembership `json:"memberships,omitempty" gorm:"foreignKey:CrewID"`
}

// CrewMembership is the join record between a user and a crew. A user
// holds at most one approved membership across all crews; the
// (crew_id, user_id) pair is unique so re-applying is idempotent.
type CrewMembership struct {
	ID       string           `json:"id" gorm:"primaryKey;size:191"`
	CrewID   string           `json:"crew_id" gorm:"not null;size:191;uniqueIndex:uk_crew_memberships_pair;index"`
	UserID   string           `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_crew_memberships_pair;index"`
	Role     CrewRole         `json:"role" gorm:"not null;default:'member';size:20"`
	Status   MembershipStatus `json:"status" gorm:"not null;default:'pending';size:20"`
	// Cached projection of Crew.OwnerID, refreshed on ownership transfer.
	CrewOwnerID string     `json:"crew_owner_id" gorm:"size:191"`
	JoinedAt    *time.Time `json:"joined_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Crew Crew `json:"crew" gorm:"foreignKey:CrewID"`
	User User `json:"user" gorm:"foreignKey:UserID"`
}

// CrewAction is a mutating membership transition subject to the role matrix.
type CrewAction string

const (
	CrewActionApprove  CrewAction = "approve"
	CrewActionReject   CrewAction = "reject"
	CrewActionPromote  CrewAction = "promote"
	CrewActionTransfer CrewAction = "transfer"
	CrewActionKick     CrewAction = "kick"
	CrewActionUpdate   CrewAction = "update"
	CrewActionDisband  CrewAction = "disband"
)

// CanPerform is the single authorization matrix for crew transitions.
// Owner outranks admin outranks member; every mutating operation goes
// through here before touching any record.
func CanPerform(actor CrewRole, action CrewAction, target CrewRole) bool {
	switch action {
	case CrewActionApprove, CrewActionReject:
		return actor == CrewRoleOwner || actor == CrewRoleAdmin
	case CrewActionPromote:
		return actor == CrewRoleOwner && target == CrewRoleMember
	case CrewActionTransfer:
		return actor == CrewRoleOwner && target != CrewRoleOwner
	case CrewActionKick:
		if target == CrewRoleOwner {
			return false
		}
		if actor == CrewRoleOwner {
			return true
		}
		return actor == CrewRoleAdmin && target == CrewRoleMember
	case CrewActionUpdate, CrewActionDisband:
		return actor == CrewRoleOwner
	default:
		return false
	}
}
