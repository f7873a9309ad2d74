package models

import "time"

type OutboxStatus int8

const (
	OutboxStatusPending OutboxStatus = 0
	OutboxStatusSent    OutboxStatus = 1
	OutboxStatusFailed  OutboxStatus = 2
)

// DomainEvent is a typed engine event recorded alongside the state change
// that produced it. A relayer job drains pending rows to the message
// broker, so delivery is at-least-once and survives process restarts.
type DomainEvent struct {
	ID        uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	EventType string       `json:"event_type" gorm:"not null;size:50;index"`
	ActorID   string       `json:"actor_id" gorm:"not null;size:191"`
	SubjectID string       `json:"subject_id" gorm:"not null;size:191"`
	CrewID    *string      `json:"crew_id" gorm:"size:191"`
	Payload   string       `json:"payload" gorm:"type:json;not null"`
	Status    OutboxStatus `json:"status" gorm:"not null;default:0;index"`
	Retry     int          `json:"retry" gorm:"not null;default:0"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (DomainEvent) TableName() string { return "social_outbox" }

// Domain event types emitted by the engine.
const (
	EventFollowed             = "followed"
	EventUnfollowed           = "unfollowed"
	EventCrewCreated          = "crew_created"
	EventCrewUpdated          = "crew_updated"
	EventCrewDisbanded        = "crew_disbanded"
	EventMembershipRequested  = "membership_requested"
	EventMembershipApproved   = "membership_approved"
	EventMembershipRejected   = "membership_rejected"
	EventMemberPromoted       = "member_promoted"
	EventOwnershipTransferred = "ownership_transferred"
	EventMemberKicked         = "member_kicked"
	EventMemberLeft           = "member_left"
	EventNoticePosted         = "notice_posted"
)
