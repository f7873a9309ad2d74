package repositories

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"runcrew-api/models"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append records a domain event in the same transaction as the state
// change that produced it.
func (r *OutboxRepository) Append(tx *gorm.DB, eventType, actorID, subjectID string, crewID *string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"actor_id":   actorID,
		"subject_id": subjectID,
		"crew_id":    crewID,
	})

	event := models.DomainEvent{
		EventType: eventType,
		ActorID:   actorID,
		SubjectID: subjectID,
		CrewID:    crewID,
		Payload:   string(payload),
		Status:    models.OutboxStatusPending,
	}
	return tx.Create(&event).Error
}

// ListPending returns the oldest pending events up to batchSize
func (r *OutboxRepository) ListPending(batchSize int) ([]models.DomainEvent, error) {
	var events []models.DomainEvent
	err := r.db.Where("status = ?", models.OutboxStatusPending).
		Order("id ASC").
		Limit(batchSize).
		Find(&events).Error
	return events, err
}

// MarkSent flags an event as delivered
func (r *OutboxRepository) MarkSent(id uint64) error {
	return r.db.Model(&models.DomainEvent{}).Where("id = ?", id).
		Update("status", models.OutboxStatusSent).Error
}

// MarkFailed flags an event as failed and bumps the retry counter; the
// relayer picks failed rows up again on a later pass.
func (r *OutboxRepository) MarkFailed(id uint64) error {
	return r.db.Model(&models.DomainEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": models.OutboxStatusFailed,
			"retry":  gorm.Expr("retry + 1"),
		}).Error
}

// RequeueFailed returns failed events below the retry cap to pending
func (r *OutboxRepository) RequeueFailed(maxRetries int) error {
	return r.db.Model(&models.DomainEvent{}).
		Where("status = ? AND retry < ?", models.OutboxStatusFailed, maxRetries).
		Update("status", models.OutboxStatusPending).Error
}
