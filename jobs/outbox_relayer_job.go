// File: /jobs/outbox_relayer_job.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"runcrew-api/models"
	"runcrew-api/repositories"
)

const (
	relayerBatchSize  = 100
	relayerMaxRetries = 5
)

// EventSender delivers a drained outbox row to the event stream
type EventSender interface {
	Publish(ctx context.Context, event *models.DomainEvent) error
}

// OutboxRelayerJob drains pending domain events to the event stream on
// a fixed interval. Events are written to the outbox table inside the
// transaction that produced them, so the stream eventually sees every
// committed change even when the broker was down at commit time.
type OutboxRelayerJob struct {
	outbox *repositories.OutboxRepository
	sender EventSender
	ticker *time.Ticker
	done   chan bool
}

// NewOutboxRelayerJob creates a new outbox relayer job
func NewOutboxRelayerJob(db *gorm.DB, sender EventSender, interval time.Duration) *OutboxRelayerJob {
	return &OutboxRelayerJob{
		outbox: repositories.NewOutboxRepository(db),
		sender: sender,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the relayer loop
func (j *OutboxRelayerJob) Start() {
	fmt.Println("Outbox relayer job started")

	go func() {
		// Drain immediately on start
		j.drainOnce()

		for {
			select {
			case <-j.ticker.C:
				j.drainOnce()
			case <-j.done:
				fmt.Println("Outbox relayer job stopped")
				return
			}
		}
	}()
}

// Stop stops the relayer loop
func (j *OutboxRelayerJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

// drainOnce pushes one batch of pending events, then requeues failed
// rows still under the retry cap for the next pass.
func (j *OutboxRelayerJob) drainOnce() {
	events, err := j.outbox.ListPending(relayerBatchSize)
	if err != nil {
		fmt.Printf("Error listing pending outbox events: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := range events {
		event := &events[i]
		if err := j.sender.Publish(ctx, event); err != nil {
			fmt.Printf("Error publishing event %d (%s): %v\n", event.ID, event.EventType, err)
			if err := j.outbox.MarkFailed(event.ID); err != nil {
				fmt.Printf("Error marking event %d failed: %v\n", event.ID, err)
			}
			continue
		}
		if err := j.outbox.MarkSent(event.ID); err != nil {
			fmt.Printf("Error marking event %d sent: %v\n", event.ID, err)
		}
	}

	if err := j.outbox.RequeueFailed(relayerMaxRetries); err != nil {
		fmt.Printf("Error requeueing failed outbox events: %v\n", err)
	}
}
