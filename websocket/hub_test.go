package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID string, buffer int) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Hub:    hub,
		Send:   make(chan []byte, buffer),
	}
}

func TestSendToUser_DeliversToAllConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := newTestClient(hub, "runner-1", 4)
	watch := newTestClient(hub, "runner-1", 4)
	hub.register <- phone
	hub.register <- watch

	require.Eventually(t, func() bool {
		return hub.IsOnline("runner-1")
	}, time.Second, 5*time.Millisecond)

	hub.SendToUser("runner-1", "notification", map[string]string{"id": "n1"})

	assert.Len(t, phone.Send, 1)
	assert.Len(t, watch.Send, 1)
}

func TestSendToUser_OfflineUserIsSkipped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.SendToUser("nobody", "notification", nil)

	assert.False(t, hub.IsOnline("nobody"))
}

func TestSendToUser_EvictsClientWithFullBuffer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stuck := newTestClient(hub, "runner-1", 1)
	hub.register <- stuck

	require.Eventually(t, func() bool {
		return hub.IsOnline("runner-1")
	}, time.Second, 5*time.Millisecond)

	hub.SendToUser("runner-1", "notification", nil)
	hub.SendToUser("runner-1", "notification", nil)

	assert.Eventually(t, func() bool {
		return !hub.IsOnline("runner-1")
	}, time.Second, 5*time.Millisecond)
}

// Delivery must stay safe while connections churn, so the user map is
// only touched under the hub lock.
func TestSendToUser_ConcurrentConnectionChurn(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stable := newTestClient(hub, "runner-1", 4096)
	hub.register <- stable

	require.Eventually(t, func() bool {
		return hub.IsOnline("runner-1")
	}, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				transient := newTestClient(hub, "runner-1", 1)
				hub.register <- transient
				hub.unregister <- transient
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		hub.SendToUser("runner-1", "notification", map[string]int{"seq": i})
	}
	close(done)
	wg.Wait()

	assert.NotEmpty(t, stable.Send)
}
