package websocket

import (
	"encoding/json"
	"sync"
)

// Hub tracks every live connection keyed by user. A user can hold
// multiple connections (phone and watch at once), so delivery fans out
// to all of them.
type Hub struct {
	clients    map[string]*Client
	userConns  map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		userConns:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				if h.userConns[client.UserID] != nil {
					delete(h.userConns[client.UserID], client)
					if len(h.userConns[client.UserID]) == 0 {
						delete(h.userConns, client.UserID)
					}
				}
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// SendToUser pushes an event to every live connection of the user.
// Users with no connection are skipped; missed events are recovered
// through the notification list on next fetch.
func (h *Hub) SendToUser(userID, event string, data interface{}) {
	payload, err := json.Marshal(&Message{Event: event, Data: data})
	if err != nil {
		return
	}

	var stale []*Client
	h.mu.RLock()
	for client := range h.userConns[userID] {
		select {
		case client.Send <- payload:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
}

// SendToUsers pushes the same event to a set of users
func (h *Hub) SendToUsers(userIDs []string, event string, data interface{}) {
	payload, err := json.Marshal(&Message{Event: event, Data: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	for _, userID := range userIDs {
		clients := h.userConns[userID]
		for client := range clients {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
