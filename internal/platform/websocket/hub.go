// Package websocket provides the real-time notification system. It implements
// a hub-and-spoke pattern where each connection is bound to an authenticated
// user identity and events are delivered to all of that user's connections.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event represents a real-time notification sent to WebSocket clients.
type Event struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an Event with the payload marshaled to JSON. Marshal
// failures return the zero Event and false.
func NewEvent(name string, payload any) (Event, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, false
	}
	return Event{Event: name, Timestamp: time.Now().UTC(), Data: data}, true
}

// Client represents a single WebSocket connection bound to a user.
type Client struct {
	UserID uuid.UUID
	Role   string
	Send   chan []byte
}

// Hub is the central connection manager. It owns the registry of connected
// clients keyed by user identity; a user may hold several connections at
// once (one per device). All operations are safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]map[*Client]struct{}
	logger zerolog.Logger
}

// NewHub creates a new Hub ready to manage WebSocket clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		users:  make(map[uuid.UUID]map[*Client]struct{}),
		logger: logger,
	}
}

// Register adds an authenticated client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
}

// Unregister removes a client from the hub and closes its Send channel.
// Unregistering a client that is not present is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.users[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}

	delete(conns, client)
	if len(conns) == 0 {
		delete(h.users, client.UserID)
	}
	close(client.Send)
}

// Publish delivers an event to every connection the target user currently
// holds. Publishing to a user with no connections is a silent no-op.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event.Event).Msg("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.users[userID] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// DisconnectUser force-closes every connection the user holds, for example
// after an administrative deactivation.
func (h *Hub) DisconnectUser(userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.users[userID]
	if !ok {
		return
	}
	for client := range conns {
		close(client.Send)
	}
	delete(h.users, userID)
}

// ClientCount returns the total number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.users {
		n += len(conns)
	}
	return n
}

// UserConnectionCount returns the number of connections a single user holds.
func (h *Hub) UserConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
