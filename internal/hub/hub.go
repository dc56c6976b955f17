// Package hub tracks live connections and fans events out to them.
package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/logging"
)

// ErrIdentityInUse is returned by Rekey when the requested identity
// already belongs to another live connection.
var ErrIdentityInUse = errors.New("identity already in use")

// Hub is the connection registry and broadcast engine. It maps
// identities to live clients; room membership lives elsewhere and holds
// identity references only.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client under its current identity.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	lg := logging.L()
	lg.Debug().Str(logging.FieldConnID, c.id).Msg("client registered")
}

// Deregister removes the client with the given identity and closes its
// outbound queue. Reports whether anything was removed.
func (h *Hub) Deregister(id string) bool {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		c.closed = true
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	close(c.Send)
	lg := logging.L()
	lg.Debug().Str(logging.FieldConnID, id).Msg("client deregistered")
	return true
}

// Rekey atomically moves a connection from oldID to newID. The move is
// rejected when newID is held by another live connection; the caller
// keeps its old identity in that case.
func (h *Hub) Rekey(oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[oldID]
	if !ok {
		return errors.New("unknown connection")
	}
	if _, taken := h.clients[newID]; taken {
		return ErrIdentityInUse
	}

	delete(h.clients, oldID)
	c.id = newID
	h.clients[newID] = c
	return nil
}

// Lookup returns the client registered under id, if any.
func (h *Hub) Lookup(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Profile returns the identity profile for a registered connection.
func (h *Hub) Profile(id string) (*domain.Profile, bool) {
	c, ok := h.Lookup(id)
	if !ok {
		return nil, false
	}
	return c.Profile, true
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ToClients delivers event to each listed identity exactly once,
// skipping excludeID and anyone no longer registered. A member whose
// send queue is full is disconnected rather than blocked on.
func (h *Hub) ToClients(ids []string, event interface{}, excludeID string) {
	data, err := json.Marshal(event)
	if err != nil {
		lg := logging.L()
		lg.Error().Err(err).Msg("marshal broadcast event")
		return
	}

	var slow []string
	h.mu.RLock()
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		c, ok := h.clients[id]
		if !ok || c.closed {
			continue
		}
		if !c.trySend(data) {
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

// ToAll delivers event to every live connection, minus excludeID.
func (h *Hub) ToAll(event interface{}, excludeID string) {
	data, err := json.Marshal(event)
	if err != nil {
		lg := logging.L()
		lg.Error().Err(err).Msg("marshal broadcast event")
		return
	}

	var slow []string
	h.mu.RLock()
	for id, c := range h.clients {
		if id == excludeID || c.closed {
			continue
		}
		if !c.trySend(data) {
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

func (h *Hub) dropSlow(ids []string) {
	for _, id := range ids {
		lg := logging.L()
		lg.Warn().Str(logging.FieldConnID, id).Msg("send queue full, disconnecting slow consumer")
		if c, ok := h.Lookup(id); ok {
			h.Deregister(id)
			if c.conn != nil {
				c.conn.Close()
			}
		}
	}
}
