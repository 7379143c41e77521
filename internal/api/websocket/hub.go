package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub tracks connected clients by the integration they watch.
type Hub struct {
	clients      map[*Client]bool
	integrations map[string]map[*Client]bool
	mu           sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		integrations: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if _, ok := h.integrations[client.IntegrationID]; !ok {
		h.integrations[client.IntegrationID] = make(map[*Client]bool)
	}
	h.integrations[client.IntegrationID][client] = true

	log.Debug().
		Str("integration_id", client.IntegrationID).
		Msg("WebSocket client connected")
}

// Unregister removes the client and closes its send channel. Calling it twice
// is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(client)
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	if conns, ok := h.integrations[client.IntegrationID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.integrations, client.IntegrationID)
		}
	}

	log.Debug().
		Str("integration_id", client.IntegrationID).
		Msg("WebSocket client disconnected")
}

// SendToIntegration delivers the event to every client watching the
// integration. Clients whose buffer is full are dropped.
func (h *Hub) SendToIntegration(integrationID string, event *Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal websocket event")
		return 0
	}

	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for client := range h.integrations[integrationID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, client := range slow {
			h.remove(client)
		}
		h.mu.Unlock()
	}
	return delivered
}

func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.remove(client)
	}
}
