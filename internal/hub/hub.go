// Package hub fans document-change events out to connected websocket clients
// so every device re-reads its snapshots as soon as another device writes.
package hub

import (
	"log/slog"
	"sync"
)

type Subscription struct {
	TenantID string
	Date     string
}

type Client struct {
	ID           string
	Send         chan []byte
	Subscription Subscription
}

type Hub struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	clients map[string]*Client
}

func New(logger *slog.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) UpdateSubscription(client *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Subscription = sub
}

// Broadcast sends payload to every client whose subscription matches meta.
// Slow clients are skipped rather than blocking the hub.
func (h *Hub) Broadcast(payload []byte, meta Subscription) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !match(client.Subscription, meta) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			if h.logger != nil {
				h.logger.Warn("drop message for slow client", "client", client.ID)
			}
		}
	}
}

func match(sub, meta Subscription) bool {
	if sub.TenantID != "" && meta.TenantID != sub.TenantID {
		return false
	}
	// Tenant-level changes (empty date) reach every date subscriber.
	if sub.Date != "" && meta.Date != "" && meta.Date != sub.Date {
		return false
	}
	return true
}
