package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BST1120/mapper2/internal/hub"
	"github.com/BST1120/mapper2/internal/view"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WSHandler upgrades board clients onto the change feed. Each connected
// device picks a tenant+date subscription and receives a small notification
// whenever a matching document changes; the client then re-fetches the
// snapshot endpoints.
type WSHandler struct {
	Hub    *hub.Hub
	Views  *view.Registry
	Logger *slog.Logger

	Upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, views *view.Registry, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		Hub:    h,
		Views:  views,
		Logger: logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants/{tenant}/ws", h.serve)
}

type wsSubscribe struct {
	Date string `json:"date"`
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	date := r.URL.Query().Get("date")

	// Day-scoped views must exist before the first broadcast can fire.
	if views, err := h.Views.Tenant(tenantID); err == nil && date != "" {
		if err := views.EnsureDay(date); err != nil && h.Logger != nil {
			h.Logger.Warn("ensure day views failed", "tenant", tenantID, "date", date, "err", err)
		}
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket upgrade failed", "err", err)
		}
		return
	}

	client := &hub.Client{
		ID:           uuid.NewString(),
		Send:         make(chan []byte, 16),
		Subscription: hub.Subscription{TenantID: tenantID, Date: date},
	}
	h.Hub.Register(client)

	go h.writePump(conn, client)
	go h.readPump(conn, client, tenantID)
}

func (h *WSHandler) readPump(conn *websocket.Conn, client *hub.Client, tenantID string) {
	defer func() {
		h.Hub.Unregister(client)
		_ = conn.Close()
	}()
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub wsSubscribe
		if err := json.Unmarshal(msg, &sub); err != nil {
			continue
		}
		if views, err := h.Views.Tenant(tenantID); err == nil && sub.Date != "" {
			if err := views.EnsureDay(sub.Date); err != nil && h.Logger != nil {
				h.Logger.Warn("ensure day views failed", "tenant", tenantID, "date", sub.Date, "err", err)
			}
		}
		h.Hub.UpdateSubscription(client, hub.Subscription{TenantID: tenantID, Date: sub.Date})
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
