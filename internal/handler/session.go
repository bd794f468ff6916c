package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/service"
)

// SessionHandler exchanges the tenant admin PIN for an edit-session token.
type SessionHandler struct {
	Service service.SessionService
}

func (h SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tenants/{tenant}/session", h.login)
}

// RegisterProtectedRoutes holds the routes that themselves require a live
// edit session, such as rotating the PIN.
func (h SessionHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Put("/tenants/{tenant}/pin", h.setPIN)
}

func (h SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.PIN == "" {
		writeError(w, http.StatusBadRequest, "pin is required")
		return
	}
	res, err := h.Service.Login(r.Context(), tenantID, req.PIN)
	if err != nil {
		if errors.Is(err, service.ErrSessionsDisabled) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

func (h SessionHandler) setPIN(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Service.SetPIN(r.Context(), tenantID, req.PIN); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}
