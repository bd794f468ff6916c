package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/board"
	"github.com/BST1120/mapper2/internal/server/authctx"
)

// BoardHandler exposes the mutation protocol: moves, breaks, absence, the
// day lock and the shared memo. All routes sit behind the edit-session gate.
type BoardHandler struct {
	Board *board.Board
}

func (h BoardHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tenants/{tenant}/days/{date}/staff/{staff}/move", h.move)
	r.Post("/tenants/{tenant}/days/{date}/staff/{staff}/break/start", h.startBreak)
	r.Post("/tenants/{tenant}/days/{date}/staff/{staff}/break/end", h.endBreak)
	r.Post("/tenants/{tenant}/days/{date}/staff/{staff}/break/cancel", h.cancelBreak)
	r.Post("/tenants/{tenant}/days/{date}/staff/{staff}/absent", h.setAbsent)
	r.Post("/tenants/{tenant}/days/{date}/lock", h.toggleLock)
	r.Post("/tenants/{tenant}/days/{date}/memo", h.setMemo)
}

func dayParams(r *http.Request) (tenantID, date string) {
	return chi.URLParam(r, "tenant"), chi.URLParam(r, "date")
}

func (h BoardHandler) move(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	staffID := chi.URLParam(r, "staff")
	var req struct {
		ToAreaID string `json:"toAreaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Board.MoveStaff(r.Context(), tenantID, date, staffID, req.ToAreaID, authctx.UID(r.Context())); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h BoardHandler) startBreak(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	staffID := chi.URLParam(r, "staff")
	if err := h.Board.StartNextBreak(r.Context(), tenantID, date, staffID, authctx.UID(r.Context())); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h BoardHandler) endBreak(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	staffID := chi.URLParam(r, "staff")
	if err := h.Board.EndBreak(r.Context(), tenantID, date, staffID, authctx.UID(r.Context())); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h BoardHandler) cancelBreak(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	staffID := chi.URLParam(r, "staff")
	if err := h.Board.CancelBreak(r.Context(), tenantID, date, staffID, authctx.UID(r.Context())); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h BoardHandler) setAbsent(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	staffID := chi.URLParam(r, "staff")
	var req struct {
		Absent bool `json:"absent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Board.SetAbsent(r.Context(), tenantID, date, staffID, req.Absent); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h BoardHandler) toggleLock(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Board.ToggleLock(r.Context(), tenantID, date, req.Locked, authctx.UID(r.Context())); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locked": req.Locked})
}

func (h BoardHandler) setMemo(w http.ResponseWriter, r *http.Request) {
	tenantID, date := dayParams(r)
	var req struct {
		Memo string `json:"memo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Board.SetDayMemo(r.Context(), tenantID, date, req.Memo); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
