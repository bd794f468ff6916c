package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/view"
)

// AuditHandler serves the day's history feed, newest first, with optional
// kind and staff filters.
type AuditHandler struct {
	Views *view.Registry
	// DefaultLimit caps the feed when the client does not ask for one.
	DefaultLimit int
}

func (h AuditHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants/{tenant}/days/{date}/audit", h.list)
}

type auditPayload struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Kind          string    `json:"type"`
	StaffID       string    `json:"staffId,omitempty"`
	StaffName     string    `json:"staffName,omitempty"`
	FromAreaID    string    `json:"fromAreaId,omitempty"`
	ToAreaID      string    `json:"toAreaId,omitempty"`
	Minutes       int       `json:"minutes,omitempty"`
	ImportedCount int       `json:"importedCount,omitempty"`
}

func (h AuditHandler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, date := chi.URLParam(r, "tenant"), chi.URLParam(r, "date")
	views, err := h.Views.Tenant(tenantID)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	if err := views.EnsureDay(date); err != nil {
		writeBoardError(w, err)
		return
	}

	limit := h.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	kindFilter := r.URL.Query().Get("type")
	staffFilter := r.URL.Query().Get("staffId")

	staffByID := views.StaffByID()
	records := views.AuditLogs(date, 0)
	out := []auditPayload{}
	for _, rec := range records {
		e := rec.Entry
		if kindFilter != "" && string(e.Kind) != kindFilter {
			continue
		}
		if staffFilter != "" && e.StaffID != staffFilter {
			continue
		}
		p := auditPayload{
			ID:            rec.ID,
			Timestamp:     e.Timestamp,
			Kind:          string(e.Kind),
			StaffID:       e.StaffID,
			FromAreaID:    e.FromAreaID,
			ToAreaID:      e.ToAreaID,
			Minutes:       e.Minutes,
			ImportedCount: e.ImportedCount,
		}
		if s, ok := staffByID[e.StaffID]; ok {
			p.StaffName = s.DisplayName()
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": out,
		"kinds": []string{
			string(domain.AuditMove), string(domain.AuditLock), string(domain.AuditUnlock),
			string(domain.AuditBreakStart), string(domain.AuditBreakEnd),
			string(domain.AuditBreakCancel), string(domain.AuditImport),
		},
	})
}
