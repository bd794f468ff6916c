package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/bootstrap"
	"github.com/BST1120/mapper2/internal/service"
	"github.com/BST1120/mapper2/internal/view"
)

// TenantHandler provisions tenants and demo data.
type TenantHandler struct {
	Bootstrap *bootstrap.Bootstrapper
	Views     *view.Registry
}

func (h TenantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tenants", h.create)
	r.Post("/tenants/{tenant}/seed", h.seed)
}

func (h TenantHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID          string `json:"tenantId"`
		Name              string `json:"name"`
		Timezone          string `json:"timezone"`
		MinStaffThreshold int    `json:"minStaffThreshold"`
		EditPIN           string `json:"editPin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenantId is required")
		return
	}

	in := bootstrap.TenantInput{
		TenantID:          req.TenantID,
		Name:              req.Name,
		Timezone:          req.Timezone,
		MinStaffThreshold: req.MinStaffThreshold,
	}
	if req.EditPIN != "" {
		hash, err := service.HashPIN(req.EditPIN)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		in.EditPINHash = hash
	}

	created, err := h.Bootstrap.EnsureTenant(r.Context(), in)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"created": created})
}

func (h TenantHandler) seed(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	views, err := h.Views.Tenant(tenantID)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	tenant, err := views.Tenant(r.Context())
	if err != nil {
		writeBoardError(w, err)
		return
	}
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		loc = time.Local
	}

	count, err := h.Bootstrap.SeedSampleStaff(r.Context(), tenantID, req.Date, loc)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seeded": count})
}
