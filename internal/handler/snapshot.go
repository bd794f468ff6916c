package handler

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/view"
)

// SnapshotHandler serves the read models the board screen renders from: the
// full day snapshot and the per-area headcount summary.
type SnapshotHandler struct {
	Views *view.Registry
}

func (h SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants/{tenant}/days/{date}/board", h.boardSnapshot)
	r.Get("/tenants/{tenant}/days/{date}/summary", h.daySummary)
}

type areaPayload struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Order int             `json:"order"`
	Type  domain.AreaType `json:"type"`
}

type staffPayload struct {
	ID              string             `json:"id"`
	DisplayName     string             `json:"displayName"`
	Active          bool               `json:"active"`
	BreakPattern    domain.BreakPattern `json:"breakPattern"`
	AreaID          string             `json:"areaId"`
	Version         int64              `json:"version"`
	Absent          bool               `json:"absent"`
	RemainingBreaks int                `json:"remainingBreaks"`
	Shift           *domain.Shift      `json:"shift,omitempty"`
}

func (h SnapshotHandler) boardSnapshot(w http.ResponseWriter, r *http.Request) {
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

	tenant, err := views.Tenant(r.Context())
	if err != nil {
		writeBoardError(w, err)
		return
	}

	areas := []areaPayload{}
	for id, a := range views.AreasByID() {
		areas = append(areas, areaPayload{ID: id, Name: a.Name, Order: a.Order, Type: a.Type})
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].Order < areas[j].Order })

	assignments := views.AssignmentsByStaffID(date)
	shifts := views.ShiftsByStaffID(date)

	staffRows := []staffPayload{}
	for id, s := range views.StaffByID() {
		if !s.Active {
			continue
		}
		if s.ShowOnBoard != nil && !*s.ShowOnBoard {
			continue
		}
		row := staffPayload{
			ID:           id,
			DisplayName:  s.DisplayName(),
			Active:       s.Active,
			BreakPattern: s.BreakPattern,
			AreaID:       domain.AreaIDFree,
		}
		if a, ok := assignments[id]; ok {
			if a.AreaID != "" {
				row.AreaID = a.AreaID
			}
			row.Version = a.Version
		}
		if sh, ok := shifts[id]; ok {
			shift := sh
			row.Shift = &shift
			row.Absent = sh.Absent
			row.RemainingBreaks = sh.RemainingBreaks()
		}
		staffRows = append(staffRows, row)
	}
	sort.Slice(staffRows, func(i, j int) bool { return staffRows[i].ID < staffRows[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{
		"tenant": map[string]any{
			"name":              tenant.Name,
			"timezone":          tenant.Timezone,
			"minStaffThreshold": tenant.MinStaffThreshold,
		},
		"areas":    areas,
		"staff":    staffRows,
		"dayState": views.DayState(date),
	})
}

// daySummary is the lightweight dashboard view: on-floor headcount per area
// and how many break slots remain across the roster.
func (h SnapshotHandler) daySummary(w http.ResponseWriter, r *http.Request) {
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

	assignments := views.AssignmentsByStaffID(date)
	shifts := views.ShiftsByStaffID(date)
	staff := views.StaffByID()

	countByArea := map[string]int{}
	remainingBreaks := 0
	absent := 0
	for id, s := range staff {
		if !s.Active {
			continue
		}
		areaID := domain.AreaIDFree
		if a, ok := assignments[id]; ok && a.AreaID != "" {
			areaID = a.AreaID
		}
		countByArea[areaID]++
		if sh, ok := shifts[id]; ok {
			if sh.Absent {
				absent++
			} else {
				remainingBreaks += sh.RemainingBreaks()
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"countByArea":     countByArea,
		"remainingBreaks": remainingBreaks,
		"absent":          absent,
		"dayState":        views.DayState(date),
	})
}
