package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/timeline"
	"github.com/BST1120/mapper2/internal/view"
)

// TimelineHandler reconstructs the day's movement history out of the audit
// log: per-staff area timelines, the 15-minute headcount series and the
// understaffed windows under the tenant threshold.
type TimelineHandler struct {
	Views *view.Registry
	// AuditLogLimit caps how many log entries feed the reconstruction.
	AuditLogLimit int
}

func (h TimelineHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants/{tenant}/days/{date}/timeline", h.dayTimeline)
}

type staffTimelinePayload struct {
	ID            string        `json:"id"`
	DisplayName   string        `json:"displayName"`
	InitialAreaID string        `json:"initialAreaId"`
	Moves         []movePayload `json:"moves"`
}

type movePayload struct {
	At         time.Time `json:"at"`
	ToAreaID   string    `json:"toAreaId"`
	FromAreaID string    `json:"fromAreaId,omitempty"`
}

func (h TimelineHandler) dayTimeline(w http.ResponseWriter, r *http.Request) {
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

	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		loc = time.Local
	}
	slots, err := timeline.MakeSlots(date, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	staffByID := views.StaffByID()
	staffIDs := make([]string, 0, len(staffByID))
	for id, s := range staffByID {
		if !s.Active {
			continue
		}
		if s.ShowOnTimeline != nil && !*s.ShowOnTimeline {
			continue
		}
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	records := views.AuditLogs(date, h.AuditLogLimit)
	logs := make([]domain.AuditEntry, 0, len(records))
	for _, rec := range records {
		logs = append(logs, rec.Entry)
	}

	assignments := views.AssignmentsByStaffID(date)
	timelines := timeline.BuildAreaTimelines(staffIDs, assignments, logs)

	shifts := views.ShiftsByStaffID(date)
	rows := make([]timeline.StaffRow, 0, len(staffIDs))
	payload := make([]staffTimelinePayload, 0, len(staffIDs))
	for _, id := range staffIDs {
		tl := timelines[id]
		row := timeline.StaffRow{ID: id, Timeline: tl}
		if sh, ok := shifts[id]; ok {
			shift := sh
			row.Shift = &shift
		}
		rows = append(rows, row)

		moves := make([]movePayload, 0, len(tl.Moves))
		for _, m := range tl.Moves {
			moves = append(moves, movePayload{At: m.At, ToAreaID: m.ToAreaID, FromAreaID: m.FromAreaID})
		}
		payload = append(payload, staffTimelinePayload{
			ID:            id,
			DisplayName:   staffByID[id].DisplayName(),
			InitialAreaID: tl.InitialAreaID,
			Moves:         moves,
		})
	}

	counts := timeline.SlotCounts(slots, rows)
	ranges := timeline.UnderstaffedRanges(slots, counts, tenant.MinStaffThreshold)

	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Label)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slots":             labels,
		"counts":            counts,
		"staff":             payload,
		"threshold":         tenant.MinStaffThreshold,
		"understaffed":      ranges,
		"understaffedLabel": timeline.FormatUnderstaffedLabel(ranges, 2),
	})
}
