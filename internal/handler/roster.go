package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BST1120/mapper2/internal/roster"
	"github.com/BST1120/mapper2/internal/view"
)

// 10 MB is plenty for a monthly roster workbook.
const maxRosterUpload = 10 << 20

// RosterHandler ingests the monthly xlsx shift table. Preview parses and
// reports name matching without writing; import applies the shifts.
type RosterHandler struct {
	Importer *roster.Importer
	Exporter *roster.Exporter
	Views    *view.Registry
}

func (h RosterHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tenants/{tenant}/roster/preview", h.preview)
	r.Post("/tenants/{tenant}/roster/import", h.importRoster)
	r.Get("/tenants/{tenant}/roster/export", h.exportRoster)
}

func parseOptionsFromForm(r *http.Request) roster.ParseOptions {
	intField := func(name string, fallback int) int {
		if v := r.FormValue(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return fallback
	}
	colField := func(name string, fallback int) int {
		if v := r.FormValue(name); v != "" {
			if n := roster.ColToNumber(v); n > 0 {
				return n
			}
		}
		return fallback
	}
	return roster.ParseOptions{
		SheetIndex:   intField("sheetIndex", 0),
		HeaderRow:    intField("headerRow", 7),
		NameCol:      colField("nameCol", roster.ColToNumber("B")),
		DateStartCol: colField("dateStartCol", roster.ColToNumber("C")),
		DateEndCol:   colField("dateEndCol", 0),
		DataStartRow: intField("dataStartRow", 8),
		DataEndRow:   intField("dataEndRow", 0),
		MonthHint:    r.FormValue("monthHint"),
	}
}

func (h RosterHandler) parseUpload(w http.ResponseWriter, r *http.Request) *roster.ParsedRoster {
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return nil
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return nil
	}
	defer file.Close()

	parsed, err := roster.Parse(file, parseOptionsFromForm(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	return parsed
}

func (h RosterHandler) preview(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	parsed := h.parseUpload(w, r)
	if parsed == nil {
		return
	}

	views, err := h.Views.Tenant(tenantID)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	idx := roster.BuildStaffIndex(views.StaffByID())

	type rowPreview struct {
		ExcelName string `json:"excelName"`
		StaffID   string `json:"staffId,omitempty"`
		Matched   bool   `json:"matched"`
	}
	rows := make([]rowPreview, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		id := idx.Resolve(row.Name, nil)
		rows = append(rows, rowPreview{ExcelName: row.Name, StaffID: id, Matched: id != ""})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dates": parsed.DetectedDates(),
		"rows":  rows,
	})
}

func (h RosterHandler) importRoster(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	parsed := h.parseUpload(w, r)
	if parsed == nil {
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

	nameMap := map[string]string{}
	if raw := r.FormValue("nameMap"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &nameMap); err != nil {
			writeError(w, http.StatusBadRequest, "nameMap must be a JSON object")
			return
		}
	}

	res, err := h.Importer.Import(r.Context(), tenantID, parsed, views.StaffByID(), views.ShiftTypesByCode(), roster.ImportOptions{
		SingleDate: r.FormValue("singleDate"),
		NameMap:    nameMap,
		Location:   loc,
	})
	if err != nil {
		writeBoardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":       res.Total,
		"countByDate": res.CountByDate,
		"unmatched":   res.Unmatched,
	})
}

func (h RosterHandler) exportRoster(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	month := r.URL.Query().Get("month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "month is required")
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

	raw, err := h.Exporter.Export(r.Context(), tenantID, month, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="roster-`+month+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
