package roster

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BST1120/mapper2/internal/board"
	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// Importer applies a parsed roster to the document store: one shift per
// staff+date cell, plus the free-bucket assignment and an import audit entry
// per touched date.
type Importer struct {
	Store  store.Store
	Audit  *board.AuditAppender
	Logger *slog.Logger
	Now    func() time.Time
}

func NewImporter(st store.Store, audit *board.AuditAppender, logger *slog.Logger) *Importer {
	return &Importer{Store: st, Audit: audit, Logger: logger, Now: time.Now}
}

// ImportOptions narrows which parsed columns get applied and how names map
// to staff ids.
type ImportOptions struct {
	// SingleDate, when set, applies only the column(s) matching that date.
	SingleDate string
	// NameMap overrides name matching per Excel name (ambiguity resolution).
	NameMap map[string]string
	// Location resolves "HH:MM" cell times into instants.
	Location *time.Location
}

type ImportResult struct {
	CountByDate map[string]int
	Unmatched   []string
	Total       int
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellCode
	cellTimeRange
	cellFixedMark
	cellUnknown
)

type parsedCell struct {
	kind       cellKind
	code       string
	start, end string
}

var timeRangePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*[-~〜]\s*(\d{1,2})(?::(\d{2}))?$`)

// restMarks are treated the same as an empty cell: no shift is written.
var restMarks = map[string]bool{"-": true, "休": true, "休み": true, "OFF": true}

var fixedMarks = map[string]bool{"出": true, "〇": true, "○": true, "◯": true, "P": true}

// NormalizeName strips ASCII and full-width whitespace for matching.
func NormalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '　' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// StaffIndex resolves Excel names to staff ids, by full name first and by
// last name second. Ambiguous matches resolve to nothing.
type StaffIndex struct {
	full map[string][]string
	last map[string][]string
}

func BuildStaffIndex(staffByID map[string]domain.Staff) *StaffIndex {
	idx := &StaffIndex{full: map[string][]string{}, last: map[string][]string{}}
	ids := make([]string, 0, len(staffByID))
	for id := range staffByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := staffByID[id]
		full := NormalizeName(s.LastName + s.FirstName)
		idx.full[full] = append(idx.full[full], id)
		ln := NormalizeName(s.LastName)
		idx.last[ln] = append(idx.last[ln], id)
	}
	return idx
}

func (idx *StaffIndex) Resolve(excelName string, nameMap map[string]string) string {
	if id, ok := nameMap[excelName]; ok && id != "" {
		return id
	}
	norm := NormalizeName(excelName)
	if ids := idx.full[norm]; len(ids) == 1 {
		return ids[0]
	}
	if ids := idx.last[norm]; len(ids) == 1 {
		return ids[0]
	}
	return ""
}

func parseCell(raw string, staff domain.Staff, typesByCode map[string]domain.ShiftType) parsedCell {
	v := strings.TrimSpace(raw)
	if v == "" {
		return parsedCell{kind: cellEmpty}
	}
	upper := strings.ToUpper(v)
	if restMarks[upper] {
		return parsedCell{kind: cellEmpty}
	}
	if _, ok := typesByCode[upper]; ok {
		return parsedCell{kind: cellCode, code: upper}
	}
	if m := timeRangePattern.FindStringSubmatch(v); m != nil {
		return parsedCell{
			kind:  cellTimeRange,
			start: hhmm(m[1], m[2]),
			end:   hhmm(m[3], m[4]),
		}
	}
	// Worked marks only make sense for fixed-hours staff.
	if (staff.ShiftCodeDefault == "" || staff.ShiftCodeDefault == "fixed") && fixedMarks[upper] {
		return parsedCell{kind: cellFixedMark}
	}
	return parsedCell{kind: cellUnknown}
}

func hhmm(h, m string) string {
	if m == "" {
		m = "0"
	}
	hi, _ := strconv.Atoi(h)
	mi, _ := strconv.Atoi(m)
	return fmt.Sprintf("%02d:%02d", hi, mi)
}

// Import writes shifts and free-bucket assignments for every recognized cell.
// Existing shifts for the same staff+date are overwritten; unrecognized cells
// and unmatched names are skipped, not failed.
func (imp *Importer) Import(ctx context.Context, tenantID string, parsed *ParsedRoster, staffByID map[string]domain.Staff, typesByCode map[string]domain.ShiftType, opts ImportOptions) (ImportResult, error) {
	res := ImportResult{CountByDate: map[string]int{}}
	if parsed == nil {
		return res, nil
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	cols := []HeaderCell{}
	for _, h := range parsed.Header {
		if !isoDate.MatchString(h.Date) {
			continue
		}
		if opts.SingleDate != "" && h.Date != opts.SingleDate {
			continue
		}
		cols = append(cols, h)
	}

	idx := BuildStaffIndex(staffByID)
	now := time.Now
	if imp.Now != nil {
		now = imp.Now
	}

	for _, row := range parsed.Rows {
		staffID := idx.Resolve(row.Name, opts.NameMap)
		if staffID == "" {
			res.Unmatched = append(res.Unmatched, row.Name)
			continue
		}
		staff := staffByID[staffID]

		for _, h := range cols {
			cell := parseCell(row.CellsByCol[h.Col], staff, typesByCode)
			if cell.kind == cellEmpty || cell.kind == cellUnknown {
				continue
			}

			var code, start, end string
			switch cell.kind {
			case cellCode:
				code = cell.code
				start, end = domain.ResolveShiftWindow(code, staff, typesByCode)
			case cellTimeRange:
				code = "fixed"
				start, end = cell.start, cell.end
			case cellFixedMark:
				code = "fixed"
				start, end = domain.ResolveShiftWindow("", staff, typesByCode)
			}

			startAt, err := domain.DateAtLocal(h.Date, start, loc)
			if err != nil {
				return res, err
			}
			endAt, err := domain.DateAtLocal(h.Date, end, loc)
			if err != nil {
				return res, err
			}

			shift := domain.Shift{
				StartAt:    startAt,
				EndAt:      endAt,
				ShiftCode:  code,
				BreakSlots: domain.BreakSlotsFor(staff.BreakPattern),
				Source:     domain.ShiftSourceExcel,
			}
			shiftDoc, err := store.DataFrom(shift)
			if err != nil {
				return res, err
			}
			if err := imp.Store.Set(ctx, store.ShiftPath(tenantID, h.Date, staffID), shiftDoc, true); err != nil {
				return res, fmt.Errorf("write shift %s %s: %w", staffID, h.Date, err)
			}
			assignDoc := store.Document{
				"areaId":    domain.AreaIDFree,
				"version":   1,
				"updatedAt": now(),
			}
			if err := imp.Store.Set(ctx, store.AssignmentPath(tenantID, h.Date, staffID), assignDoc, true); err != nil {
				return res, fmt.Errorf("write assignment %s %s: %w", staffID, h.Date, err)
			}

			res.CountByDate[h.Date]++
			res.Total++
		}
	}

	for date, count := range res.CountByDate {
		imp.Audit.Append(ctx, tenantID, date, domain.AuditEntry{
			Kind:          domain.AuditImport,
			ImportedCount: count,
		})
	}
	if imp.Logger != nil {
		imp.Logger.Info("roster import applied",
			"tenant", tenantID, "dates", len(res.CountByDate), "shifts", res.Total)
	}
	return res, nil
}
