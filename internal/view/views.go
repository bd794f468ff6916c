// Package view maintains the live read models the UI surface consumes:
// auto-updating snapshots of areas, staff, shift types and the day-scoped
// assignments, shifts, audit log and day state, fed by store subscriptions.
package view

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// AuditRecord pairs an audit entry with its document id.
type AuditRecord struct {
	ID    string
	Entry domain.AuditEntry
}

type dayViews struct {
	assignments map[string]domain.Assignment
	shifts      map[string]domain.Shift
	auditLogs   []AuditRecord
	state       domain.DayState
	unsubs      []func()
}

type Views struct {
	Store    store.Store
	Logger   *slog.Logger
	TenantID string
	// OnChange, when set, is invoked after any snapshot refresh with the
	// changed scope ("areas", "staff", "shiftTypes", "assignments", "shifts",
	// "auditLogs", "dayState") and the date ("" for tenant-level scopes).
	OnChange func(scope, date string)

	mu         sync.RWMutex
	areas      map[string]domain.Area
	staff      map[string]domain.Staff
	shiftTypes map[string]domain.ShiftType
	days       map[string]*dayViews
	unsubs     []func()
}

// New wires the tenant-level subscriptions. Day-level snapshots are attached
// lazily via EnsureDay.
func New(st store.Store, logger *slog.Logger, tenantID string) (*Views, error) {
	v := &Views{
		Store:      st,
		Logger:     logger,
		TenantID:   tenantID,
		areas:      map[string]domain.Area{},
		staff:      map[string]domain.Staff{},
		shiftTypes: map[string]domain.ShiftType{},
		days:       map[string]*dayViews{},
	}

	unsub, err := st.Subscribe(store.AreasCollection(tenantID), func(snaps []store.Snapshot) {
		next := map[string]domain.Area{}
		for _, s := range snaps {
			var a domain.Area
			if err := store.DataTo(s.Data, &a); err != nil {
				v.warnDecode("area", s.ID, err)
				continue
			}
			next[s.ID] = a
		}
		v.mu.Lock()
		v.areas = next
		v.mu.Unlock()
		v.changed("areas", "")
	})
	if err != nil {
		return nil, err
	}
	v.unsubs = append(v.unsubs, unsub)

	unsub, err = st.Subscribe(store.StaffCollection(tenantID), func(snaps []store.Snapshot) {
		next := map[string]domain.Staff{}
		for _, s := range snaps {
			var st domain.Staff
			if err := store.DataTo(s.Data, &st); err != nil {
				v.warnDecode("staff", s.ID, err)
				continue
			}
			next[s.ID] = st
		}
		v.mu.Lock()
		v.staff = next
		v.mu.Unlock()
		v.changed("staff", "")
	})
	if err != nil {
		v.Close()
		return nil, err
	}
	v.unsubs = append(v.unsubs, unsub)

	unsub, err = st.Subscribe(store.ShiftTypesCollection(tenantID), func(snaps []store.Snapshot) {
		next := map[string]domain.ShiftType{}
		for _, s := range snaps {
			var t domain.ShiftType
			if err := store.DataTo(s.Data, &t); err != nil {
				v.warnDecode("shiftType", s.ID, err)
				continue
			}
			next[s.ID] = t
		}
		v.mu.Lock()
		v.shiftTypes = next
		v.mu.Unlock()
		v.changed("shiftTypes", "")
	})
	if err != nil {
		v.Close()
		return nil, err
	}
	v.unsubs = append(v.unsubs, unsub)

	return v, nil
}

// EnsureDay attaches the day-scoped subscriptions for date if not present.
func (v *Views) EnsureDay(date string) error {
	v.mu.Lock()
	if _, ok := v.days[date]; ok {
		v.mu.Unlock()
		return nil
	}
	day := &dayViews{
		assignments: map[string]domain.Assignment{},
		shifts:      map[string]domain.Shift{},
	}
	v.days[date] = day
	v.mu.Unlock()

	if err := v.wireDay(date, day); err != nil {
		// A half-wired day must not satisfy later EnsureDay calls: drop the
		// entry and whatever subscriptions were attached so a retry starts
		// from scratch.
		v.mu.Lock()
		delete(v.days, date)
		unsubs := day.unsubs
		day.unsubs = nil
		v.mu.Unlock()
		for _, u := range unsubs {
			u()
		}
		return err
	}
	return nil
}

func (v *Views) wireDay(date string, day *dayViews) error {
	unsub, err := v.Store.Subscribe(store.AssignmentsCollection(v.TenantID, date), func(snaps []store.Snapshot) {
		next := map[string]domain.Assignment{}
		for _, s := range snaps {
			var a domain.Assignment
			if err := store.DataTo(s.Data, &a); err != nil {
				v.warnDecode("assignment", s.ID, err)
				continue
			}
			next[s.ID] = a
		}
		v.mu.Lock()
		day.assignments = next
		v.mu.Unlock()
		v.changed("assignments", date)
	})
	if err != nil {
		return err
	}
	day.unsubs = append(day.unsubs, unsub)

	unsub, err = v.Store.Subscribe(store.ShiftsCollection(v.TenantID, date), func(snaps []store.Snapshot) {
		next := map[string]domain.Shift{}
		for _, s := range snaps {
			var sh domain.Shift
			if err := store.DataTo(s.Data, &sh); err != nil {
				v.warnDecode("shift", s.ID, err)
				continue
			}
			next[s.ID] = sh
		}
		v.mu.Lock()
		day.shifts = next
		v.mu.Unlock()
		v.changed("shifts", date)
	})
	if err != nil {
		return err
	}
	day.unsubs = append(day.unsubs, unsub)

	unsub, err = v.Store.Subscribe(store.AuditLogsCollection(v.TenantID, date), func(snaps []store.Snapshot) {
		next := make([]AuditRecord, 0, len(snaps))
		for _, s := range snaps {
			var e domain.AuditEntry
			if err := store.DataTo(s.Data, &e); err != nil {
				v.warnDecode("auditLog", s.ID, err)
				continue
			}
			next = append(next, AuditRecord{ID: s.ID, Entry: e})
		}
		// Newest first, like the history feed renders it.
		sort.SliceStable(next, func(i, j int) bool {
			return next[i].Entry.Timestamp.After(next[j].Entry.Timestamp)
		})
		v.mu.Lock()
		day.auditLogs = next
		v.mu.Unlock()
		v.changed("auditLogs", date)
	})
	if err != nil {
		return err
	}
	day.unsubs = append(day.unsubs, unsub)

	unsub, err = v.Store.Subscribe(store.DayStateCollection(v.TenantID, date), func(snaps []store.Snapshot) {
		state := domain.DayState{EditLocked: false}
		for _, s := range snaps {
			if s.ID != "state" {
				continue
			}
			if err := store.DataTo(s.Data, &state); err != nil {
				v.warnDecode("dayState", s.ID, err)
			}
		}
		v.mu.Lock()
		day.state = state
		v.mu.Unlock()
		v.changed("dayState", date)
	})
	if err != nil {
		return err
	}
	day.unsubs = append(day.unsubs, unsub)

	return nil
}

func (v *Views) Close() {
	v.mu.Lock()
	unsubs := v.unsubs
	v.unsubs = nil
	for _, day := range v.days {
		unsubs = append(unsubs, day.unsubs...)
		day.unsubs = nil
	}
	v.mu.Unlock()
	for _, u := range unsubs {
		if u != nil {
			u()
		}
	}
}

// Tenant reads the tenant document directly; it changes rarely.
func (v *Views) Tenant(ctx context.Context) (domain.Tenant, error) {
	doc, err := v.Store.Get(ctx, store.TenantPath(v.TenantID))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Tenant{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Tenant{}, err
	}
	var t domain.Tenant
	if err := store.DataTo(doc, &t); err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}

func (v *Views) AreasByID() map[string]domain.Area {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]domain.Area, len(v.areas))
	for k, a := range v.areas {
		out[k] = a
	}
	return out
}

func (v *Views) StaffByID() map[string]domain.Staff {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]domain.Staff, len(v.staff))
	for k, s := range v.staff {
		out[k] = s
	}
	return out
}

func (v *Views) ShiftTypesByCode() map[string]domain.ShiftType {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]domain.ShiftType, len(v.shiftTypes))
	for k, t := range v.shiftTypes {
		out[k] = t
	}
	return out
}

func (v *Views) AssignmentsByStaffID(date string) map[string]domain.Assignment {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := map[string]domain.Assignment{}
	if day, ok := v.days[date]; ok {
		for k, a := range day.assignments {
			out[k] = a
		}
	}
	return out
}

func (v *Views) ShiftsByStaffID(date string) map[string]domain.Shift {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := map[string]domain.Shift{}
	if day, ok := v.days[date]; ok {
		for k, s := range day.shifts {
			out[k] = s
		}
	}
	return out
}

func (v *Views) AuditLogs(date string, limit int) []AuditRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	day, ok := v.days[date]
	if !ok {
		return nil
	}
	logs := day.auditLogs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]AuditRecord, len(logs))
	copy(out, logs)
	return out
}

func (v *Views) DayState(date string) domain.DayState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if day, ok := v.days[date]; ok {
		return day.state
	}
	return domain.DayState{EditLocked: false}
}

func (v *Views) changed(scope, date string) {
	if v.OnChange != nil {
		v.OnChange(scope, date)
	}
}

func (v *Views) warnDecode(kind, id string, err error) {
	if v.Logger != nil {
		v.Logger.Warn("view decode failed", "kind", kind, "id", id, "err", err)
	}
}
