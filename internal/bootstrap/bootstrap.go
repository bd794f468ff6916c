// Package bootstrap creates tenants with their default areas and shift-type
// table, and can seed a sample roster for demos.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

type Bootstrapper struct {
	Store store.Store
	Now   func() time.Time
	// DefaultTimezone fills TenantInput.Timezone when the caller leaves it
	// empty. Empty means Asia/Tokyo.
	DefaultTimezone string
}

func New(st store.Store) *Bootstrapper {
	return &Bootstrapper{Store: st, Now: time.Now}
}

type TenantInput struct {
	TenantID          string
	Name              string
	Timezone          string
	MinStaffThreshold int
	// EditPINHash is stored as-is; hashing happens in the session service.
	EditPINHash string
}

// EnsureTenant creates the tenant document plus default areas and shift
// types. Returns created=false without touching anything when the tenant
// already exists.
func (b *Bootstrapper) EnsureTenant(ctx context.Context, in TenantInput) (created bool, err error) {
	if in.TenantID == "" {
		return false, errors.New("tenantId is required")
	}
	if in.Timezone == "" {
		in.Timezone = b.DefaultTimezone
	}
	if in.Timezone == "" {
		in.Timezone = "Asia/Tokyo"
	}

	path := store.TenantPath(in.TenantID)
	if _, err := b.Store.Get(ctx, path); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("read tenant: %w", err)
	}

	now := b.Now()
	tenant := domain.Tenant{
		Name:              in.Name,
		Timezone:          in.Timezone,
		MinStaffThreshold: in.MinStaffThreshold,
		EditPINHash:       in.EditPINHash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	doc, err := store.DataFrom(tenant)
	if err != nil {
		return false, err
	}
	if err := b.Store.Set(ctx, path, doc, false); err != nil {
		return false, fmt.Errorf("create tenant: %w", err)
	}

	for _, seed := range DefaultAreas {
		doc, err := store.DataFrom(seed.Area)
		if err != nil {
			return false, err
		}
		if err := b.Store.Set(ctx, store.AreaPath(in.TenantID, seed.AreaID), doc, false); err != nil {
			return false, fmt.Errorf("seed area %s: %w", seed.AreaID, err)
		}
	}
	for _, st := range DefaultShiftTypes {
		doc, err := store.DataFrom(st)
		if err != nil {
			return false, err
		}
		if err := b.Store.Set(ctx, store.ShiftTypePath(in.TenantID, st.Code), doc, false); err != nil {
			return false, fmt.Errorf("seed shift type %s: %w", st.Code, err)
		}
	}
	return true, nil
}

type sampleStaff struct {
	id    string
	staff domain.Staff
}

// SeedSampleStaff writes a small demo roster for date: staff profiles,
// free-bucket assignments at version 1, and seeded shift records.
func (b *Bootstrapper) SeedSampleStaff(ctx context.Context, tenantID, date string, loc *time.Location) (int, error) {
	samples := []sampleStaff{
		{id: "sato_t", staff: domain.Staff{LastName: "佐藤", FirstName: "太郎", FirstInitial: "T", Active: true, BreakPattern: domain.BreakPattern3030, ShiftCodeDefault: "C"}},
		{id: "sato_h", staff: domain.Staff{LastName: "佐藤", FirstName: "花子", FirstInitial: "H", Active: true, BreakPattern: domain.BreakPattern1530, ShiftCodeDefault: "D"}},
		{id: "suzuki_m", staff: domain.Staff{LastName: "鈴木", FirstName: "美咲", FirstInitial: "M", Active: true, BreakPattern: domain.BreakPattern3030, ShiftCodeDefault: "B"}},
		{id: "tanaka_k", staff: domain.Staff{LastName: "田中", FirstName: "健", FirstInitial: "K", Active: true, BreakPattern: domain.BreakPattern1530, ShiftCodeDefault: "E"}},
	}

	types := ShiftTypesByCode()
	now := b.Now()
	for _, s := range samples {
		s.staff.CreatedAt = now
		s.staff.UpdatedAt = now
		staffDoc, err := store.DataFrom(s.staff)
		if err != nil {
			return 0, err
		}
		if err := b.Store.Set(ctx, store.StaffPath(tenantID, s.id), staffDoc, false); err != nil {
			return 0, fmt.Errorf("seed staff %s: %w", s.id, err)
		}

		assignDoc, err := store.DataFrom(domain.Assignment{AreaID: domain.AreaIDFree, Version: 1, UpdatedAt: now})
		if err != nil {
			return 0, err
		}
		if err := b.Store.Set(ctx, store.AssignmentPath(tenantID, date, s.id), assignDoc, false); err != nil {
			return 0, fmt.Errorf("seed assignment %s: %w", s.id, err)
		}

		code := s.staff.ShiftCodeDefault
		startHM, endHM := domain.ResolveShiftWindow(code, s.staff, types)
		startAt, err := domain.DateAtLocal(date, startHM, loc)
		if err != nil {
			return 0, err
		}
		endAt, err := domain.DateAtLocal(date, endHM, loc)
		if err != nil {
			return 0, err
		}
		shift := domain.Shift{
			StartAt:    startAt,
			EndAt:      endAt,
			ShiftCode:  code,
			BreakSlots: domain.BreakSlotsFor(s.staff.BreakPattern),
			Source:     domain.ShiftSourceSeed,
		}
		shiftDoc, err := store.DataFrom(shift)
		if err != nil {
			return 0, err
		}
		if err := b.Store.Set(ctx, store.ShiftPath(tenantID, date, s.id), shiftDoc, false); err != nil {
			return 0, fmt.Errorf("seed shift %s: %w", s.id, err)
		}
	}
	return len(samples), nil
}
