package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// ToggleLock flips the tenant+day edit gate. The state document is created
// with defaults first when absent: a pure update against a missing document
// would fail.
func (b *Board) ToggleLock(ctx context.Context, tenantID, date string, next bool, uid string) error {
	if err := validateDay(tenantID, date); err != nil {
		return err
	}

	path := store.DayStatePath(tenantID, date)
	if _, err := b.Store.Get(ctx, path); errors.Is(err, store.ErrNotFound) {
		defaults, derr := store.DataFrom(domain.DayState{EditLocked: false})
		if derr != nil {
			return derr
		}
		if serr := b.Store.Set(ctx, path, defaults, true); serr != nil {
			return fmt.Errorf("create day state: %w", serr)
		}
	} else if err != nil {
		return fmt.Errorf("read day state: %w", err)
	}

	now := b.now()
	fields := store.Document{
		"editLocked":  next,
		"lockedAt":    now,
		"lockedByUid": uid,
	}
	if err := b.Store.Update(ctx, path, fields); err != nil {
		return fmt.Errorf("update day state: %w", err)
	}

	kind := domain.AuditUnlock
	if next {
		kind = domain.AuditLock
	}
	b.Audit.Append(ctx, tenantID, date, domain.AuditEntry{Kind: kind, UID: uid})
	return nil
}

// SetDayMemo updates the shared free-text memo on the day state.
func (b *Board) SetDayMemo(ctx context.Context, tenantID, date, memo string) error {
	if err := validateDay(tenantID, date); err != nil {
		return err
	}
	path := store.DayStatePath(tenantID, date)
	if _, err := b.Store.Get(ctx, path); errors.Is(err, store.ErrNotFound) {
		defaults, derr := store.DataFrom(domain.DayState{EditLocked: false})
		if derr != nil {
			return derr
		}
		if serr := b.Store.Set(ctx, path, defaults, true); serr != nil {
			return fmt.Errorf("create day state: %w", serr)
		}
	} else if err != nil {
		return fmt.Errorf("read day state: %w", err)
	}
	return b.Store.Update(ctx, path, store.Document{"memo": memo})
}
