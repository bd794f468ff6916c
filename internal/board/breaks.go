package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// StartNextBreak consumes the first unused break slot (array order is the
// priority order) and parks the staff member in the break bucket. Slot
// timestamps are client-generated instants: the store cannot stamp server
// times inside array-valued fields.
func (b *Board) StartNextBreak(ctx context.Context, tenantID, date, staffID, uid string) error {
	if err := validateKeys(tenantID, date, staffID); err != nil {
		return err
	}
	if err := b.checkEditable(ctx, tenantID, date); err != nil {
		return err
	}

	path := store.ShiftPath(tenantID, date, staffID)
	shift, err := b.readShift(ctx, path)
	if err != nil {
		return err
	}
	if shift.EndAt.IsZero() {
		return ErrNoShift
	}
	now := b.now()
	// The instant exactly 30 minutes before shift end is still eligible.
	if now.After(shift.EndAt.Add(-breakTailWindow)) {
		return ErrBreakTooLate
	}
	if shift.RemainingBreaks() == 0 {
		return ErrNoSlotAvailable
	}

	var minutes int
	err = b.Store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, path)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoShift
		}
		if err != nil {
			return err
		}
		var current domain.Shift
		if err := store.DataTo(doc, &current); err != nil {
			return err
		}
		// Re-locate the slot: another device may have consumed it between the
		// pre-check and this transaction.
		idx := -1
		for i, slot := range current.BreakSlots {
			if !slot.Used {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNoSlotAvailable
		}
		started := now
		current.BreakSlots[idx].Used = true
		current.BreakSlots[idx].StartedAt = &started
		minutes = current.BreakSlots[idx].Minutes

		next, err := store.DataFrom(current)
		if err != nil {
			return err
		}
		// Only the slot ledger changed; merge keeps the rest of the shift
		// document intact.
		tx.Merge(ctx, path, store.Document{"breakSlots": next["breakSlots"]})
		return nil
	})
	if err != nil {
		return err
	}

	b.Metrics.IncBreaksStarted()
	moveErr := b.MoveStaff(ctx, tenantID, date, staffID, domain.AreaIDBreak, uid)
	b.Audit.Append(ctx, tenantID, date, domain.AuditEntry{
		Kind:    domain.AuditBreakStart,
		StaffID: staffID,
		Minutes: minutes,
		UID:     uid,
	})
	return moveErr
}

// EndBreak stamps the open break slot and returns the staff member to the
// free bucket. When no break is open it is a silent no-op.
func (b *Board) EndBreak(ctx context.Context, tenantID, date, staffID, uid string) error {
	if err := validateKeys(tenantID, date, staffID); err != nil {
		return err
	}
	if err := b.checkEditable(ctx, tenantID, date); err != nil {
		return err
	}

	path := store.ShiftPath(tenantID, date, staffID)
	ended := false
	err := b.Store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, path)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var current domain.Shift
		if err := store.DataTo(doc, &current); err != nil {
			return err
		}
		idx := -1
		for i, slot := range current.BreakSlots {
			if slot.Used && slot.EndedAt == nil {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		now := b.now()
		current.BreakSlots[idx].EndedAt = &now
		ended = true

		next, err := store.DataFrom(current)
		if err != nil {
			return err
		}
		tx.Merge(ctx, path, store.Document{"breakSlots": next["breakSlots"]})
		return nil
	})
	if err != nil {
		return err
	}
	if !ended {
		return nil
	}

	b.Metrics.IncBreaksEnded()
	moveErr := b.MoveStaff(ctx, tenantID, date, staffID, domain.AreaIDFree, uid)
	b.Audit.Append(ctx, tenantID, date, domain.AuditEntry{
		Kind:    domain.AuditBreakEnd,
		StaffID: staffID,
		UID:     uid,
	})
	return moveErr
}

// CancelBreak reverts the most recently started, unfinished break: the slot
// becomes available again and the staff member returns to free. No-op when
// nothing is cancellable.
func (b *Board) CancelBreak(ctx context.Context, tenantID, date, staffID, uid string) error {
	if err := validateKeys(tenantID, date, staffID); err != nil {
		return err
	}
	if err := b.checkEditable(ctx, tenantID, date); err != nil {
		return err
	}

	path := store.ShiftPath(tenantID, date, staffID)
	cancelled := false
	var minutes int
	err := b.Store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, path)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var current domain.Shift
		if err := store.DataTo(doc, &current); err != nil {
			return err
		}
		idx := -1
		for i := len(current.BreakSlots) - 1; i >= 0; i-- {
			slot := current.BreakSlots[i]
			if slot.Used && slot.StartedAt != nil && slot.EndedAt == nil {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		minutes = current.BreakSlots[idx].Minutes
		current.BreakSlots[idx].Used = false
		current.BreakSlots[idx].StartedAt = nil
		cancelled = true

		next, err := store.DataFrom(current)
		if err != nil {
			return err
		}
		tx.Merge(ctx, path, store.Document{"breakSlots": next["breakSlots"]})
		return nil
	})
	if err != nil {
		return err
	}
	if !cancelled {
		return nil
	}

	moveErr := b.MoveStaff(ctx, tenantID, date, staffID, domain.AreaIDFree, uid)
	b.Audit.Append(ctx, tenantID, date, domain.AuditEntry{
		Kind:    domain.AuditBreakCancel,
		StaffID: staffID,
		Minutes: minutes,
		UID:     uid,
	})
	return moveErr
}

// SetAbsent toggles the absence flag on the day's shift record.
func (b *Board) SetAbsent(ctx context.Context, tenantID, date, staffID string, absent bool) error {
	if err := validateKeys(tenantID, date, staffID); err != nil {
		return err
	}
	if err := b.checkEditable(ctx, tenantID, date); err != nil {
		return err
	}
	path := store.ShiftPath(tenantID, date, staffID)
	err := b.Store.Update(ctx, path, store.Document{"absent": absent})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoShift
	}
	return err
}

func (b *Board) readShift(ctx context.Context, path string) (domain.Shift, error) {
	doc, err := b.Store.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Shift{}, ErrNoShift
	}
	if err != nil {
		return domain.Shift{}, fmt.Errorf("read shift: %w", err)
	}
	var shift domain.Shift
	if err := store.DataTo(doc, &shift); err != nil {
		return domain.Shift{}, err
	}
	return shift, nil
}
