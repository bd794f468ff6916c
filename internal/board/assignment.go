package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// MoveStaff moves one staff member to toAreaID under optimistic concurrency:
// the writer presents the version it observed before the transaction, and the
// transaction aborts with store.ErrConflict when another device advanced it
// first. A move to the current area still writes (version+1) and logs.
func (b *Board) MoveStaff(ctx context.Context, tenantID, date, staffID, toAreaID, uid string) error {
	if err := validateKeys(tenantID, date, staffID); err != nil {
		return err
	}
	if toAreaID == "" {
		return ValidationError("toAreaId is required")
	}
	if err := b.checkEditable(ctx, tenantID, date); err != nil {
		return err
	}

	path := store.AssignmentPath(tenantID, date, staffID)
	observed, _, err := readAssignment(ctx, b.Store.Get, path)
	if err != nil {
		return fmt.Errorf("read assignment: %w", err)
	}

	err = b.Store.RunTransaction(ctx, func(tx store.Tx) error {
		current, exists, err := readAssignment(ctx, tx.Get, path)
		if err != nil {
			return err
		}
		if exists && current.Version != observed.Version {
			return store.ErrConflict
		}
		next := domain.Assignment{
			AreaID:       toAreaID,
			Version:      observed.Version + 1,
			UpdatedAt:    b.now(),
			UpdatedByUID: uid,
		}
		doc, err := store.DataFrom(next)
		if err != nil {
			return err
		}
		tx.Set(path, doc)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			b.Metrics.IncConflicts()
		}
		return err
	}

	b.Metrics.IncMoves()
	// Best-effort: the move is already durable, an append failure stays here.
	b.Audit.Append(ctx, tenantID, date, domain.AuditEntry{
		Kind:       domain.AuditMove,
		StaffID:    staffID,
		FromAreaID: observed.AreaID,
		ToAreaID:   toAreaID,
		UID:        uid,
	})
	return nil
}
