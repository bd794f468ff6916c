// Package board implements the concurrent assignment-mutation protocol: moves
// between areas under optimistic version control, the per-shift break ledger,
// the tenant+day edit lock, and best-effort audit logging.
package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/metrics"
	"github.com/BST1120/mapper2/internal/store"
)

// breakTailWindow is how close to shift end a break may no longer start.
const breakTailWindow = 30 * time.Minute

type Board struct {
	Store   store.Store
	Audit   *AuditAppender
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func New(st store.Store, audit *AuditAppender, logger *slog.Logger, m *metrics.Metrics) *Board {
	return &Board{Store: st, Audit: audit, Logger: logger, Metrics: m, Now: time.Now}
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func validateDay(tenantID, date string) error {
	if tenantID == "" {
		return ValidationError("tenantId is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ValidationError("date must be YYYY-MM-DD")
	}
	return nil
}

func validateKeys(tenantID, date, staffID string) error {
	if err := validateDay(tenantID, date); err != nil {
		return err
	}
	if staffID == "" {
		return ValidationError("staffId is required")
	}
	return nil
}

// checkEditable enforces the advisory day lock. A missing state document
// reads as unlocked.
func (b *Board) checkEditable(ctx context.Context, tenantID, date string) error {
	doc, err := b.Store.Get(ctx, store.DayStatePath(tenantID, date))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var state domain.DayState
	if err := store.DataTo(doc, &state); err != nil {
		return err
	}
	if state.EditLocked {
		return ErrEditLocked
	}
	return nil
}

// readAssignment returns the current assignment, defaulting an absent
// document to the free bucket at version 0.
func readAssignment(ctx context.Context, get func(context.Context, string) (store.Document, error), path string) (domain.Assignment, bool, error) {
	doc, err := get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Assignment{AreaID: domain.AreaIDFree, Version: 0}, false, nil
	}
	if err != nil {
		return domain.Assignment{}, false, err
	}
	var a domain.Assignment
	if err := store.DataTo(doc, &a); err != nil {
		return domain.Assignment{}, false, err
	}
	if a.AreaID == "" {
		a.AreaID = domain.AreaIDFree
	}
	return a, true, nil
}
