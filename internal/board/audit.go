package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/metrics"
	"github.com/BST1120/mapper2/internal/store"
)

// AuditAppender emits best-effort audit entries. A failed append must never
// roll back or surface into the mutation that triggered it; it is logged and
// counted, nothing more.
type AuditAppender struct {
	Store   store.Store
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewAuditAppender(st store.Store, logger *slog.Logger, m *metrics.Metrics) *AuditAppender {
	return &AuditAppender{Store: st, Logger: logger, Metrics: m, Now: time.Now}
}

func (a *AuditAppender) Append(ctx context.Context, tenantID, date string, entry domain.AuditEntry) {
	if a == nil || a.Store == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		now := time.Now
		if a.Now != nil {
			now = a.Now
		}
		entry.Timestamp = now()
	}
	doc, err := store.DataFrom(entry)
	if err != nil {
		a.warn(tenantID, date, entry, err)
		return
	}
	if _, err := a.Store.Append(ctx, store.AuditLogsCollection(tenantID, date), doc); err != nil {
		a.warn(tenantID, date, entry, err)
	}
}

func (a *AuditAppender) warn(tenantID, date string, entry domain.AuditEntry, err error) {
	a.Metrics.IncAuditFailures()
	if a.Logger != nil {
		a.Logger.Warn("audit append dropped",
			"tenant", tenantID, "date", date, "kind", entry.Kind, "err", err)
	}
}
