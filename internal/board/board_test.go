package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
	"github.com/BST1120/mapper2/internal/store/memory"
)

const (
	testTenant = "t1"
	testDate   = "2026-08-29"
	testStaff  = "sato_t"
)

func newTestBoard(t *testing.T, st store.Store) *Board {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := NewAuditAppender(st, logger, nil)
	b := New(st, audit, logger, nil)
	b.Now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	audit.Now = b.Now
	return b
}

func seedShift(t *testing.T, st store.Store, pattern domain.BreakPattern, start, end string) {
	t.Helper()
	startAt, err := domain.DateAtLocal(testDate, start, time.UTC)
	require.NoError(t, err)
	endAt, err := domain.DateAtLocal(testDate, end, time.UTC)
	require.NoError(t, err)
	doc, err := store.DataFrom(domain.Shift{
		StartAt:    startAt,
		EndAt:      endAt,
		ShiftCode:  "C",
		BreakSlots: domain.BreakSlotsFor(pattern),
		Source:     domain.ShiftSourceSeed,
	})
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), store.ShiftPath(testTenant, testDate, testStaff), doc, false))
}

func getAssignment(t *testing.T, st store.Store) domain.Assignment {
	t.Helper()
	doc, err := st.Get(context.Background(), store.AssignmentPath(testTenant, testDate, testStaff))
	require.NoError(t, err)
	var a domain.Assignment
	require.NoError(t, store.DataTo(doc, &a))
	return a
}

func getShift(t *testing.T, st store.Store) domain.Shift {
	t.Helper()
	doc, err := st.Get(context.Background(), store.ShiftPath(testTenant, testDate, testStaff))
	require.NoError(t, err)
	var s domain.Shift
	require.NoError(t, store.DataTo(doc, &s))
	return s
}

func auditEntries(t *testing.T, st store.Store) []domain.AuditEntry {
	t.Helper()
	snaps, err := st.GetAll(context.Background(), store.AuditLogsCollection(testTenant, testDate))
	require.NoError(t, err)
	out := make([]domain.AuditEntry, 0, len(snaps))
	for _, snap := range snaps {
		var e domain.AuditEntry
		require.NoError(t, store.DataTo(snap.Data, &e))
		out = append(out, e)
	}
	return out
}

func auditOfKind(entries []domain.AuditEntry, kind domain.AuditKind) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestMoveStaffFirstMoveCreatesAssignment(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)

	err := b.MoveStaff(context.Background(), testTenant, testDate, testStaff, "saru", "dev1")
	require.NoError(t, err)

	a := getAssignment(t, st)
	assert.Equal(t, "saru", a.AreaID)
	assert.Equal(t, int64(1), a.Version)
	assert.Equal(t, "dev1", a.UpdatedByUID)

	moves := auditOfKind(auditEntries(t, st), domain.AuditMove)
	require.Len(t, moves, 1)
	assert.Equal(t, testStaff, moves[0].StaffID)
	assert.Equal(t, domain.AreaIDFree, moves[0].FromAreaID)
	assert.Equal(t, "saru", moves[0].ToAreaID)
	assert.Equal(t, "dev1", moves[0].UID)
}

func TestMoveStaffVersionMonotonic(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()

	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", ""))
	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "hebi", ""))
	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "usagi", ""))

	a := getAssignment(t, st)
	assert.Equal(t, int64(3), a.Version)
	assert.Equal(t, "usagi", a.AreaID)
}

func TestMoveStaffNoOpMoveStillWrites(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()

	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", ""))
	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", ""))

	a := getAssignment(t, st)
	assert.Equal(t, int64(2), a.Version)
	moves := auditOfKind(auditEntries(t, st), domain.AuditMove)
	assert.Len(t, moves, 2)
}

// staleStore serves an out-of-date assignment for the pre-transaction read so
// the transaction's committed read disagrees with the observed version.
type staleStore struct {
	store.Store
	stalePath string
	staleDoc  store.Document
	served    bool
}

func (s *staleStore) Get(ctx context.Context, path string) (store.Document, error) {
	if !s.served && path == s.stalePath {
		s.served = true
		return s.staleDoc, nil
	}
	return s.Store.Get(ctx, path)
}

func TestMoveStaffConflict(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	path := store.AssignmentPath(testTenant, testDate, testStaff)

	// Committed state is already at version 2; the client observed version 1.
	current, err := store.DataFrom(domain.Assignment{AreaID: "hebi", Version: 2})
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, path, current, false))

	stale, err := store.DataFrom(domain.Assignment{AreaID: "saru", Version: 1})
	require.NoError(t, err)
	st := &staleStore{Store: mem, stalePath: path, staleDoc: stale}

	b := newTestBoard(t, st)
	err = b.MoveStaff(ctx, testTenant, testDate, testStaff, "usagi", "")
	assert.ErrorIs(t, err, store.ErrConflict)

	// The losing writer changed nothing.
	doc, err := mem.Get(ctx, path)
	require.NoError(t, err)
	var a domain.Assignment
	require.NoError(t, store.DataTo(doc, &a))
	assert.Equal(t, int64(2), a.Version)
	assert.Equal(t, "hebi", a.AreaID)
	assert.Empty(t, auditOfKind(auditEntries(t, mem), domain.AuditMove))
}

func TestMoveStaffRejectedWhileLocked(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()

	require.NoError(t, b.ToggleLock(ctx, testTenant, testDate, true, "admin"))
	err := b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", "")
	assert.ErrorIs(t, err, ErrEditLocked)

	require.NoError(t, b.ToggleLock(ctx, testTenant, testDate, false, "admin"))
	assert.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", ""))

	entries := auditEntries(t, st)
	assert.Len(t, auditOfKind(entries, domain.AuditLock), 1)
	assert.Len(t, auditOfKind(entries, domain.AuditUnlock), 1)
}

func TestMoveStaffValidation(t *testing.T) {
	b := newTestBoard(t, memory.New())
	ctx := context.Background()

	var verr ValidationError
	assert.ErrorAs(t, b.MoveStaff(ctx, "", testDate, testStaff, "saru", ""), &verr)
	assert.ErrorAs(t, b.MoveStaff(ctx, testTenant, "bad-date", testStaff, "saru", ""), &verr)
	assert.ErrorAs(t, b.MoveStaff(ctx, testTenant, testDate, "", "saru", ""), &verr)
	assert.ErrorAs(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "", ""), &verr)
}

func TestStartNextBreakConsumesFirstSlot(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, "dev1"))

	sh := getShift(t, st)
	require.Len(t, sh.BreakSlots, 2)
	assert.True(t, sh.BreakSlots[0].Used)
	require.NotNil(t, sh.BreakSlots[0].StartedAt)
	assert.False(t, sh.BreakSlots[1].Used)
	assert.Equal(t, 1, sh.RemainingBreaks())

	a := getAssignment(t, st)
	assert.Equal(t, domain.AreaIDBreak, a.AreaID)

	starts := auditOfKind(auditEntries(t, st), domain.AuditBreakStart)
	require.Len(t, starts, 1)
	assert.Equal(t, 30, starts[0].Minutes)
}

func TestStartNextBreakKeepsOtherShiftFields(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	// A field written by another client must survive the slot update.
	path := store.ShiftPath(testTenant, testDate, testStaff)
	require.NoError(t, st.Set(ctx, path, store.Document{"note": "引き継ぎあり"}, true))

	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))

	doc, err := st.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "引き継ぎあり", doc["note"])

	sh := getShift(t, st)
	assert.Equal(t, "C", sh.ShiftCode)
	assert.Equal(t, 1, sh.RemainingBreaks())
}

func TestStartNextBreakSlotOrder(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern1530, "08:00", "17:00")

	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))

	starts := auditOfKind(auditEntries(t, st), domain.AuditBreakStart)
	require.Len(t, starts, 2)
	assert.Equal(t, 15, starts[0].Minutes)
	assert.Equal(t, 30, starts[1].Minutes)

	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, ""))
	err := b.StartNextBreak(ctx, testTenant, testDate, testStaff, "")
	assert.ErrorIs(t, err, ErrNoSlotAvailable)
}

func TestStartNextBreakTailWindow(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	// 29 minutes before end: too late.
	b.Now = func() time.Time {
		return time.Date(2026, 8, 29, 16, 31, 0, 0, time.UTC)
	}
	err := b.StartNextBreak(ctx, testTenant, testDate, testStaff, "")
	assert.ErrorIs(t, err, ErrBreakTooLate)

	// Exactly 30 minutes before end: still eligible.
	b.Now = func() time.Time {
		return time.Date(2026, 8, 29, 16, 30, 0, 0, time.UTC)
	}
	assert.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))
}

func TestStartNextBreakWithoutShift(t *testing.T) {
	b := newTestBoard(t, memory.New())
	err := b.StartNextBreak(context.Background(), testTenant, testDate, testStaff, "")
	assert.ErrorIs(t, err, ErrNoShift)
}

func TestEndBreakSilentWhenNothingOpen(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, ""))
	assert.Empty(t, auditEntries(t, st))

	// No shift at all is also silent.
	empty := memory.New()
	b2 := newTestBoard(t, empty)
	assert.NoError(t, b2.EndBreak(ctx, testTenant, testDate, testStaff, ""))
}

func TestEndBreakStampsSlotAndReturnsToFree(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, ""))

	sh := getShift(t, st)
	assert.True(t, sh.BreakSlots[0].Used)
	require.NotNil(t, sh.BreakSlots[0].EndedAt)

	a := getAssignment(t, st)
	assert.Equal(t, domain.AreaIDFree, a.AreaID)
	assert.Len(t, auditOfKind(auditEntries(t, st), domain.AuditBreakEnd), 1)
}

func TestCancelBreakRevertsSlot(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.CancelBreak(ctx, testTenant, testDate, testStaff, ""))

	sh := getShift(t, st)
	assert.False(t, sh.BreakSlots[0].Used)
	assert.Nil(t, sh.BreakSlots[0].StartedAt)
	assert.Equal(t, 2, sh.RemainingBreaks())

	a := getAssignment(t, st)
	assert.Equal(t, domain.AreaIDFree, a.AreaID)

	cancels := auditOfKind(auditEntries(t, st), domain.AuditBreakCancel)
	require.Len(t, cancels, 1)
	assert.Equal(t, 30, cancels[0].Minutes)

	// A finished break is no longer cancellable.
	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, ""))
	require.NoError(t, b.CancelBreak(ctx, testTenant, testDate, testStaff, ""))
	sh = getShift(t, st)
	assert.True(t, sh.BreakSlots[0].Used)
}

func TestSetAbsent(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()

	err := b.SetAbsent(ctx, testTenant, testDate, testStaff, true)
	assert.ErrorIs(t, err, ErrNoShift)

	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")
	require.NoError(t, b.SetAbsent(ctx, testTenant, testDate, testStaff, true))
	assert.True(t, getShift(t, st).Absent)
	require.NoError(t, b.SetAbsent(ctx, testTenant, testDate, testStaff, false))
	assert.False(t, getShift(t, st).Absent)
}

func TestSetDayMemo(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()

	require.NoError(t, b.SetDayMemo(ctx, testTenant, testDate, "園庭は午後使えません"))
	doc, err := st.Get(ctx, store.DayStatePath(testTenant, testDate))
	require.NoError(t, err)
	var state domain.DayState
	require.NoError(t, store.DataTo(doc, &state))
	assert.Equal(t, "園庭は午後使えません", state.Memo)
	assert.False(t, state.EditLocked)
}

// failingAppendStore breaks the audit sink while keeping everything else.
type failingAppendStore struct {
	store.Store
}

func (f *failingAppendStore) Append(context.Context, string, store.Document) (string, error) {
	return "", errors.New("audit sink down")
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	mem := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := NewAuditAppender(&failingAppendStore{Store: mem}, logger, nil)
	b := New(mem, audit, logger, nil)
	b.Now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	err := b.MoveStaff(context.Background(), testTenant, testDate, testStaff, "saru", "")
	require.NoError(t, err)

	a := getAssignment(t, mem)
	assert.Equal(t, "saru", a.AreaID)
	assert.Empty(t, auditEntries(t, mem))
}

func TestBreakDayScenario(t *testing.T) {
	st := memory.New()
	b := newTestBoard(t, st)
	ctx := context.Background()
	seedShift(t, st, domain.BreakPattern3030, "08:00", "17:00")

	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "saru", "dev1"))
	require.NoError(t, b.StartNextBreak(ctx, testTenant, testDate, testStaff, "dev1"))
	require.NoError(t, b.EndBreak(ctx, testTenant, testDate, testStaff, "dev1"))
	require.NoError(t, b.MoveStaff(ctx, testTenant, testDate, testStaff, "yard", "dev2"))

	a := getAssignment(t, st)
	assert.Equal(t, "yard", a.AreaID)
	// saru, break, free, yard: four moves.
	assert.Equal(t, int64(4), a.Version)

	entries := auditEntries(t, st)
	assert.Len(t, auditOfKind(entries, domain.AuditMove), 4)
	assert.Len(t, auditOfKind(entries, domain.AuditBreakStart), 1)
	assert.Len(t, auditOfKind(entries, domain.AuditBreakEnd), 1)
	assert.Equal(t, 1, getShift(t, st).RemainingBreaks())
}
