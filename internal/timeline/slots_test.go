package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BST1120/mapper2/internal/domain"
)

func shiftFor(t *testing.T, date, start, end string) *domain.Shift {
	t.Helper()
	startAt, err := domain.DateAtLocal(date, start, time.UTC)
	require.NoError(t, err)
	endAt, err := domain.DateAtLocal(date, end, time.UTC)
	require.NoError(t, err)
	return &domain.Shift{StartAt: startAt, EndAt: endAt}
}

func TestSlotCountsShiftWindow(t *testing.T) {
	const date = "2026-08-29"
	slots := mustSlots(t)

	rows := []StaffRow{
		{
			ID:       "s1",
			Shift:    shiftFor(t, date, "08:00", "17:00"),
			Timeline: Timeline{InitialAreaID: "saru"},
		},
	}
	counts := SlotCounts(slots, rows)
	require.Len(t, counts, 48)

	// Before shift start, zero.
	assert.Equal(t, 0, counts[0]) // 07:00
	assert.Equal(t, 0, counts[3]) // 07:45
	// Shift start is inclusive.
	assert.Equal(t, 1, counts[4]) // 08:00
	// Shift end is exclusive.
	assert.Equal(t, 1, counts[39]) // 16:45
	assert.Equal(t, 0, counts[40]) // 17:00
}

func TestSlotCountsOfficeExcluded(t *testing.T) {
	const date = "2026-08-29"
	slots := mustSlots(t)
	at := slots[20].T // 12:00

	rows := []StaffRow{
		{
			ID:    "s1",
			Shift: shiftFor(t, date, "07:00", "19:00"),
			Timeline: Timeline{
				InitialAreaID: "saru",
				Moves: []AreaMove{
					{At: at, ToAreaID: domain.AreaIDOffice, FromAreaID: "saru"},
				},
			},
		},
	}
	counts := SlotCounts(slots, rows)
	assert.Equal(t, 1, counts[19]) // 11:45, still on floor
	assert.Equal(t, 0, counts[20]) // 12:00, in the office
	assert.Equal(t, 0, counts[47]) // stays in office for the rest of the day
}

func TestSlotCountsBreakStillCounts(t *testing.T) {
	const date = "2026-08-29"
	slots := mustSlots(t)
	at := slots[20].T

	rows := []StaffRow{
		{
			ID:    "s1",
			Shift: shiftFor(t, date, "07:00", "19:00"),
			Timeline: Timeline{
				InitialAreaID: "saru",
				Moves: []AreaMove{
					{At: at, ToAreaID: domain.AreaIDBreak, FromAreaID: "saru"},
				},
			},
		},
	}
	counts := SlotCounts(slots, rows)
	// Only the office bucket is excluded from the headcount.
	assert.Equal(t, 1, counts[20])
}

func TestSlotCountsAbsentAndMissingShift(t *testing.T) {
	const date = "2026-08-29"
	slots := mustSlots(t)

	absentShift := shiftFor(t, date, "07:00", "19:00")
	absentShift.Absent = true

	rows := []StaffRow{
		{ID: "absent", Shift: absentShift, Timeline: Timeline{InitialAreaID: "saru"}},
		{ID: "noshift", Shift: nil, Timeline: Timeline{InitialAreaID: "saru"}},
	}
	counts := SlotCounts(slots, rows)
	for i, c := range counts {
		assert.Zerof(t, c, "slot %d", i)
	}
}

func TestSlotCountsMovesApplyInOrder(t *testing.T) {
	const date = "2026-08-29"
	slots := mustSlots(t)

	rows := []StaffRow{
		{
			ID:    "s1",
			Shift: shiftFor(t, date, "07:00", "19:00"),
			Timeline: Timeline{
				InitialAreaID: domain.AreaIDOffice,
				Moves: []AreaMove{
					{At: slots[8].T, ToAreaID: "saru"},                 // 09:00 out of the office
					{At: slots[16].T, ToAreaID: domain.AreaIDOffice},   // 11:00 back in
					{At: slots[24].T, ToAreaID: domain.AreaIDFree},     // 13:00 out again
				},
			},
		},
	}
	counts := SlotCounts(slots, rows)
	assert.Equal(t, 0, counts[7])
	assert.Equal(t, 1, counts[8])
	assert.Equal(t, 1, counts[15])
	assert.Equal(t, 0, counts[16])
	assert.Equal(t, 0, counts[23])
	assert.Equal(t, 1, counts[24])
}
