package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakSlotsFor(t *testing.T) {
	slots := BreakSlotsFor(BreakPattern1530)
	require.Len(t, slots, 2)
	assert.Equal(t, 15, slots[0].Minutes)
	assert.Equal(t, 30, slots[1].Minutes)

	slots = BreakSlotsFor(BreakPattern3030)
	require.Len(t, slots, 2)
	assert.Equal(t, 30, slots[0].Minutes)
	assert.Equal(t, 30, slots[1].Minutes)

	// Unknown patterns fall back to the 30/30 entitlement.
	slots = BreakSlotsFor("")
	assert.Equal(t, 30, slots[0].Minutes)
}

func TestRemainingBreaks(t *testing.T) {
	s := Shift{BreakSlots: BreakSlotsFor(BreakPattern3030)}
	assert.Equal(t, 2, s.RemainingBreaks())
	s.BreakSlots[0].Used = true
	assert.Equal(t, 1, s.RemainingBreaks())
	s.BreakSlots[1].Used = true
	assert.Equal(t, 0, s.RemainingBreaks())
	assert.Equal(t, 0, Shift{}.RemainingBreaks())
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		staff Staff
		want  string
	}{
		{"with initial", Staff{LastName: "佐藤", FirstInitial: "T"}, "佐藤T"},
		{"initial normalized", Staff{LastName: "佐藤", FirstInitial: "taro"}, "佐藤T"},
		{"no initial", Staff{LastName: "鈴木"}, "鈴木"},
		{"non letter dropped", Staff{LastName: "田中", FirstInitial: "1"}, "田中"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.staff.DisplayName())
		})
	}
}

func TestDateAtLocal(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	got, err := DateAtLocal("2026-08-29", "08:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())

	_, err = DateAtLocal("2026-13-01", "08:30", loc)
	assert.Error(t, err)
}

func TestResolveShiftWindow(t *testing.T) {
	types := map[string]ShiftType{
		"C": {Code: "C", Start: "08:00", End: "17:00"},
	}

	start, end := ResolveShiftWindow("C", Staff{}, types)
	assert.Equal(t, "08:00", start)
	assert.Equal(t, "17:00", end)

	// Unknown code falls back to the staff member's fixed hours.
	start, end = ResolveShiftWindow("Z", Staff{FixedStart: "09:30", FixedEnd: "14:00"}, types)
	assert.Equal(t, "09:30", start)
	assert.Equal(t, "14:00", end)

	// No fixed hours either: the default window.
	start, end = ResolveShiftWindow("", Staff{}, types)
	assert.Equal(t, "09:00", start)
	assert.Equal(t, "18:00", end)
}
